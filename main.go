package main

import "consent-manager/cmd"

func main() {
	cmd.Execute()
}
