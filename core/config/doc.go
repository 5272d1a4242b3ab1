// Package config provides configuration management for the consent server.
//
// It utilizes Viper for loading configuration from an optional config file
// (config.yaml, config.json, ...), an optional .env file and the environment,
// in increasing precedence. Defaults come from the `default` struct tags of
// the partial configurations, which are registered recursively so every key
// can be overridden through the environment.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, limits)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Redis: session store connection
//   - Log: Logging level and format
//   - Consent: catalog source and consent persistence (consent.store.*)
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Consent.Store.Method)
package config
