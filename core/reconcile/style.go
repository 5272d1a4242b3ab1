package reconcile

import (
	"strings"

	"golang.org/x/net/html"
)

type declaration struct {
	property string
	value    string
}

func parseStyle(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, declaration{property: prop, value: strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.property+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// display returns the inline display value of an element, "" when unset.
func display(n *html.Node) string {
	style, _ := attr(n, "style")
	for _, d := range parseStyle(style) {
		if d.property == "display" {
			return d.value
		}
	}
	return ""
}

// setDisplay sets the inline display value. An empty value removes the
// property, and the style attribute with it when nothing else is left.
func setDisplay(n *html.Node, value string) {
	style, _ := attr(n, "style")
	decls := parseStyle(style)

	out := decls[:0]
	found := false
	for _, d := range decls {
		if d.property != "display" {
			out = append(out, d)
			continue
		}
		if value != "" && !found {
			d.value = value
			out = append(out, d)
		}
		found = true
	}
	if !found && value != "" {
		out = append(out, declaration{property: "display", value: value})
	}

	if len(out) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", formatStyle(out))
}
