package cookies

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Rule describes the cookies a service sets.
//
// Pattern is either a literal cookie name (matched exactly) or, when it starts
// with "^", a regular expression. Regexp takes precedence over Pattern and is
// only available to callers building a catalog in Go.
type Rule struct {
	Pattern string         `mapstructure:"pattern" json:"pattern"`
	Regexp  *regexp.Regexp `mapstructure:"-" json:"-"`
	Path    string         `mapstructure:"path" json:"path,omitempty"`
	Domain  string         `mapstructure:"domain" json:"domain,omitempty"`
}

// Matcher is a compiled Rule.
type Matcher struct {
	Pattern *regexp.Regexp
	Path    string
	Domain  string
}

// Compile turns a rule into a matcher.
func (r Rule) Compile() (*Matcher, error) {
	if r.Regexp != nil {
		return &Matcher{Pattern: r.Regexp, Path: r.Path, Domain: r.Domain}, nil
	}
	if r.Pattern == "" {
		return nil, fmt.Errorf("cookie rule has no pattern")
	}

	expr := r.Pattern
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + regexp.QuoteMeta(expr) + "$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie pattern %q: %w", r.Pattern, err)
	}
	return &Matcher{Pattern: re, Path: r.Path, Domain: r.Domain}, nil
}

// Match reports whether the cookie name is covered by the matcher.
func (m *Matcher) Match(name string) bool {
	return m.Pattern.MatchString(name)
}

// Purge deletes every cookie in the jar matched by one of the rules and
// returns the names it deleted, in match order. When a rule has no domain the
// cookie is also deleted for "." + hostname, since some services set cookies
// on the dotted parent domain.
func Purge(jar Jar, rules []Rule, hostname string, logger *zap.Logger) ([]string, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	present := jar.All()
	var deleted []string

	for _, rule := range rules {
		m, err := rule.Compile()
		if err != nil {
			return deleted, err
		}

		for _, c := range present {
			if !m.Match(c.Name) {
				continue
			}

			logger.Debug("Deleting cookie",
				zap.String("cookie", c.Name),
				zap.String("pattern", m.Pattern.String()),
				zap.String("path", m.Path),
				zap.String("domain", m.Domain),
			)

			Delete(jar, c.Name, m.Path, m.Domain)
			if m.Domain == "" && hostname != "" {
				Delete(jar, c.Name, m.Path, "."+hostname)
			}
			deleted = append(deleted, c.Name)
		}
	}

	return deleted, nil
}
