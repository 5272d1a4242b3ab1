package consent

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// Encode serializes a consent mapping into the persisted blob format: a
// URL-encoded JSON object.
func Encode(consents map[string]bool) (string, error) {
	data, err := json.Marshal(consents)
	if err != nil {
		return "", fmt.Errorf("failed to encode consents: %w", err)
	}
	return strings.ReplaceAll(url.QueryEscape(string(data)), "+", "%20"), nil
}

// Decode parses a persisted blob.
func Decode(blob string) (map[string]bool, error) {
	raw, err := url.PathUnescape(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape consents: %w", err)
	}
	consents := make(map[string]bool)
	if err := json.Unmarshal([]byte(raw), &consents); err != nil {
		return nil, fmt.Errorf("failed to decode consents: %w", err)
	}
	if consents == nil {
		return nil, fmt.Errorf("failed to decode consents: %q is not an object", raw)
	}
	return consents, nil
}
