package server_test

import (
	"testing"

	"consent-manager/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_BodyLimit(t *testing.T) {
	tests := []struct {
		name string
		mb   int
		want int
	}{
		{"Configured", 2, 2 * 1024 * 1024},
		{"Zero Uses Default", 0, 4 * 1024 * 1024},
		{"Negative Uses Default", -1, 4 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{BodyLimitMB: tt.mb}
			assert.Equal(t, tt.want, c.BodyLimit())
		})
	}
}
