package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOTLPEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tempo:4318", "tempo:4318"},
		{"http://tempo:4318", "tempo:4318"},
		{"https://collector.internal", "collector.internal:4318"},
	}
	for _, tt := range tests {
		got, err := parseOTLPEndpoint(tt.in)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
