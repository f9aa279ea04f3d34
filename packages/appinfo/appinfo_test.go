package appinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		expected string
	}{
		{"both set", Static{AppVersion: "1.4.0", AppBuild: "212"}, "1.4.0 (212)"},
		{"missing build", Static{AppVersion: "1.4.0"}, ""},
		{"missing version", Static{AppBuild: "212"}, ""},
		{"nil provider", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VersionString(tt.provider))
		})
	}
}

func TestFromBuildInfo(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = FromBuildInfo()
	})
}
