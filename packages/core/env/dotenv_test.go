package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "simple key-value",
			content:  "API_TOKEN=secret123",
			expected: map[string]string{"API_TOKEN": "secret123"},
		},
		{
			name:     "multiple keys",
			content:  "KEY1=value1\nKEY2=value2",
			expected: map[string]string{"KEY1": "value1", "KEY2": "value2"},
		},
		{
			name:     "double quoted value",
			content:  `API_TOKEN="secret with spaces # kept"`,
			expected: map[string]string{"API_TOKEN": "secret with spaces # kept"},
		},
		{
			name:     "single quoted value",
			content:  `API_TOKEN='secret with spaces'`,
			expected: map[string]string{"API_TOKEN": "secret with spaces"},
		},
		{
			name:     "comments and blank lines",
			content:  "# comment\n\nAPI_TOKEN=secret # trailing",
			expected: map[string]string{"API_TOKEN": "secret"},
		},
		{
			name:     "export prefix",
			content:  "export BASE=https://api.example.com",
			expected: map[string]string{"BASE": "https://api.example.com"},
		},
		{
			name:     "value with equals",
			content:  "QUERY=a=b",
			expected: map[string]string{"QUERY": "a=b"},
		},
		{
			name:     "line without equals is ignored",
			content:  "NOTHING\nKEY=v",
			expected: map[string]string{"KEY": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_EmptyKey(t *testing.T) {
	_, err := Parse(strings.NewReader("=value"))
	assert.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".env"))
	assert.Error(t, err)
}

func TestLoadAndExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("URLMOCK_TEST_NEW=fromfile\nURLMOCK_TEST_SET=fromfile\n"), 0644))

	t.Setenv("URLMOCK_TEST_SET", "fromenv")
	t.Setenv("URLMOCK_TEST_NEW", "")
	require.NoError(t, os.Unsetenv("URLMOCK_TEST_NEW"))

	n, err := LoadAndExport(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "fromfile", os.Getenv("URLMOCK_TEST_NEW"))
	assert.Equal(t, "fromenv", os.Getenv("URLMOCK_TEST_SET"))
}
