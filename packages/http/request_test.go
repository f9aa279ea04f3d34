package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runtimeConfig(baseURL string) config.RuntimeConfig {
	return config.RuntimeConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func TestBuild_DefaultHeaders(t *testing.T) {
	req, err := NewBuilder(nil).Build(MethodGet, "/users", nil, false, runtimeConfig("https://api.example.com"))
	require.NoError(t, err)

	assert.Equal(t, "*/*", req.Headers.Get("Accept"))
	assert.Equal(t, "no-cache", req.Headers.Get("Cache-Control"))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Empty(t, req.Headers.Get("Authorization"))
	assert.Equal(t, 5*time.Second, req.Timeout)
	assert.Equal(t, "/users", req.Endpoint)
}

func TestBuild_GetAppendsQuery(t *testing.T) {
	params := Params{"page": Int(1), "tags": Strings("a", "b")}
	req, err := NewBuilder(nil).Build(MethodGet, "/users", params, false, runtimeConfig("https://api.example.com"))
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://api.example.com/userspage=1&tags[]=a&tags[]=b", req.URL)
	assert.False(t, req.HasBody())
}

func TestBuild_PatchAppendsQuery(t *testing.T) {
	req, err := NewBuilder(nil).Build(MethodPatch, "/users/1?", Params{"name": String("x")}, false, runtimeConfig("https://api.example.com"))
	require.NoError(t, err)

	assert.Equal(t, "PATCH", req.Method)
	assert.Equal(t, "https://api.example.com/users/1?name=x", req.URL)
	assert.Empty(t, req.Body)
}

func TestBuild_GetNeverHasBody(t *testing.T) {
	params := Params{"a": String("1"), "b": List(Int(1), Int(2))}
	for _, p := range []Params{nil, {}, params} {
		req, err := NewBuilder(nil).Build(MethodGet, "/x", p, true, runtimeConfig("http://localhost"))
		require.NoError(t, err)
		assert.False(t, req.HasBody())
	}
}

func TestBuild_JSONBodyRoundTrips(t *testing.T) {
	params := Params{
		"name":  String("Ada"),
		"age":   Int(36),
		"admin": Bool(false),
		"tags":  Strings("x", "y"),
	}
	expected, err := json.Marshal(params.Interface())
	require.NoError(t, err)

	for _, kind := range []Method{MethodPost, MethodPut, MethodDelete} {
		t.Run(string(kind), func(t *testing.T) {
			req, err := NewBuilder(nil).Build(kind, "/users", params, false, runtimeConfig("http://localhost"))
			require.NoError(t, err)

			assert.Equal(t, string(kind), req.Method)
			assert.Equal(t, "http://localhost/users", req.URL)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal([]byte(req.Body), &decoded))
			assert.JSONEq(t, string(expected), req.Body)
			assert.Equal(t, "Ada", decoded["name"])
			assert.Equal(t, float64(36), decoded["age"])
			assert.Equal(t, []any{"x", "y"}, decoded["tags"])
		})
	}
}

func TestBuild_JSONBodyKeepsParsedText(t *testing.T) {
	params := Params{
		"zip":   ParseValue("02134"),
		"id":    ParseValue("12345678901234567890"),
		"limit": ParseValue("inf"),
		"ratio": ParseValue("NaN"),
	}

	req, err := NewBuilder(nil).Build(MethodPost, "/items", params, false, runtimeConfig("http://localhost"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"zip":"02134","id":12345678901234567890,"limit":"inf","ratio":"NaN"}`, req.Body)
	assert.Contains(t, req.Body, `"id":12345678901234567890`)
}

func TestBuild_QueryKeepsParsedText(t *testing.T) {
	params := Params{"zip": ParseValue("02134"), "id": ParseValue("12345678901234567890")}

	req, err := NewBuilder(nil).Build(MethodGet, "/items?", params, false, runtimeConfig("http://localhost"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost/items?id=12345678901234567890&zip=02134", req.URL)
}

func TestBuild_Form(t *testing.T) {
	cfg := runtimeConfig("http://localhost")
	cfg.Headers = []config.Header{{Name: "Content-Type", Value: "text/plain"}}

	req, err := NewBuilder(nil).Build(MethodForm, "/login", Params{"user": String("bob")}, false, cfg)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, MethodForm, req.Kind)
	assert.Equal(t, "http://localhost/login", req.URL)
	assert.Equal(t, "?user=bob", req.Body)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Headers.Get("Content-Type"))
}

func TestBuild_CustomHeadersOverrideDefaults(t *testing.T) {
	cfg := runtimeConfig("http://localhost")
	cfg.Headers = []config.Header{
		{Name: "accept", Value: "application/json"},
		{Name: "X-Client", Value: "first"},
		{Name: "X-Client", Value: "second"},
	}

	req, err := NewBuilder(nil).Build(MethodGet, "/", nil, false, cfg)
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Headers.Get("Accept"))
	assert.Equal(t, []string{"second"}, req.Headers.Values("X-Client"))
}

func TestBuild_Authorization(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		authenticated bool
		expected      string
	}{
		{"authenticated with token", "abc", true, "Bearer abc"},
		{"authenticated without token", "", true, ""},
		{"unauthenticated with token", "abc", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := runtimeConfig("http://localhost")
			cfg.Token = tt.token

			req, err := NewBuilder(nil).Build(MethodGet, "/me", nil, tt.authenticated, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req.Headers.Get("Authorization"))
		})
	}
}

func TestBuild_InvalidURL(t *testing.T) {
	_, err := NewBuilder(nil).Build(MethodGet, "/users", nil, false, runtimeConfig(""))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidURL))
}

func TestBuild_UnknownMethod(t *testing.T) {
	_, err := NewBuilder(nil).Build(Method("TRACE"), "/", nil, false, runtimeConfig("http://localhost"))
	assert.Error(t, err)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("form")
	require.NoError(t, err)
	assert.Equal(t, MethodForm, m)
	assert.Equal(t, "POST", m.Wire())

	m, err = ParseMethod(" delete ")
	require.NoError(t, err)
	assert.Equal(t, MethodDelete, m)

	_, err = ParseMethod("OPTIONS")
	assert.Error(t, err)
}
