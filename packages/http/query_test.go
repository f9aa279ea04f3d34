package http

import (
	neturl "net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToQuerySuffix(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		expected string
	}{
		{
			name:     "empty",
			params:   Params{},
			expected: "",
		},
		{
			name:     "nil",
			params:   nil,
			expected: "",
		},
		{
			name:     "single string",
			params:   Params{"q": String("golang")},
			expected: "q=golang",
		},
		{
			name:     "scalars sorted by key",
			params:   Params{"page": Int(2), "active": Bool(true), "ratio": Number(0.5)},
			expected: "active=true&page=2&ratio=0.5",
		},
		{
			name:     "percent-encoded value",
			params:   Params{"q": String("a b&c=d/é")},
			expected: "q=a%20b%26c%3Dd%2F%C3%A9",
		},
		{
			name:     "list expands to bracket pairs",
			params:   Params{"tags": Strings("go", "http")},
			expected: "tags[]=go&tags[]=http",
		},
		{
			name:     "empty list contributes nothing",
			params:   Params{"tags": List()},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToQuerySuffix(tt.params))
		})
	}
}

func TestToQuerySuffix_PairCount(t *testing.T) {
	params := Params{
		"a": String("1"),
		"b": Int(2),
		"c": Bool(false),
		"d": String("x y"),
	}

	encoded := ToQuerySuffix(params)
	pairs := strings.Split(encoded, "&")

	assert.Len(t, pairs, len(params))
	for _, pair := range pairs {
		assert.Equal(t, 1, strings.Count(pair, "="), pair)
	}
	assert.False(t, strings.HasPrefix(encoded, "?"))
	assert.False(t, strings.HasPrefix(encoded, "&"))
}

func TestToQuerySuffix_ListOccurrences(t *testing.T) {
	params := Params{
		"tags": List(String("a"), Int(1), Bool(true), String("a")),
		"id":   Int(7),
	}

	encoded := ToQuerySuffix(params)

	assert.Equal(t, 4, strings.Count(encoded, "tags[]="))
	assert.Contains(t, encoded, "id=7")
}

func TestToFormBody(t *testing.T) {
	assert.Equal(t, "", ToFormBody(Params{}))
	assert.Equal(t, "?user=bob", ToFormBody(Params{"user": String("bob")}))
	assert.Equal(t, "?ids[]=1&ids[]=2&scope=read%20write", ToFormBody(Params{
		"scope": String("read write"),
		"ids":   List(Int(1), Int(2)),
	}))
}

func TestToFormBody_MatchesQuerySuffix(t *testing.T) {
	params := Params{"x": String("1"), "y": Strings("a", "b")}
	assert.Equal(t, "?"+ToQuerySuffix(params), ToFormBody(params))
}

func TestToFormBody_Decodes(t *testing.T) {
	body := ToFormBody(Params{
		"user": String("a b"),
		"tags": Strings("x", "y"),
	})

	parsed := parseFormBody(body)

	assert.Equal(t, []string{"a b"}, parsed["user"])
	assert.Equal(t, []string{"x", "y"}, parsed["tags[]"])
	assert.Empty(t, parseFormBody(""))
}

// parseFormBody decodes a body produced by ToFormBody, leading "?" included.
func parseFormBody(body string) map[string][]string {
	result := make(map[string][]string)
	body = strings.TrimPrefix(body, "?")
	if body == "" {
		return result
	}
	for _, pair := range strings.Split(body, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, _ := neturl.QueryUnescape(kv[0])
		value, _ := neturl.PathUnescape(kv[1])
		result[key] = append(result[key], value)
	}
	return result
}
