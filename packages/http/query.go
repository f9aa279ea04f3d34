package http

import (
	"net/url"
	"strings"
)

// ToQuerySuffix encodes params as "k=v&k2=v2" with no leading separator; the
// result is appended to the URL as is. List values expand to repeated
// "k[]=v" pairs. Values are percent-encoded, keys are not, so callers must
// use URL-safe keys. An empty map gives "".
func ToQuerySuffix(params Params) string {
	return strings.Join(encodePairs(params), "&")
}

// ToFormBody encodes params like ToQuerySuffix but prefixes a non-empty
// result with "?". FORM requests send this string as their body.
func ToFormBody(params Params) string {
	pairs := encodePairs(params)
	if len(pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(pairs, "&")
}

func encodePairs(params Params) []string {
	pairs := make([]string, 0, len(params))
	for _, key := range params.Keys() {
		value := params[key]
		switch value.Kind() {
		case KindList:
			for _, item := range value.Items() {
				pairs = append(pairs, key+"[]="+escapeValue(item.Text()))
			}
		case KindString, KindNumber, KindBool:
			pairs = append(pairs, key+"="+escapeValue(value.Text()))
		}
	}
	return pairs
}

// escapeValue percent-encodes s for a query component, spaces as %20.
func escapeValue(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
