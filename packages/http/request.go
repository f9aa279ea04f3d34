package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"go.uber.org/zap"
)

// ErrInvalidURL is returned when base URL and endpoint do not form a usable URL.
var ErrInvalidURL = errors.New("invalid request URL")

// Method is the kind of request to build. FORM is sent as a POST with a
// form-encoded body.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
	MethodForm   Method = "FORM"
)

// Wire returns the HTTP method sent on the wire.
func (m Method) Wire() string {
	if m == MethodForm {
		return http.MethodPost
	}
	return string(m)
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodForm:
		return m, nil
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// Request is a fully built outbound request. It is not modified after
// Build returns it.
type Request struct {
	Kind          Method
	Method        string
	Endpoint      string
	URL           string
	Headers       http.Header
	Body          string
	Timeout       time.Duration
	Params        Params
	Authenticated bool
}

// HasBody reports whether the request carries a body.
func (r *Request) HasBody() bool {
	return r.Body != ""
}

// Builder turns logical calls into Requests.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a Builder that traces every built request at debug level.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build resolves cfg.BaseURL+endpoint, applies default and configured
// headers, encodes params according to kind and adds the bearer token when
// authenticated is set and a token is configured.
func (b *Builder) Build(kind Method, endpoint string, params Params, authenticated bool, cfg config.RuntimeConfig) (*Request, error) {
	r := &Request{
		Kind:          kind,
		Method:        kind.Wire(),
		Endpoint:      endpoint,
		URL:           cfg.BaseURL + endpoint,
		Headers:       make(http.Header),
		Timeout:       cfg.Timeout,
		Params:        params,
		Authenticated: authenticated,
	}

	r.Headers.Set("Accept", "*/*")
	r.Headers.Set("Cache-Control", "no-cache")
	r.Headers.Set("Content-Type", "application/json")
	for _, h := range cfg.Headers {
		r.Headers.Set(h.Name, h.Value)
	}

	switch kind {
	case MethodGet, MethodPatch:
		r.URL += ToQuerySuffix(params)
	case MethodPut, MethodPost, MethodDelete:
		body, err := json.Marshal(params.Interface())
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", kind, err)
		}
		r.Body = string(body)
	case MethodForm:
		r.Body = ToFormBody(params)
		r.Headers.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		return nil, fmt.Errorf("unsupported method %q", kind)
	}

	if authenticated && cfg.Token != "" {
		r.Headers.Set("Authorization", "Bearer "+cfg.Token)
	}

	if err := ValidateURL(r.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	b.logger.Debug("request built",
		zap.String("method", r.Method),
		zap.String("url", r.URL),
		zap.Any("params", params.Interface()),
	)

	return r, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}
