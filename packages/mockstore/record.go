package mockstore

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// FixtureRecord is one catalog entry. Content is only filled in by ListAll
// and Get, and is never persisted in the catalog.
type FixtureRecord struct {
	Date         string `json:"date"`
	Path         string `json:"path"`
	FileName     string `json:"fileName"`
	Endpoint     string `json:"endpoint"`
	ResponseCode int    `json:"responseCode"`
	AppVersion   string `json:"appVersion"`
	Content      string `json:"-"`
}

// HasContent reports whether the fixture file was present when the record
// was loaded.
func (r FixtureRecord) HasContent() bool {
	return r.Content != ""
}

// Query returns the value at a gjson path inside the fixture content. An
// empty path returns the whole document.
func (r FixtureRecord) Query(path string) gjson.Result {
	if path == "" {
		return gjson.Parse(r.Content)
	}
	return gjson.Get(r.Content, path)
}

// FileName derives the catalog key and file stem for endpoint.
func FileName(endpoint string) string {
	return strings.ReplaceAll(endpoint, "/", "_")
}

type catalog map[string]FixtureRecord

func decodeCatalog(data []byte) (catalog, error) {
	c := make(catalog)
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return make(catalog), err
	}
	if c == nil {
		c = make(catalog)
	}
	return c, nil
}
