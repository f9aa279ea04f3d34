package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
)

// JSONResult is the JSON form of a Result
type JSONResult struct {
	Method   string          `json:"method"`
	Endpoint string          `json:"endpoint"`
	Mode     string          `json:"mode,omitempty"`
	Code     int             `json:"code"`
	OK       bool            `json:"ok"`
	Body     json.RawMessage `json:"body,omitempty"`
	Text     string          `json:"text,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration float64         `json:"duration"`
}

// JSONFixture is the JSON form of a fixture record
type JSONFixture struct {
	mockstore.FixtureRecord
	Present bool `json:"present"`
}

// JSONEvent is the JSON form of a fixture change
type JSONEvent struct {
	Op       string `json:"op"`
	FileName string `json:"fileName"`
	Endpoint string `json:"endpoint,omitempty"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func (f *JSONFormatter) FormatResult(r Result) {
	out := JSONResult{
		Method:   r.Method,
		Endpoint: r.Endpoint,
		Mode:     r.Mode,
		Code:     r.Code,
		OK:       r.OK,
		Duration: float64(r.Duration.Milliseconds()),
	}
	if r.OK && r.Body != "" {
		if json.Valid([]byte(r.Body)) {
			out.Body = json.RawMessage(r.Body)
		} else {
			out.Text = r.Body
		}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatFixtures(records []mockstore.FixtureRecord) {
	out := make([]JSONFixture, 0, len(records))
	for _, r := range records {
		out = append(out, JSONFixture{FixtureRecord: r, Present: r.HasContent()})
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatEvent(ev mockstore.Event) {
	line, _ := json.Marshal(JSONEvent{
		Op:       string(ev.Op),
		FileName: ev.FileName,
		Endpoint: ev.Endpoint,
	})
	f.writer.Write(append(line, '\n'))
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(map[string]string{"error": err.Error()})
}
