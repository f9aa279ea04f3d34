package output

import (
	"io"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
)

// Result is one dispatched call as shown to the user
type Result struct {
	Method   string
	Endpoint string
	Mode     string
	Code     int
	OK       bool
	Body     string
	Err      error
	Duration time.Duration
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(r Result)
	FormatFixtures(records []mockstore.FixtureRecord)
	FormatEvent(ev mockstore.Event)
	FormatError(err error)
}

// New returns the formatter for format writing to w, falling back to console
func New(format string, w io.Writer, verbose, noColor bool) Formatter {
	if format == "json" {
		return NewJSONFormatter(JSONWithWriter(w))
	}
	return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor))
}
