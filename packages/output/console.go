package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// statusColor picks green for 2xx, yellow for 3xx and red otherwise
func statusColor(code int) func(a ...interface{}) string {
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen).SprintFunc()
	case code >= 300 && code < 400:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

// Pretty indents JSON text and leaves anything else untouched
func Pretty(body string) string {
	if gjson.Valid(body) {
		return strings.TrimRight(gjson.Get(body, "@pretty").String(), "\n")
	}
	return body
}

func (f *ConsoleFormatter) FormatResult(r Result) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	status := statusColor(r.Code)(fmt.Sprintf("%d", r.Code))
	fmt.Fprintf(f.writer, "%s %s %s", bold(r.Method), r.Endpoint, status)
	if r.Mode != "" {
		fmt.Fprintf(f.writer, " [%s]", r.Mode)
	}
	fmt.Fprintf(f.writer, " %s\n", cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

	if r.Err != nil {
		fmt.Fprintf(f.writer, "  %s %v\n", red("→"), r.Err)
	}
	if r.OK && r.Body != "" {
		fmt.Fprintf(f.writer, "%s\n", Pretty(r.Body))
	}
}

func (f *ConsoleFormatter) FormatFixtures(records []mockstore.FixtureRecord) {
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(records) == 0 {
		fmt.Fprintf(f.writer, "No fixtures recorded\n")
		return
	}

	for _, r := range records {
		status := statusColor(r.ResponseCode)(fmt.Sprintf("%3d", r.ResponseCode))
		fmt.Fprintf(f.writer, "  %s %s %s", status, r.Endpoint, faint(r.Date))
		if r.AppVersion != "" {
			fmt.Fprintf(f.writer, " %s", faint(r.AppVersion))
		}
		if !r.HasContent() {
			fmt.Fprintf(f.writer, " %s", red("(missing file)"))
		}
		fmt.Fprintf(f.writer, "\n")
		if f.verbose {
			fmt.Fprintf(f.writer, "      %s\n", r.Path)
		}
	}
	fmt.Fprintf(f.writer, "\n%d fixtures\n", len(records))
}

func (f *ConsoleFormatter) FormatEvent(ev mockstore.Event) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	symbol := green("+")
	if ev.Op == mockstore.EventRemoved {
		symbol = yellow("-")
	}
	name := ev.Endpoint
	if name == "" {
		name = ev.FileName
	}
	fmt.Fprintf(f.writer, "%s %s %s\n", symbol, ev.Op, name)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
