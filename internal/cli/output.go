package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/gamedb-go/internal/services/sweep"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *sweep.Report:
		o.printReport(v)
	case []*sweep.Report:
		for _, r := range v {
			o.printReport(r)
		}
	case ExistsResult:
		o.printExists(v)
	case CountResult:
		fmt.Fprintf(o.out, "Registered accounts: %d\n", v.Count)
	case HealthResult:
		o.printHealth(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ExistsResult is the result of an account existence check
type ExistsResult struct {
	Username string `json:"username"`
	Exists   bool   `json:"exists"`
}

// CountResult carries the registered account count
type CountResult struct {
	Count int64 `json:"count"`
}

// HealthResult mirrors the admin server health reply
type HealthResult struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func (o *Output) printReport(r *sweep.Report) {
	fmt.Fprintf(o.out, "Sweep: %s (run %s)\n", r.Job, r.RunID)
	fmt.Fprintf(o.out, "Scanned: %d  Updated: %d  Skipped: %d  Failed: %d\n", r.Scanned, r.Updated, r.Skipped, r.Failed)
	if r.Job == sweep.JobDesanitizeContainers {
		fmt.Fprintf(o.out, "Slots cleared: %d\n", r.Cleared)
	}
	fmt.Fprintf(o.out, "Duration: %s\n", r.Duration)
}

func (o *Output) printExists(e ExistsResult) {
	if e.Exists {
		fmt.Fprintf(o.out, "Account %q exists\n", e.Username)
	} else {
		fmt.Fprintf(o.out, "Account %q does not exist\n", e.Username)
	}
}

func (o *Output) printHealth(h HealthResult) {
	fmt.Fprintf(o.out, "Status: %s\n", h.Status)
	fmt.Fprintf(o.out, "Store: %s\n", h.Store)
}
