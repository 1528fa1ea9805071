package apperr

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// DetailLiner is implemented by errors that enumerate per-entity outcomes
type DetailLiner interface {
	DetailLines() []string
}

// Render writes a formatted failure message: classification, details,
// numbered suggestions and, in verbose mode, the original error chain.
func Render(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	kind := Classify(err)
	var ae *Error
	hasTyped := errors.As(err, &ae)

	message := err.Error()
	if hasTyped && ae.Message != "" {
		message = ae.Message
	}
	red.Fprintf(w, "✗ %s: %s\n", kind, message)

	var details []Detail
	var suggestions []string
	timeout := false
	if hasTyped {
		details = ae.Details
		suggestions = append(suggestions, ae.Suggestions...)
		timeout = ae.Timeout
		if ae.Err != nil && !verbose {
			details = append(details, Detail{Key: "cause", Value: ae.Err.Error()})
		}
	}

	if len(details) > 0 {
		fmt.Fprintln(w)
		for _, d := range details {
			fmt.Fprintf(w, "  %s: %s\n", d.Key, d.Value)
		}
	}

	var dl DetailLiner
	if errors.As(err, &dl) {
		if lines := dl.DetailLines(); len(lines) > 0 {
			fmt.Fprintln(w)
			for _, l := range lines {
				fmt.Fprintf(w, "  %s\n", l)
			}
		}
	}

	if len(suggestions) == 0 {
		suggestions = Suggest(err.Error())
	}
	suggestions = append(suggestions, DefaultSuggestions(kind, timeout)...)
	fmt.Fprintln(w)
	yellow.Fprintln(w, "Suggested actions:")
	for i, s := range dedupe(suggestions) {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Original error:")
		for e := err; e != nil; e = errors.Unwrap(e) {
			fmt.Fprintf(w, "  %T: %v\n", e, e)
		}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
