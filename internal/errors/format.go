package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for CLI output. A TokenGapsError anywhere in
// the chain supplies code and hint; plain errors are shown as internal errors.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	te, ok := As(err)
	if !ok {
		te = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", te.Message))
	if te.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", te.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", te.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	te, ok := As(err)
	if !ok {
		te = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       te.Code,
		Message:    te.Message,
		Category:   string(te.Category),
		Severity:   string(te.Severity),
		Details:    te.Details,
		Suggestion: te.Suggestion,
	}
	if te.Cause != nil {
		je.Cause = te.Cause.Error()
	}

	return json.Marshal(je)
}

// LogAttrs returns slog attributes describing err, details in key order.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	te, ok := As(err)
	if !ok {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", te.Code),
		slog.String("message", te.Message),
		slog.String("category", string(te.Category)),
		slog.String("severity", string(te.Severity)),
	}
	if te.Cause != nil {
		attrs = append(attrs, slog.String("cause", te.Cause.Error()))
	}

	keys := make([]string, 0, len(te.Details))
	for k := range te.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, te.Details[k]))
	}

	return attrs
}
