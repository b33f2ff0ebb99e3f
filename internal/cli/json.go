package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Global JSON output flag
var jsonOutput bool

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
	Meta  *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count int `json:"count,omitempty"`
}

func outputJSON(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(w io.Writer, data any, meta *Meta) {
	outputJSON(w, Response{OK: true, Data: data, Meta: meta})
}

func outputError(w io.Writer, code, message, suggestion string) {
	outputJSON(w, Response{
		OK: false,
		Error: &ErrorInfo{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
		},
	})
}

func isJSONOutput() bool {
	return jsonOutput
}

// handleError reports err in the active output mode. In JSON mode the error
// is written to w and nil is returned so Cobra does not print it again.
func handleError(w io.Writer, code string, err error, suggestion string) error {
	if jsonOutput {
		outputError(w, code, err.Error(), suggestion)
		return nil
	}
	return err
}

// handleErrorMsg is handleError for a plain message.
func handleErrorMsg(w io.Writer, code, message, suggestion string) error {
	if jsonOutput {
		outputError(w, code, message, suggestion)
		return nil
	}
	if suggestion != "" {
		return fmt.Errorf("%s\n\n%s", message, suggestion)
	}
	return fmt.Errorf("%s", message)
}
