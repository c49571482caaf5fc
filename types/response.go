package types

import "encoding/json"

// ResponseStatus is the host-reported status of a command.
type ResponseStatus string

const (
	// StatusSuccess indicates the host executed the payload.
	StatusSuccess ResponseStatus = "success"
	// StatusError indicates the host rejected or failed the payload.
	StatusError ResponseStatus = "error"
)

// Response is the host's structured reply to a Command.
// Result is kept raw: the client treats payload output as opaque.
type Response struct {
	// Status is "success" or "error".
	Status ResponseStatus `json:"status"`
	// Result is the optional result document.
	Result json.RawMessage `json:"result,omitempty"`
	// Message is a human-readable description, required when Status is error.
	Message string `json:"message,omitempty"`
}

// OK reports whether the host executed the command successfully.
func (r *Response) OK() bool {
	return r.Status == StatusSuccess
}

// ResultText returns the result for display. JSON strings are unquoted,
// everything else is returned verbatim.
func (r *Response) ResultText() string {
	if len(r.Result) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Result, &s); err == nil {
		return s
	}
	return string(r.Result)
}
