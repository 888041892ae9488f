package crm

import (
	"encoding/json"
	"io"
	"net/http"
)

// Result is the normalized outcome of a single CRM call: the HTTP status code
// and the parsed response body. Error statuses (4xx/5xx) are valid Results,
// not Go errors; only transport-level failures surface as errors.
type Result struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int
	// Body is the decoded JSON body. When the upstream body is not valid
	// JSON, Body is a synthetic error object carrying the raw text.
	Body interface{}
}

// Successful reports whether the upstream call succeeded (status below 400).
func (r *Result) Successful() bool {
	return r.StatusCode < 400
}

// ErrorMsg returns the conventional "errorMsg" field of the body, or "".
func (r *Result) ErrorMsg() string {
	body, ok := r.Body.(map[string]interface{})
	if !ok {
		return ""
	}
	msg, _ := body["errorMsg"].(string)
	return msg
}

// Errors returns the conventional "errors" field of the body, or nil.
func (r *Result) Errors() interface{} {
	body, ok := r.Body.(map[string]interface{})
	if !ok {
		return nil
	}
	return body["errors"]
}

// newResult reads and decodes an upstream response. A body that fails to
// decode never fails the request; it is replaced with an error object that
// preserves the raw text.
func newResult(resp *http.Response) (*Result, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		body = map[string]interface{}{
			"errorMsg": "Invalid JSON response: " + string(raw),
		}
	}

	return &Result{StatusCode: resp.StatusCode, Body: body}, nil
}
