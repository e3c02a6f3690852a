package adapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// platformError is the error envelope the platform uses on failures:
// {"error": {"message": "...", "status_code": 401}}.
type platformError struct {
	Error struct {
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	return NewHTTPError(resp.StatusCode(), errorMessage(resp.Body()))
}

func errorMessage(body []byte) string {
	var pe platformError
	if err := json.Unmarshal(body, &pe); err == nil && pe.Error.Message != "" {
		return pe.Error.Message
	}
	return strings.TrimSpace(string(body))
}
