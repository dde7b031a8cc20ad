package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/boddenberg/fintrack-go/internal/domain"
)

// errorBody is the backend's error payload. detail is either a message or,
// for request validation failures, a list of {loc, msg, type} items.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// normalizeError turns a non-2xx response into an APIError carrying the
// status code. Unusable bodies fall back to the status text.
func normalizeError(resp *response) *domain.APIError {
	detail, ok := errorDetail(resp.body)
	if !ok {
		detail = statusText(resp)
	}
	return &domain.APIError{Status: resp.status, Detail: detail}
}

func errorDetail(body []byte) (string, bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return "", false
	}

	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		return msg, msg != ""
	}

	var items []validationItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; "), true
		}
	}

	return "", false
}

// statusText is the reason phrase of the status line ("Unauthorized").
func statusText(resp *response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.statusLine, strconv.Itoa(resp.status)))
	if text != "" {
		return text
	}
	if text = http.StatusText(resp.status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.status)
}
