package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
)

// quoteMessage returns the JSON-quoted error message of an error envelope.
func quoteMessage(w *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	b, _ := json.Marshal(body.Error.Message)
	return string(b)
}
