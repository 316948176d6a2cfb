package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Body fields that carry image payloads.
var redactedFields = map[string]bool{
	"screen": true,
	"image":  true,
	"file":   true,
}

const maxLoggedPayload = 100

// RedactBody decodes a JSON body and replaces image payloads with a length
// marker: strings longer than 100 characters become <base64_data_len_N> and
// arrays become <byte_array_len_N>. Bodies that are not JSON are logged as a
// placeholder.
func RedactBody(body []byte) any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "<binary/non-json data>"
	}
	return redact(data)
}

func redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, field := range val {
			if redactedFields[k] {
				switch payload := field.(type) {
				case string:
					if len(payload) > maxLoggedPayload {
						val[k] = fmt.Sprintf("<base64_data_len_%d>", len(payload))
					}
					continue
				case []any:
					val[k] = fmt.Sprintf("<byte_array_len_%d>", len(payload))
					continue
				}
			}
			val[k] = redact(field)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = redact(item)
		}
		return val
	default:
		return v
	}
}

// RedactHeaders flattens headers for logging with credentials masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, values := range h {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Cookie", "X-Api-Key":
			out[k] = "***"
		default:
			out[k] = strings.Join(values, ", ")
		}
	}
	return out
}
