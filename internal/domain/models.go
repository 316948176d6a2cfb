package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Defect is a single finding on a screenshot.
type Defect struct {
	Category  string `json:"category" example:"ASSERTION_FAILED"`
	Reasoning string `json:"reasoning" example:"no login button found"`
}

// Screen is a screenshot as sent by the test-automation client: either a
// Base64 string (optionally a data URI) or an array of signed bytes.
type Screen struct {
	Encoded     string
	SignedBytes []int
}

// NewBase64Screen wraps a Base64-encoded screenshot.
func NewBase64Screen(encoded string) Screen {
	return Screen{Encoded: encoded}
}

// NewSignedByteScreen wraps a signed byte array screenshot.
func NewSignedByteScreen(values []int) Screen {
	return Screen{SignedBytes: values}
}

// IsByteArray reports whether the screen arrived as an integer array.
func (s Screen) IsByteArray() bool {
	return s.SignedBytes != nil
}

// IsEmpty reports whether no image data was supplied.
func (s Screen) IsEmpty() bool {
	return s.Encoded == "" && len(s.SignedBytes) == 0
}

// EncodedLen is the size of the payload as received, used for redacted logging.
func (s Screen) EncodedLen() int {
	if s.IsByteArray() {
		return len(s.SignedBytes)
	}
	return len(s.Encoded)
}

// UnmarshalJSON accepts a JSON string, an array of integers or null.
func (s *Screen) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Screen{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		*s = NewBase64Screen(encoded)
		return nil
	case '[':
		var values []int
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("screen byte array: %w", err)
		}
		if values == nil {
			values = []int{}
		}
		*s = NewSignedByteScreen(values)
		return nil
	default:
		return fmt.Errorf("screen must be a base64 string or an array of bytes")
	}
}

// MarshalJSON renders the screen in the encoding it was received in.
func (s Screen) MarshalJSON() ([]byte, error) {
	if s.IsByteArray() {
		return json.Marshal(s.SignedBytes)
	}
	return json.Marshal(s.Encoded)
}
