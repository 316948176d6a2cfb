package domain

import "errors"

var (
	ErrImageDecode     = errors.New("image could not be decoded")
	ErrImageProcessing = errors.New("image processing failed")
	ErrLLM             = errors.New("llm invocation failed")
	ErrResponseParse   = errors.New("llm response could not be parsed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("invalid request")
	ErrService         = errors.New("service error")
)
