package handler

import "maestroai/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// FindDefectsRequest represents the find-defects request body. Screen is a
// Base64 string (optionally a data URI) or an array of signed bytes.
type FindDefectsRequest struct {
	Screen    domain.Screen `json:"screen" swaggertype:"string" example:"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="`
	Assertion *string       `json:"assertion,omitempty" example:"Login button is visible"`
}

// ExtractTextRequest represents the extract-text request body.
type ExtractTextRequest struct {
	Screen domain.Screen `json:"screen" swaggertype:"string" example:"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="`
	Query  *string       `json:"query" binding:"required" example:"What is the total price?"`
}

// --- Response Types ---

// FindDefectsResponse lists the defects found on a screen. An empty list
// means no defects and, when an assertion was given, that it passed.
type FindDefectsResponse struct {
	Defects []domain.Defect `json:"defects"`
}

// ExtractTextResponse holds the text answering the query.
type ExtractTextResponse struct {
	Text string `json:"text" example:"$12.99"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"llm api key not configured"`
}

// ServiceInfo represents the root metadata response.
type ServiceInfo struct {
	Service string `json:"service" example:"Maestro AI Server"`
	Version string `json:"version" example:"0.1.0"`
	Docs    string `json:"docs" example:"/docs/index.html"`
}
