// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is returned by operations with no resource to echo back.
type MessageResponse struct {
	Message string `json:"message"`
}
