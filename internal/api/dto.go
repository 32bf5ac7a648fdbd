package api

import "github.com/starford/notesapi/internal/apperr"

const problemTitle = "Notes API"

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID int64 `json:"id" example:"1"`
}

// Problem is the body of 404 and 500 responses.
type Problem struct {
	Title  string `json:"title" example:"Notes API"`
	Detail string `json:"detail,omitempty"`
}

// ValidationProblem is the body of 400 responses.
type ValidationProblem struct {
	Title            string              `json:"title" example:"Notes API"`
	Detail           string              `json:"detail,omitempty"`
	ValidationErrors []apperr.FieldError `json:"validation_errors"`
}
