package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	msgNoteTitle   = "Note title is required and should not exceed 200 characters."
	msgNoteContent = "Note content is required."
)

// Note is a piece of text owned by a single user.
type Note struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NoteInput is the body of both create and update requests.
type NoteInput struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"milk, eggs"`
}

// Validate implements validation.Validatable.
func (in NoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.Required.Error(msgNoteTitle),
			notBlank(msgNoteTitle),
			validation.RuneLength(0, 200).Error(msgNoteTitle)),
		validation.Field(&in.Content,
			validation.Required.Error(msgNoteContent),
			notBlank(msgNoteContent)),
	)
}

func (NoteInput) fieldOrder() []string {
	return []string{"title", "content"}
}
