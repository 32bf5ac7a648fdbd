// Package models defines the domain types shared by the storage, service and
// transport layers.
package models

import validation "github.com/go-ozzo/ozzo-validation/v4"

const (
	msgUsername  = "Username is required and should not exceed 50 characters."
	msgUserEmail = "User email is required and should not exceed 100 characters."
)

// User owns notes.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserInput is the body of both create and update requests.
type UserInput struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// Validate implements validation.Validatable.
func (in UserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username,
			validation.Required.Error(msgUsername),
			notBlank(msgUsername),
			validation.RuneLength(0, 50).Error(msgUsername)),
		validation.Field(&in.Email,
			validation.Required.Error(msgUserEmail),
			notBlank(msgUserEmail),
			validation.RuneLength(0, 100).Error(msgUserEmail)),
	)
}

func (UserInput) fieldOrder() []string {
	return []string{"username", "email"}
}
