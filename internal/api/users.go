package api

import (
	"net/http"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/internal/userservice"
)

// UserHandler serves the /users routes.
type UserHandler struct {
	svc         *userservice.Service
	maxPageSize int
}

// ListUsers handles GET /api/users.
//
//	@Summary	List users, optionally one page at a time
//	@Tags		users
//	@Produce	json
//	@Param		page	query		int	false	"Page number, from 1"
//	@Param		size	query		int	false	"Page size"
//	@Success	200		{object}	models.ItemsResponse[models.User]
//	@Failure	400		{object}	ValidationProblem
//	@Router		/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to retrieve users."

	page, err := pageRequest(r, h.maxPageSize)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	resp, err := h.svc.ListUsers(r.Context(), page)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /api/users/{userId}.
//
//	@Summary	Get a user
//	@Tags		users
//	@Produce	json
//	@Param		userId	path		int	true	"User id"
//	@Success	200		{object}	models.User
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to retrieve user data."

	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /api/users.
//
//	@Summary	Create a user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.UserInput	true	"User to create"
//	@Success	200		{object}	IDResponse
//	@Failure	400		{object}	ValidationProblem
//	@Router		/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to create a new user."

	in, err := userInput(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	id, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

// UpdateUser handles PUT /api/users/{userId}.
//
//	@Summary	Replace a user's username and email
//	@Tags		users
//	@Accept		json
//	@Param		userId	path	int					true	"User id"
//	@Param		body	body	models.UserInput	true	"New values"
//	@Success	204		"User updated"
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to update a user."

	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	in, err := userInput(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	if err := h.svc.UpdateUser(r.Context(), id, in); err != nil {
		writeError(w, r, err, failure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/users/{userId}. The user's notes go with it.
//
//	@Summary	Delete a user and their notes
//	@Tags		users
//	@Param		userId	path	int	true	"User id"
//	@Success	204		"User deleted"
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to delete a user."

	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err, failure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userInput(r *http.Request) (models.UserInput, error) {
	var in models.UserInput
	if err := decodeBody(r, &in); err != nil {
		return in, err
	}
	return in, models.Check(in)
}
