package api

import (
	"net/http"

	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/internal/noteservice"
)

// NoteHandler serves the /users/{userId}/notes routes.
type NoteHandler struct {
	svc         *noteservice.Service
	maxPageSize int
}

// ListNotes handles GET /api/users/{userId}/notes.
//
//	@Summary	List a user's notes, newest first
//	@Tags		notes
//	@Produce	json
//	@Param		userId	path		int	true	"Owner id"
//	@Param		page	query		int	false	"Page number, from 1"
//	@Param		size	query		int	false	"Page size"
//	@Success	200		{object}	models.ItemsResponse[models.Note]
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId}/notes [get]
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to retrieve notes."

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	page, err := pageRequest(r, h.maxPageSize)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	resp, err := h.svc.ListNotes(r.Context(), userID, page)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote handles GET /api/users/{userId}/notes/{noteId}.
//
//	@Summary	Get one of a user's notes
//	@Tags		notes
//	@Produce	json
//	@Param		userId	path		int	true	"Owner id"
//	@Param		noteId	path		int	true	"Note id"
//	@Success	200		{object}	models.Note
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId}/notes/{noteId} [get]
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to retrieve note data."

	userID, noteID, err := noteIDs(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	n, err := h.svc.GetNote(r.Context(), userID, noteID)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/users/{userId}/notes.
//
//	@Summary	Create a note for a user
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		userId	path		int					true	"Owner id"
//	@Param		body	body		models.NoteInput	true	"Note to create"
//	@Success	200		{object}	IDResponse
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId}/notes [post]
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to create a new note."

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	in, err := noteInput(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	id, err := h.svc.CreateNote(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, IDResponse{ID: id})
}

// UpdateNote handles PUT /api/users/{userId}/notes/{noteId}.
//
//	@Summary	Replace a note's title and content
//	@Tags		notes
//	@Accept		json
//	@Param		userId	path	int					true	"Owner id"
//	@Param		noteId	path	int					true	"Note id"
//	@Param		body	body	models.NoteInput	true	"New values"
//	@Success	204		"Note updated"
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId}/notes/{noteId} [put]
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to update a note."

	userID, noteID, err := noteIDs(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	in, err := noteInput(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	if err := h.svc.UpdateNote(r.Context(), userID, noteID, in); err != nil {
		writeError(w, r, err, failure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNote handles DELETE /api/users/{userId}/notes/{noteId}.
//
//	@Summary	Delete a note
//	@Tags		notes
//	@Param		userId	path	int	true	"Owner id"
//	@Param		noteId	path	int	true	"Note id"
//	@Success	204		"Note deleted"
//	@Failure	400		{object}	ValidationProblem
//	@Failure	404		{object}	Problem
//	@Router		/users/{userId}/notes/{noteId} [delete]
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	const failure = "An error occurred when attempting to delete a note."

	userID, noteID, err := noteIDs(r)
	if err != nil {
		writeError(w, r, err, failure)
		return
	}
	if err := h.svc.DeleteNote(r.Context(), userID, noteID); err != nil {
		writeError(w, r, err, failure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func noteIDs(r *http.Request) (userID, noteID int64, err error) {
	if userID, err = pathID(r, "userId"); err != nil {
		return 0, 0, err
	}
	if noteID, err = pathID(r, "noteId"); err != nil {
		return 0, 0, err
	}
	return userID, noteID, nil
}

func noteInput(r *http.Request) (models.NoteInput, error) {
	var in models.NoteInput
	if err := decodeBody(r, &in); err != nil {
		return in, err
	}
	return in, models.Check(in)
}
