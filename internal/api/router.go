// Package api implements the Notes REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesapi/internal/noteservice"
	"github.com/starford/notesapi/internal/userservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
// maxPageSize caps the size query parameter; 0 disables the cap.
func NewRouter(users *userservice.Service, notes *noteservice.Service, sseHandler http.Handler, maxPageSize int) chi.Router {
	uh := &UserHandler{svc: users, maxPageSize: maxPageSize}
	nh := &NoteHandler{svc: notes, maxPageSize: maxPageSize}

	r := chi.NewRouter()
	r.Use(LimitBody(1 << 20))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", uh.ListUsers)
		r.Post("/", uh.CreateUser)

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", uh.GetUser)
			r.Put("/", uh.UpdateUser)
			r.Delete("/", uh.DeleteUser)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", nh.ListNotes)
				r.Post("/", nh.CreateNote)
				r.Get("/{noteId}", nh.GetNote)
				r.Put("/{noteId}", nh.UpdateNote)
				r.Delete("/{noteId}", nh.DeleteNote)
			})
		})
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
