package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
)

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, fmt.Sprintf("%s must be a positive integer.", name))
	}
	return id, nil
}

// pageRequest reads the optional page and size query parameters. Both must
// be present to select a page; otherwise the whole collection is returned.
func pageRequest(r *http.Request, maxSize int) (*models.PageRequest, error) {
	q := r.URL.Query()
	verr := &apperr.ValidationError{}

	page, pageOK := positiveQuery(q.Get("page"))
	if q.Has("page") && !pageOK {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "page", Message: "page must be a positive integer."})
	}

	size, sizeOK := positiveQuery(q.Get("size"))
	switch {
	case q.Has("size") && !sizeOK:
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "size", Message: "size must be a positive integer."})
	case sizeOK && maxSize > 0 && size > maxSize:
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "size", Message: fmt.Sprintf("size must not exceed %d.", maxSize)})
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	if !pageOK || !sizeOK {
		return nil, nil
	}
	pr := &models.PageRequest{Page: page, Size: size}
	if !pr.Reachable() {
		return nil, apperr.Invalid("page", models.MsgPageTooLarge)
	}
	return pr, nil
}

func positiveQuery(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
