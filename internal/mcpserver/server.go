// Package mcpserver exposes user and note operations as MCP (Model Context
// Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesapi/internal/apperr"
	"github.com/starford/notesapi/internal/models"
	"github.com/starford/notesapi/internal/noteservice"
	"github.com/starford/notesapi/internal/userservice"
)

// Server wraps the MCP server with the notes tools.
type Server struct {
	mcp         *server.MCPServer
	users       *userservice.Service
	notes       *noteservice.Service
	maxPageSize int
}

// New creates a new MCP server with all tools registered. maxPageSize caps
// the size argument of list tools; 0 disables the cap.
func New(users *userservice.Service, notes *noteservice.Service, maxPageSize int) *Server {
	s := &Server{users: users, notes: notes, maxPageSize: maxPageSize}

	s.mcp = server.NewMCPServer(
		"Notes API",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	userID := mcp.WithNumber("user_id", mcp.Required(), mcp.Description("User id"))
	noteID := mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Note id"))
	page := mcp.WithNumber("page", mcp.Description("Page number, from 1. Requires size."))
	size := mcp.WithNumber("size", mcp.Description("Page size. Requires page."))
	username := mcp.WithString("username", mcp.Required(), mcp.Description("Up to 50 characters"))
	email := mcp.WithString("email", mcp.Required(), mcp.Description("Up to 100 characters"))
	title := mcp.WithString("title", mcp.Required(), mcp.Description("Up to 200 characters"))
	content := mcp.WithString("content", mcp.Required(), mcp.Description("Note text"))

	s.mcp.AddTool(mcp.NewTool("list_users",
		mcp.WithDescription("List users by ascending id. Pass page and size together to get one page."),
		page, size,
	), s.listUsers)

	s.mcp.AddTool(mcp.NewTool("get_user",
		mcp.WithDescription("Get a user by id."),
		userID,
	), s.getUser)

	s.mcp.AddTool(mcp.NewTool("create_user",
		mcp.WithDescription("Create a user and return its id."),
		username, email,
	), s.createUser)

	s.mcp.AddTool(mcp.NewTool("update_user",
		mcp.WithDescription("Replace a user's username and email."),
		userID, username, email,
	), s.updateUser)

	s.mcp.AddTool(mcp.NewTool("delete_user",
		mcp.WithDescription("Delete a user together with all of their notes."),
		userID,
	), s.deleteUser)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List a user's notes, newest first. Pass page and size together to get one page."),
		userID, page, size,
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get one of a user's notes."),
		userID, noteID,
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note for a user and return its id."),
		userID, title, content,
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace a note's title and content."),
		userID, noteID, title, content,
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete one of a user's notes."),
		userID, noteID,
	), s.deleteNote)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.pageArgs(req)
	if err != nil {
		return toolError(ctx, "list_users", err), nil
	}
	resp, err := s.users.ListUsers(ctx, page)
	if err != nil {
		return toolError(ctx, "list_users", err), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) getUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "user_id")
	if err != nil {
		return toolError(ctx, "get_user", err), nil
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return toolError(ctx, "get_user", err), nil
	}
	return jsonResult(u), nil
}

func (s *Server) createUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := userInput(req)
	if err := models.Check(in); err != nil {
		return toolError(ctx, "create_user", err), nil
	}
	id, err := s.users.CreateUser(ctx, in)
	if err != nil {
		return toolError(ctx, "create_user", err), nil
	}
	return jsonResult(map[string]int64{"id": id}), nil
}

func (s *Server) updateUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "user_id")
	if err != nil {
		return toolError(ctx, "update_user", err), nil
	}
	in := userInput(req)
	if err := models.Check(in); err != nil {
		return toolError(ctx, "update_user", err), nil
	}
	if err := s.users.UpdateUser(ctx, id, in); err != nil {
		return toolError(ctx, "update_user", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated user %d", id)), nil
}

func (s *Server) deleteUser(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := idArg(req, "user_id")
	if err != nil {
		return toolError(ctx, "delete_user", err), nil
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return toolError(ctx, "delete_user", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted user %d", id)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "user_id")
	if err != nil {
		return toolError(ctx, "list_notes", err), nil
	}
	page, err := s.pageArgs(req)
	if err != nil {
		return toolError(ctx, "list_notes", err), nil
	}
	resp, err := s.notes.ListNotes(ctx, userID, page)
	if err != nil {
		return toolError(ctx, "list_notes", err), nil
	}
	return jsonResult(resp), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, noteID, err := noteArgs(req)
	if err != nil {
		return toolError(ctx, "get_note", err), nil
	}
	n, err := s.notes.GetNote(ctx, userID, noteID)
	if err != nil {
		return toolError(ctx, "get_note", err), nil
	}
	return jsonResult(n), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := idArg(req, "user_id")
	if err != nil {
		return toolError(ctx, "create_note", err), nil
	}
	in := noteInput(req)
	if err := models.Check(in); err != nil {
		return toolError(ctx, "create_note", err), nil
	}
	id, err := s.notes.CreateNote(ctx, userID, in)
	if err != nil {
		return toolError(ctx, "create_note", err), nil
	}
	return jsonResult(map[string]int64{"id": id}), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, noteID, err := noteArgs(req)
	if err != nil {
		return toolError(ctx, "update_note", err), nil
	}
	in := noteInput(req)
	if err := models.Check(in); err != nil {
		return toolError(ctx, "update_note", err), nil
	}
	if err := s.notes.UpdateNote(ctx, userID, noteID, in); err != nil {
		return toolError(ctx, "update_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated note %d", noteID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, noteID, err := noteArgs(req)
	if err != nil {
		return toolError(ctx, "delete_note", err), nil
	}
	if err := s.notes.DeleteNote(ctx, userID, noteID); err != nil {
		return toolError(ctx, "delete_note", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted note %d", noteID)), nil
}

func userInput(req mcp.CallToolRequest) models.UserInput {
	return models.UserInput{
		Username: req.GetString("username", ""),
		Email:    req.GetString("email", ""),
	}
}

func noteInput(req mcp.CallToolRequest) models.NoteInput {
	return models.NoteInput{
		Title:   req.GetString("title", ""),
		Content: req.GetString("content", ""),
	}
}

func idArg(req mcp.CallToolRequest, name string) (int64, error) {
	f, err := req.RequireFloat(name)
	n, ok := wholeNumber(f)
	if err != nil || !ok || n <= 0 {
		return 0, apperr.Invalid(name, fmt.Sprintf("%s must be a positive integer.", name))
	}
	return n, nil
}

// wholeNumber converts a JSON number to int64, rejecting fractions and
// values outside the int64 range.
func wholeNumber(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func noteArgs(req mcp.CallToolRequest) (userID, noteID int64, err error) {
	if userID, err = idArg(req, "user_id"); err != nil {
		return 0, 0, err
	}
	if noteID, err = idArg(req, "note_id"); err != nil {
		return 0, 0, err
	}
	return userID, noteID, nil
}

// pageArgs mirrors the REST page/size query parameters.
func (s *Server) pageArgs(req mcp.CallToolRequest) (*models.PageRequest, error) {
	args := req.GetArguments()
	_, hasPage := args["page"]
	_, hasSize := args["size"]

	verr := &apperr.ValidationError{}
	page, pageOK := positiveArg(req, "page")
	if hasPage && !pageOK {
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "page", Message: "page must be a positive integer."})
	}
	size, sizeOK := positiveArg(req, "size")
	switch {
	case hasSize && !sizeOK:
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "size", Message: "size must be a positive integer."})
	case s.maxPageSize > 0 && size > s.maxPageSize:
		verr.Fields = append(verr.Fields, apperr.FieldError{Field: "size", Message: fmt.Sprintf("size must not exceed %d.", s.maxPageSize)})
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	if !hasPage || !hasSize {
		return nil, nil
	}
	pr := &models.PageRequest{Page: page, Size: size}
	if !pr.Reachable() {
		return nil, apperr.Invalid("page", models.MsgPageTooLarge)
	}
	return pr, nil
}

func positiveArg(req mcp.CallToolRequest, name string) (int, bool) {
	f, err := req.RequireFloat(name)
	if err != nil {
		return 0, false
	}
	n, ok := wholeNumber(f)
	if !ok || n < 1 || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// toolError reports failures as tool results. Unexpected errors are logged
// and replaced by a generic message.
func toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		lines := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			lines[i] = f.Field + ": " + f.Message
		}
		return mcp.NewToolResultError("invalid arguments:\n" + strings.Join(lines, "\n"))
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(err.Error())
	default:
		slog.ErrorContext(ctx, "mcp tool failed", slog.String("tool", tool), slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: internal error", tool))
	}
}
