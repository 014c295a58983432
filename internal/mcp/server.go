// Package mcp exposes the signed-in user's board to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"notrello/internal/auth"
	"notrello/internal/cards"
	"notrello/internal/categories"
	"notrello/internal/notes"
)

type CardService interface {
	List(ctx context.Context, user primitive.ObjectID, q cards.ListQuery) ([]*cards.Card, error)
	Move(ctx context.Context, user primitive.ObjectID, id, slot string) (*cards.MoveResult, error)
	ImportICS(ctx context.Context, user primitive.ObjectID, content, category string) (*cards.ImportResult, error)
	Today() string
}

type CategoryService interface {
	List(ctx context.Context, user primitive.ObjectID) ([]*categories.Category, error)
}

type NoteService interface {
	Search(ctx context.Context, user primitive.ObjectID, q notes.SearchQuery) ([]*notes.Note, error)
	Get(ctx context.Context, user primitive.ObjectID, id string) (*notes.Note, error)
}

type Services struct {
	Cards      CardService
	Categories CategoryService
	Notes      NoteService
}

var errAnonymous = errors.New("not authenticated")

// NewServer creates an MCP server whose tools act on behalf of the user
// carried by the request context.
func NewServer(svc Services, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Notrello",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_cards",
			mcp.WithDescription("List the user's cards for one day (default today) or for a date range, ordered by date and start time."),
			mcp.WithString("date",
				mcp.Description("Day to list, YYYY-MM-DD. Ignored when from/to are given."),
			),
			mcp.WithString("from",
				mcp.Description("Optional: first day of a range, YYYY-MM-DD"),
			),
			mcp.WithString("to",
				mcp.Description("Optional: last day of a range, YYYY-MM-DD"),
			),
		),
		handleListCards(svc),
	)

	s.AddTool(
		mcp.NewTool("list_categories",
			mcp.WithDescription("List the user's card categories with their colours."),
		),
		handleListCategories(svc),
	)

	s.AddTool(
		mcp.NewTool("move_card",
			mcp.WithDescription("Move a card to another slot of the daily timeline. The card keeps its duration; dropping it on a time that is not a slot changes nothing."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The card ID (24-character hex string)"),
			),
			mcp.WithString("slot",
				mcp.Required(),
				mcp.Description("Target slot as HH:MM, e.g. '14:00'"),
			),
		),
		handleMoveCard(svc),
	)

	s.AddTool(
		mcp.NewTool("import_ics",
			mcp.WithDescription("Import the events of an iCalendar (.ics) document as cards. Events already imported are skipped."),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("The full text of the .ics file"),
			),
			mcp.WithString("category",
				mcp.Description("Optional: category ID to file the new cards under"),
			),
		),
		handleImportICS(svc),
	)

	s.AddTool(
		mcp.NewTool("search_notes",
			mcp.WithDescription("Full-text search across the user's notes with optional date filtering."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query - searches note titles and content"),
			),
			mcp.WithString("since",
				mcp.Description("Optional: Only return notes created after this date (ISO format: YYYY-MM-DD or RFC3339)"),
			),
			mcp.WithString("until",
				mcp.Description("Optional: Only return notes created before this date (ISO format: YYYY-MM-DD or RFC3339)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 50, max: 200)"),
			),
		),
		handleSearchNotes(svc),
	)

	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(svc),
	)

	return s
}

// NewHTTPHandler serves s over the streamable HTTP transport. identify
// resolves the caller of each request; tools refuse to run without one.
func NewHTTPHandler(s *server.MCPServer, identify func(*http.Request) (auth.Identity, bool)) http.Handler {
	return server.NewStreamableHTTPServer(s,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if id, ok := identify(r); ok {
				return auth.WithIdentity(ctx, id)
			}
			return ctx
		}),
	)
}

// CardResult represents a card in tool responses
type CardResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime,omitempty"`
	Category    string `json:"category,omitempty"`
	Color       string `json:"color,omitempty"`
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Card      string    `json:"carte,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func handleListCards(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}

		q := cards.ListQuery{
			From: req.GetString("from", ""),
			To:   req.GetString("to", ""),
		}
		if q.From == "" && q.To == "" {
			q.Date = req.GetString("date", svc.Cards.Today())
		}

		list, err := svc.Cards.List(ctx, id.UserID, q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list cards: %v", err)), nil
		}
		cats, err := svc.Categories.List(ctx, id.UserID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
		}

		known := categories.Index(cats)
		results := make([]CardResult, len(list))
		for i, c := range list {
			results[i] = cardToResult(c, known)
		}
		return jsonResult(results), nil
	}
}

func handleListCategories(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}

		list, err := svc.Categories.List(ctx, id.UserID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
		}
		if list == nil {
			list = []*categories.Category{}
		}
		return jsonResult(list), nil
	}
}

func handleMoveCard(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}
		cardID, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		slot, err := req.RequireString("slot")
		if err != nil {
			return mcp.NewToolResultError("slot is required"), nil
		}

		res, err := svc.Cards.Move(ctx, id.UserID, cardID, slot)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to move card: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"moved": res.Moved,
			"carte": cardToResult(res.Card, nil),
		}), nil
	}
}

func handleImportICS(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}

		res, err := svc.Cards.ImportICS(ctx, id.UserID, content, req.GetString("category", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to import calendar: %v", err)), nil
		}
		return jsonResult(map[string]any{
			"imported": res.Imported,
			"skipped":  res.Skipped,
			"errors":   res.Errors,
		}), nil
	}
}

func handleSearchNotes(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		q := notes.SearchQuery{
			Query: query,
			Limit: req.GetInt("limit", 50),
		}
		if since := req.GetString("since", ""); since != "" {
			t, err := parseDate(since)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'since' date format: %v", err)), nil
			}
			q.Since = &t
		}
		if until := req.GetString("until", ""); until != "" {
			t, err := parseDate(until)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'until' date format: %v", err)), nil
			}
			q.Until = &t
		}

		list, err := svc.Notes.Search(ctx, id.UserID, q)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to search notes: %v", err)), nil
		}
		results := make([]NoteResult, len(list))
		for i, n := range list {
			results[i] = noteToResult(n)
		}
		return jsonResult(results), nil
	}
}

func handleGetNote(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := auth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError(errAnonymous.Error()), nil
		}
		noteID, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		n, err := svc.Notes.Get(ctx, id.UserID, noteID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}
		return jsonResult(noteToResult(n)), nil
	}
}

func cardToResult(c *cards.Card, known map[primitive.ObjectID]*categories.Category) CardResult {
	r := CardResult{
		ID:          c.ID.Hex(),
		Title:       c.Title,
		Description: c.Description,
		Date:        c.Date,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
	}
	switch ref := categories.Resolve(c.CategoryID, known).(type) {
	case categories.Expanded:
		r.Category = ref.Name
		r.Color = string(ref.Color)
	case categories.Unexpanded:
		r.Category = ref.ID.Hex()
	}
	return r
}

func noteToResult(n *notes.Note) NoteResult {
	r := NoteResult{
		ID:        n.ID.Hex(),
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.CardID != nil {
		r.Card = n.CardID.Hex()
	}
	return r
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339 format")
}
