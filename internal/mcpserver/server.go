// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes coursebook tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/parser"
	"github.com/starford/coursebook/internal/progress"
	"github.com/starford/coursebook/internal/viewstate"
)

const (
	formatURI = "coursebook://bundle-format"
	schemaURI = "coursebook://bundle-schema"
)

// Service is the part of the view-state controller the tools use.
type Service interface {
	Snapshot() viewstate.State
	Courses() []models.CourseMetadata
	ViewOf(ctx context.Context, courseID string, lang models.Language, query string) (viewstate.CourseView, error)
	ToggleBookmark(topicID string) (bool, error)
	ToggleComplete(topicID string) (bool, error)
}

var _ Service = (*viewstate.Controller)(nil)

// Server wraps the MCP server with coursebook tools.
type Server struct {
	mcp *server.MCPServer
	svc Service
}

// New creates a new MCP server with all coursebook tools registered.
func New(svc Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Coursebook",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_courses",
		mcp.WithDescription("List every course in sidebar order with its id, title and icon."),
	), s.listCourses)

	s.mcp.AddTool(mcp.NewTool("get_course",
		mcp.WithDescription("Get a course with all sections and topics, merged for the requested language. "+
			"Topics carry the learner's bookmark and completion flags."),
		mcp.WithString("course_id", mcp.Required(), mcp.Description("Course id from list_courses")),
		mcp.WithString("language", mcp.Description("english or hinglish (defaults to the learner's language)")),
	), s.getCourse)

	s.mcp.AddTool(mcp.NewTool("search_topics",
		mcp.WithDescription("Find topics in a course whose title or English explanation contains the query."),
		mcp.WithString("course_id", mcp.Required(), mcp.Description("Course id from list_courses")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive substring")),
		mcp.WithString("language", mcp.Description("Language of the returned text")),
	), s.searchTopics)

	s.mcp.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Completion statistics for a course: total topics, completed topics and percent."),
		mcp.WithString("course_id", mcp.Description("Course id (defaults to the active course)")),
	), s.getProgress)

	s.mcp.AddTool(mcp.NewTool("toggle_complete",
		mcp.WithDescription("Mark a topic complete, or un-mark it if it already is."),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("Topic id")),
	), s.toggleComplete)

	s.mcp.AddTool(mcp.NewTool("toggle_bookmark",
		mcp.WithDescription("Bookmark a topic, or remove the bookmark if it already exists."),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("Topic id")),
	), s.toggleBookmark)

	s.mcp.AddTool(mcp.NewTool("get_bundle_contract",
		mcp.WithDescription("Returns the course bundle format contract. "+
			"Read this before writing or reviewing course content."),
	), s.getBundleContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Bundle Format Contract",
			mcp.WithResourceDescription("How course bundles are laid out and how translations merge."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(schemaURI, "Bundle Schema",
			mcp.WithResourceDescription("JSON schema for English course bundles."),
			mcp.WithMIMEType("application/schema+json"),
		),
		s.readSchemaResource,
	)

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

// optionalString returns the named argument, or "" when it is absent.
func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCourses(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	courses := s.svc.Courses()
	if len(courses) == 0 {
		return mcp.NewToolResultText("no courses available"), nil
	}
	return jsonResult(courses)
}

func (s *Server) view(ctx context.Context, courseID, lang, query string) (viewstate.CourseView, *mcp.CallToolResult) {
	v, err := s.svc.ViewOf(ctx, courseID, models.Language(lang), query)
	if err != nil {
		return v, mcp.NewToolResultError(err.Error())
	}
	if v.Status != viewstate.StatusReady {
		return v, mcp.NewToolResultError(fmt.Sprintf("course %s is %s", courseID, v.Status))
	}
	return v, nil
}

func (s *Server) getCourse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("course_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, failed := s.view(ctx, id, optionalString(req, "language"), "")
	if failed != nil {
		return failed, nil
	}
	return jsonResult(v)
}

// topicHit is a compact search result.
type topicHit struct {
	SectionID   string          `json:"sectionId"`
	TopicID     string          `json:"topicId"`
	Title       string          `json:"title"`
	Language    models.Language `json:"language"`
	Explanation string          `json:"explanation"`
	Completed   bool            `json:"completed"`
}

func (s *Server) searchTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("course_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, failed := s.view(ctx, id, optionalString(req, "language"), query)
	if failed != nil {
		return failed, nil
	}
	if v.Matches == 0 {
		return mcp.NewToolResultText("no matching topics"), nil
	}
	hits := make([]topicHit, 0, v.Matches)
	for _, sec := range v.Sections {
		for _, t := range sec.Topics {
			hits = append(hits, topicHit{
				SectionID:   sec.ID,
				TopicID:     t.ID,
				Title:       t.Title,
				Language:    t.Language,
				Explanation: t.Explanation,
				Completed:   t.Completed,
			})
		}
	}
	return jsonResult(hits)
}

func (s *Server) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := optionalString(req, "course_id")
	if id == "" {
		id = s.svc.Snapshot().CourseID
	}
	if id == "" {
		return jsonResult(progress.Stats{})
	}
	v, failed := s.view(ctx, id, "", "")
	if failed != nil {
		return failed, nil
	}
	return jsonResult(v.Progress)
}

func (s *Server) toggleComplete(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	done, err := s.svc.ToggleComplete(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if done {
		return mcp.NewToolResultText(fmt.Sprintf("completed: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("not completed: %s", id)), nil
}

func (s *Server) toggleBookmark(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("topic_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.svc.ToggleBookmark(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if added {
		return mcp.NewToolResultText(fmt.Sprintf("bookmarked: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("bookmark removed: %s", id)), nil
}

func (s *Server) getBundleContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BundleFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BundleFormatContract,
		},
	}, nil
}

func (s *Server) readSchemaResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/schema+json",
			Text:     parser.Schema(),
		},
	}, nil
}
