// Package mcpserver exposes the blog to LLM clients as a read-only MCP
// (Model Context Protocol) server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
)

// Blog is the part of the blog service the tools read from.
type Blog interface {
	ListPosts(ctx context.Context) []models.Post
	GetPost(ctx context.Context, id string) (models.Post, error)
	Search(ctx context.Context, query string, limit int) ([]blog.SearchHit, error)
}

// Server wraps the MCP server with the folio tools.
type Server struct {
	mcp  *server.MCPServer
	blog Blog
}

// New creates a new MCP server with all tools registered.
func New(b Blog, version string) *Server {
	s := &Server{blog: b}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List every post, newest first, with id, title, date and extra metadata."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read one post by id, including its raw content and rendered HTML."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id (file name without extension)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the content file format. Read it before drafting a post."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format",
			mcp.WithResourceDescription("Format of the files in the posts directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.blog.ListPosts(ctx))
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.blog.GetPost(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", index.DefaultSearchLimit)
	hits, err := s.blog.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return jsonResult(hits)
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}
