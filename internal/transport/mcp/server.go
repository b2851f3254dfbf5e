// Package mcp exposes the assistant as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/folio/configs"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/contact"
	"github.com/sandevgo/folio/internal/service/dialogue"
	"github.com/sandevgo/folio/internal/service/session"
	"github.com/sandevgo/folio/internal/service/state"
	"github.com/sandevgo/folio/pkg/conv"
	"github.com/sandevgo/folio/pkg/log"
)

const (
	defaultSession = "default"
	knowledgeURI   = "folio://knowledge"
)

type contactSubmitter interface {
	Submit(ctx context.Context, sub core.ContactSubmission) (int64, error)
}

// Deps holds the collaborators of the tool server. Contact may be nil.
// An empty KnowledgePath serves the embedded knowledge base.
type Deps struct {
	Engine        *dialogue.Engine
	KnowledgePath string
	Contact       contactSubmitter
	SessionOpts   []session.Option
}

// Server keeps one conversation per session argument so that follow-up
// questions see the context of earlier ones.
type Server struct {
	deps     Deps
	mcp      *server.MCPServer
	sessions *state.Registry

	tools []string

	mu      sync.Mutex
	replies map[string]*session.ReplyWaiter
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:    deps,
		replies: make(map[string]*session.ReplyWaiter),
	}
	s.sessions = state.NewRegistry(s.newSession)
	s.mcp = s.build()
	return s
}

func (s *Server) build() *server.MCPServer {
	name := s.deps.Engine.Knowledge().Personal().Name
	m := server.NewMCPServer(
		core.FolioName,
		core.FolioVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(fmt.Sprintf("folio answers questions about %s: education, experience, skills, projects, certifications and how to get in touch.", name)),
		server.WithRecovery(),
	)

	s.addTool(m,
		mcp.NewTool("ask",
			mcp.WithDescription(fmt.Sprintf("Ask %s's portfolio assistant a question. Reuse the same session for follow-ups.", name)),
			mcp.WithString("question", mcp.Description("The visitor's message"), mcp.Required()),
			mcp.WithString("session", mcp.Description("Conversation id (default \"default\")")),
		),
		s.handleAsk,
	)

	s.addTool(m,
		mcp.NewTool("classify",
			mcp.WithDescription("Return the intent a message would be classified as, without changing any conversation."),
			mcp.WithString("question", mcp.Description("The message to classify"), mcp.Required()),
			mcp.WithString("session", mcp.Description("Conversation whose context is used")),
		),
		s.handleClassify,
	)

	s.addTool(m,
		mcp.NewTool("links",
			mcp.WithDescription("List profile links: LinkedIn, GitHub, email and resume."),
		),
		s.handleLinks,
	)

	s.addTool(m,
		mcp.NewTool("reset",
			mcp.WithDescription("Forget a conversation and start over."),
			mcp.WithString("session", mcp.Description("Conversation id (default \"default\")")),
		),
		s.handleReset,
	)

	if s.deps.Contact != nil {
		s.addTool(m,
			mcp.NewTool("contact",
				mcp.WithDescription(fmt.Sprintf("Send a message to %s's inbox.", name)),
				mcp.WithString("name", mcp.Description("Sender name"), mcp.Required()),
				mcp.WithString("email", mcp.Description("Sender email address"), mcp.Required()),
				mcp.WithString("message", mcp.Description("Message body"), mcp.Required()),
			),
			s.handleContact,
		)
	}

	m.AddResource(
		mcp.NewResource(
			knowledgeURI,
			"Knowledge Base",
			mcp.WithResourceDescription("Default knowledge base the assistant answers from"),
			mcp.WithMIMEType("application/yaml"),
		),
		s.handleKnowledge,
	)

	return m
}

func (s *Server) addTool(m *server.MCPServer, tool mcp.Tool, handler server.ToolHandlerFunc) {
	m.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

// Tools lists the registered tool names in registration order.
func (s *Server) Tools() []string {
	return slices.Clone(s.tools)
}

// Serve speaks MCP over the given streams until ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	defer s.sessions.Shutdown(ctx)

	log.FromCtx(ctx).Info().Strs("tools", s.tools).Msg("MCP server started (stdio transport)")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) newSession(ctx context.Context, id string) *session.Session {
	waiter := session.NewReplyWaiter()

	s.mu.Lock()
	s.replies[id] = waiter
	s.mu.Unlock()

	opts := append(slices.Clone(s.deps.SessionOpts), session.WithObserver(waiter))
	return session.New(ctx, id, s.deps.Engine, opts...)
}

func (s *Server) waiter(id string) *session.ReplyWaiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replies[id]
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcpError("question is required"), nil
	}
	id := req.GetString("session", defaultSession)

	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	waiter := s.waiter(id)
	if waiter == nil {
		return mcpError("conversation was reset, please ask again"), nil
	}

	reply, err := waiter.Ask(ctx, sess, question)
	if err != nil {
		return mcpError(err.Error()), nil
	}

	text, err := conv.MarkdownToText([]byte(reply.Text))
	if err != nil {
		text = reply.Text
	}
	if reply.HasLinks {
		text += "\n\n" + formatLinks(s.deps.Engine.LinkActions())
	}
	return mcpText(text), nil
}

func (s *Server) handleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcpError("question is required"), nil
	}

	c := core.NewContext()
	if sess, ok := s.sessions.Lookup(req.GetString("session", defaultSession)); ok {
		c = sess.Context()
	}
	return mcpText(string(dialogue.Classify(question, c))), nil
}

func (s *Server) handleLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcpText(formatLinks(s.deps.Engine.LinkActions())), nil
}

func (s *Server) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session", defaultSession)
	s.sessions.Drop(id)

	s.mu.Lock()
	delete(s.replies, id)
	s.mu.Unlock()

	return mcpText(fmt.Sprintf("Conversation %q cleared.", id)), nil
}

func (s *Server) handleContact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sub := core.ContactSubmission{
		Name:    req.GetString("name", ""),
		Email:   req.GetString("email", ""),
		Message: req.GetString("message", ""),
	}

	if _, err := s.deps.Contact.Submit(ctx, sub); err != nil {
		var fe *contact.FieldError
		if errors.As(err, &fe) {
			return mcpError(fe.Error()), nil
		}
		return mcpError(contact.ErrTryAgainLater.Error()), nil
	}
	return mcpText("Thank you! Your message has been sent."), nil
}

func (s *Server) handleKnowledge(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var (
		data []byte
		err  error
	)
	if s.deps.KnowledgePath == "" {
		data, err = configs.FS.ReadFile(configs.KnowledgeFile)
	} else {
		data, err = os.ReadFile(s.deps.KnowledgePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/yaml",
			Text:     string(data),
		},
	}, nil
}

func formatLinks(links []core.LinkAction) string {
	var b strings.Builder
	for _, l := range links {
		fmt.Fprintf(&b, "%s: %s\n", l.Label, strings.TrimPrefix(l.URL, "mailto:"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
