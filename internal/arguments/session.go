package arguments

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
	"github.com/funvibe/argscope/internal/inference"
)

// Handle identifies a TreeArguments within its session. The zero Handle is
// never issued.
type Handle int

type cacheKey struct {
	ctx     inference.Context
	node    *ast.Node
	trailer *ast.Node
}

// Session is one inference run. It owns every TreeArguments created during
// the run and deduplicates call sites seen more than once. A session is
// used from a single goroutine.
type Session struct {
	ID       uuid.UUID
	Logger   *zap.Logger
	Reporter diagnostics.Reporter
	Binder   Binder
	Searcher DynamicSearcher

	arena []*TreeArguments
	cache map[cacheKey]*TreeArguments
}

// NewSession creates a session reporting to reporter. A nil reporter
// discards issues.
func NewSession(reporter diagnostics.Reporter) *Session {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Session{
		ID:       uuid.New(),
		Logger:   zap.NewNop(),
		Reporter: reporter,
		cache:    make(map[cacheKey]*TreeArguments),
	}
}

// SetLogger installs logger, tagging it with the session ID.
func (s *Session) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.Logger = logger.With(zap.String("session", s.ID.String()))
}

// NewTreeArguments registers a new call-site Arguments. trailer may be nil,
// e.g. for class bases.
func (s *Session) NewTreeArguments(ctx inference.Context, argumentNode, trailer *ast.Node) *TreeArguments {
	a := &TreeArguments{
		session:      s,
		context:      ctx,
		argumentNode: argumentNode,
		trailer:      trailer,
	}
	s.arena = append(s.arena, a)
	a.handle = Handle(len(s.arena))
	return a
}

// TreeArgumentsCached returns the session's Arguments for (ctx, node,
// trailer), creating it on first use.
func (s *Session) TreeArgumentsCached(ctx inference.Context, argumentNode, trailer *ast.Node) *TreeArguments {
	key := cacheKey{ctx: ctx, node: argumentNode, trailer: trailer}
	if a, ok := s.cache[key]; ok {
		return a
	}
	a := s.NewTreeArguments(ctx, argumentNode, trailer)
	s.cache[key] = a
	return a
}

// Lookup returns the Arguments registered under h, or nil.
func (s *Session) Lookup(h Handle) *TreeArguments {
	if h <= 0 || int(h) > len(s.arena) {
		return nil
	}
	return s.arena[h-1]
}

// Len returns the number of registered call-site Arguments.
func (s *Session) Len() int {
	return len(s.arena)
}

// Reset ends the session: registered Arguments are forgotten and a new ID
// is assigned.
func (s *Session) Reset() {
	s.arena = nil
	s.cache = make(map[cacheKey]*TreeArguments)
	s.ID = uuid.New()
}

func (s *Session) report(err *diagnostics.DiagnosticError) {
	if s == nil || s.Reporter == nil {
		return
	}
	s.Reporter.Report(err)
}

func (s *Session) logger() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
