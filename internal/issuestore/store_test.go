package issuestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/funvibe/argscope/internal/ast"
	"github.com/funvibe/argscope/internal/diagnostics"
)

func issue(code diagnostics.ErrorCode, line, col int, msg string) *diagnostics.DiagnosticError {
	return &diagnostics.DiagnosticError{
		Code:    code,
		Pos:     ast.Position{Line: line, Column: col},
		End:     ast.Position{Line: line, Column: col + 1},
		Message: msg,
	}
}

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ReplaceAndRead(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	src := []byte("f()\n")

	if fresh, err := s.Fresh(ctx, "a.py", Hash(src, nil)); err != nil || fresh {
		t.Fatalf("Fresh before storing = %v, %v", fresh, err)
	}

	issues := []*diagnostics.DiagnosticError{
		issue(diagnostics.ErrT006, 3, 4, "too many"),
		issue(diagnostics.ErrT003, 1, 1, "too few"),
	}
	if err := s.Replace(ctx, "a.py", Hash(src, nil), issues); err != nil {
		t.Fatal(err)
	}
	if fresh, err := s.Fresh(ctx, "a.py", Hash(src, nil)); err != nil || !fresh {
		t.Errorf("Fresh after storing = %v, %v", fresh, err)
	}
	if fresh, _ := s.Fresh(ctx, "a.py", Hash([]byte("g()\n"), nil)); fresh {
		t.Error("changed content should not be fresh")
	}

	got, err := s.Issues(ctx, "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d issues, want 2", len(got))
	}
	first := got[0]
	if first.Code != diagnostics.ErrT003 || first.Pos != (ast.Position{Line: 1, Column: 1}) ||
		first.End != (ast.Position{Line: 1, Column: 2}) || first.Message != "too few" || first.File != "a.py" {
		t.Errorf("first issue = %+v", first)
	}
	if got[1].Code != diagnostics.ErrT006 {
		t.Errorf("second issue = %+v", got[1])
	}
}

func TestStore_ReplaceDropsOldIssues(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	if err := s.Replace(ctx, "a.py", Hash([]byte("v1"), nil), []*diagnostics.DiagnosticError{issue(diagnostics.ErrT001, 1, 0, "old")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, "b.py", Hash([]byte("b"), nil), []*diagnostics.DiagnosticError{issue(diagnostics.ErrT002, 1, 0, "other")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, "a.py", Hash([]byte("v2"), nil), nil); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Issues(ctx, "a.py"); len(got) != 0 {
		t.Errorf("a.py still has %v", got)
	}
	if got, _ := s.Issues(ctx, "b.py"); len(got) != 1 {
		t.Errorf("b.py has %d issues, want 1", len(got))
	}
	if fresh, _ := s.Fresh(ctx, "a.py", Hash([]byte("v2"), nil)); !fresh {
		t.Error("a.py should be fresh at its new content")
	}
}

func TestStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "issues.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, "a.py", Hash([]byte("x"), nil), []*diagnostics.DiagnosticError{issue(diagnostics.ErrT004, 2, 3, "kw")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Issues(ctx, "a.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Message != "kw" {
		t.Errorf("got %v after reopening", got)
	}
}

func TestHash(t *testing.T) {
	src, settings := []byte("a"), []byte("max_execution_depth: 8\n")
	if Hash(src, settings) != Hash(src, settings) {
		t.Error("hash is not stable")
	}
	if Hash(src, settings) == Hash([]byte("b"), settings) {
		t.Error("different content hashed equal")
	}
	if Hash(src, settings) == Hash(src, []byte("max_execution_depth: 1\n")) {
		t.Error("different settings hashed equal")
	}
	if Hash([]byte("ab"), nil) == Hash([]byte("b"), []byte("a")) {
		t.Error("settings and source must not run together")
	}
	if h := Hash(nil, nil); len(h) != 16 {
		t.Errorf("hash %q is not 16 hex digits", h)
	}
}

func TestStore_SettingsChangeIsNotFresh(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	src := []byte("f()\n")

	if err := s.Replace(ctx, "a.py", Hash(src, []byte("deep")), nil); err != nil {
		t.Fatal(err)
	}
	if fresh, _ := s.Fresh(ctx, "a.py", Hash(src, []byte("shallow"))); fresh {
		t.Error("issues computed under other settings should not be fresh")
	}
	if fresh, _ := s.Fresh(ctx, "a.py", Hash(src, []byte("deep"))); !fresh {
		t.Error("same source and settings should be fresh")
	}
}
