package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSourceFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.py"))
	touch(t, filepath.Join(dir, "pkg", "b.pyi"))
	touch(t, filepath.Join(dir, "pkg", "notes.txt"))
	touch(t, filepath.Join(dir, ".venv", "c.py"))
	touch(t, filepath.Join(dir, "pkg", "__pycache__", "d.py"))
	script := filepath.Join(dir, "script")
	touch(t, script)

	got, err := SourceFiles([]string{script, dir, filepath.Join(dir, "a.py")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		script,
		filepath.Join(dir, "a.py"),
		filepath.Join(dir, "pkg", "b.pyi"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v\nwant %v", got, want)
	}
}

func TestSourceFiles_MissingPathIsKept(t *testing.T) {
	got, err := SourceFiles([]string{"missing.py"})
	if err != nil || len(got) != 1 || got[0] != "missing.py" {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestConfigSearchDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.py")
	touch(t, file)
	if got := ConfigSearchDir(file); got != dir {
		t.Errorf("file: got %s, want %s", got, dir)
	}
	if got := ConfigSearchDir(dir); got != dir {
		t.Errorf("dir: got %s, want %s", got, dir)
	}
}
