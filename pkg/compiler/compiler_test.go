package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/levforge/deslev/pkg/script"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name         string
		source       string
		wantPrograms int
		wantErrors   bool
	}{
		{
			name:         "empty source",
			source:       "",
			wantPrograms: 0,
		},
		{
			name:         "single maze",
			source:       "MAZE: \"mine-1\", random\n",
			wantPrograms: 1,
		},
		{
			name: "two levels in one file",
			source: "LEVEL: \"tower-1\"\n" +
				"LEVEL: \"tower-2\"\n",
			wantPrograms: 2,
		},
		{
			name: "maze with flags and message",
			source: "MAZE: \"castle\", random\n" +
				"FLAGS: noteleport\n" +
				"MESSAGE: \"You enter an old castle.\"\n",
			wantPrograms: 1,
		},
		{
			name:       "unterminated string",
			source:     "MAZE: \"mine-1\n",
			wantErrors: true,
		},
		{
			name:       "undeclared variable",
			source:     "LEVEL: \"x\"\n$a = $missing\n",
			wantErrors: true,
		},
		{
			name:       "statement outside a level",
			source:     "MESSAGE: \"hello\"\n",
			wantErrors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			programs, errs := Compile(tt.source)
			if tt.wantErrors {
				if len(errs) == 0 {
					t.Fatal("expected errors, got none")
				}
				return
			}
			if len(errs) > 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(programs) != tt.wantPrograms {
				t.Errorf("got %d programs, want %d", len(programs), tt.wantPrograms)
			}
		})
	}
}

func TestCompileErrorContext(t *testing.T) {
	source := "MAZE: \"mine-1\", random\n" +
		"$a = $missing\n"

	_, errs := Compile(source)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}

	var compileErr *CompileError
	if !errors.As(errs[0], &compileErr) {
		t.Fatalf("expected *CompileError, got %T", errs[0])
	}
	if compileErr.Phase != "parser" {
		t.Errorf("Phase = %q, want %q", compileErr.Phase, "parser")
	}
	if compileErr.Line != 2 {
		t.Errorf("Line = %d, want 2", compileErr.Line)
	}

	msg := compileErr.Error()
	if !strings.Contains(msg, "^") {
		t.Errorf("error message lacks a column marker:\n%s", msg)
	}
	if !strings.Contains(msg, "> 2 | $a = $missing") {
		t.Errorf("error message lacks the marked source line:\n%s", msg)
	}
}

func TestCompileLexerErrorContext(t *testing.T) {
	source := "MAZE: \"mine-1\n"

	_, errs := Compile(source)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}

	var compileErr *CompileError
	if !errors.As(errs[0], &compileErr) {
		t.Fatalf("expected *CompileError, got %T", errs[0])
	}
	if compileErr.Phase != "lexer" {
		t.Errorf("Phase = %q, want %q", compileErr.Phase, "lexer")
	}
}

func TestGenerateErrorContext(t *testing.T) {
	source := "line one\nline two\nline three\nline four\nline five"

	ctx := GenerateErrorContext(source, 3, 6)
	want := "  1 | line one\n" +
		"  2 | line two\n" +
		"> 3 | line three\n" +
		"           ^\n" +
		"  4 | line four\n" +
		"  5 | line five\n"
	if ctx != want {
		t.Errorf("context mismatch:\ngot:\n%s\nwant:\n%s", ctx, want)
	}

	if GenerateErrorContext("", 1, 1) != "" {
		t.Error("empty source should produce no context")
	}
	if GenerateErrorContext(source, 99, 1) != "" {
		t.Error("out-of-range line should produce no context")
	}
}

func TestCompileScripts(t *testing.T) {
	scripts := []script.Script{
		{FileName: "good.des", Content: "MAZE: \"mine-1\", random\n"},
		{FileName: "bad.des", Content: "MESSAGE: \"nope\"\n"},
	}

	programs, errs := CompileScripts(scripts, CompileOptions{})

	if len(programs["good.des"]) != 1 {
		t.Errorf("good.des: got %d programs, want 1", len(programs["good.des"]))
	}
	if _, ok := programs["bad.des"]; ok {
		t.Error("bad.des should not appear in the results")
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "bad.des") {
		t.Errorf("error should name the failing file: %v", errs[0])
	}
}

func TestCompileScriptsWithResults(t *testing.T) {
	scripts := []script.Script{
		{FileName: "good.des", Content: "MAZE: \"mine-1\", random\n"},
		{FileName: "bad.des", Content: "MESSAGE: \"nope\"\n"},
	}

	results := CompileScriptsWithResults(scripts, CompileOptions{})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		switch r.FileName {
		case "good.des":
			if len(r.Errors) != 0 || len(r.Programs) != 1 {
				t.Errorf("good.des: %d programs, %d errors", len(r.Programs), len(r.Errors))
			}
		case "bad.des":
			if len(r.Errors) == 0 {
				t.Error("bad.des: expected errors")
			}
		default:
			t.Errorf("unexpected result for %q", r.FileName)
		}
	}
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.des")
	if err := os.WriteFile(path, []byte("MAZE: \"mine-1\", random\n"), 0644); err != nil {
		t.Fatal(err)
	}

	programs, errs := CompileFile(path)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(programs) != 1 || programs[0].Name != "mine-1" {
		t.Fatalf("expected one program named mine-1, got %+v", programs)
	}
}

func TestCompileFileLatin1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cafe.des")
	// 0xE9 is e-acute in Latin-1.
	content := []byte("MAZE: \"mine-1\", random\nMESSAGE: \"caf\xe9\"\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	programs, errs := CompileFile(path)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(programs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(programs))
	}
}

func TestCompileDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.des": "MAZE: \"mine-1\", random\n",
		"b.des": "LEVEL: \"tower-1\"\nLEVEL: \"tower-2\"\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	programs, errs := CompileDirectory(dir, CompileOptions{})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(programs["a.des"]) != 1 {
		t.Errorf("a.des: got %d programs, want 1", len(programs["a.des"]))
	}
	if len(programs["b.des"]) != 2 {
		t.Errorf("b.des: got %d programs, want 2", len(programs["b.des"]))
	}
}
