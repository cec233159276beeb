package script

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAllScripts(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "b.des"):    "LEVEL: \"tower-1\"\n",
		filepath.Join(dir, "a.DES"):    "LEVEL: \"tower-2\"\n",
		filepath.Join(sub, "c.des"):    "LEVEL: \"tower-3\"\n",
		filepath.Join(dir, "note.txt"): "not a level file\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	scripts, err := NewLoader(dir).LoadAllScripts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(scripts) != 3 {
		t.Fatalf("expected 3 scripts, got %d", len(scripts))
	}
	// Lexical path order: a.DES, b.des, then sub/c.des.
	wantNames := []string{"a.DES", "b.des", "c.des"}
	for i, want := range wantNames {
		if scripts[i].FileName != want {
			t.Errorf("scripts[%d].FileName = %q, want %q", i, scripts[i].FileName, want)
		}
	}
	if scripts[0].Size != int64(len("LEVEL: \"tower-2\"\n")) {
		t.Errorf("scripts[0].Size = %d", scripts[0].Size)
	}
}

func TestLoadAllScriptsEmptyDir(t *testing.T) {
	if _, err := NewLoader(t.TempDir()).LoadAllScripts(); err == nil {
		t.Error("expected an error for a directory without .des files")
	}
}

func TestLoadAllScriptsMissingDir(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path").LoadAllScripts(); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CASTLE.DES")
	if err := os.WriteFile(path, []byte("LEVEL: \"castle\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePath(filepath.Join(dir, "castle.des"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}

	// Exact match passes through.
	got, err = ResolvePath(path)
	if err != nil || got != path {
		t.Errorf("exact path: got %q, %v", got, err)
	}

	if _, err := ResolvePath(filepath.Join(dir, "missing.des")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestConvertLatin1ToUTF8(t *testing.T) {
	got, err := ConvertLatin1ToUTF8([]byte("caf\xe9"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}

	ascii := "MAZE: \"mine-1\", random\n"
	got, err = ConvertLatin1ToUTF8([]byte(ascii))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ascii {
		t.Errorf("ASCII should pass through unchanged, got %q", got)
	}
}
