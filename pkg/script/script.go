// Package script loads .des level description files from disk.
// Files are decoded from Latin-1 to UTF-8 before compilation.
package script

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Script represents a loaded level description file.
type Script struct {
	FileName string // base name of the file
	Content  string // UTF-8 converted content
	Size     int64  // file size in bytes
}

// Loader finds and loads .des files under a directory.
type Loader struct {
	dirPath string
}

// NewLoader creates a Loader rooted at dirPath.
func NewLoader(dirPath string) *Loader {
	return &Loader{
		dirPath: dirPath,
	}
}

// LoadAllScripts loads every .des file under the loader's directory.
// Files are returned in lexical path order so compilation is deterministic.
func (l *Loader) LoadAllScripts() ([]Script, error) {
	scriptFiles, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}

	if len(scriptFiles) == 0 {
		return nil, fmt.Errorf("no .des files found in %s", l.dirPath)
	}

	var scripts []Script
	for _, filePath := range scriptFiles {
		script, err := l.loadScript(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load script %s: %w", filePath, err)
		}
		scripts = append(scripts, *script)
	}

	return scripts, nil
}

// findScriptFiles walks the directory collecting .des files.
// The extension comparison is case-insensitive.
func (l *Loader) findScriptFiles() ([]string, error) {
	var scriptFiles []string

	err := filepath.Walk(l.dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if strings.EqualFold(ext, ".des") {
			scriptFiles = append(scriptFiles, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(scriptFiles)
	return scriptFiles, nil
}

// loadScript reads a single .des file and converts it to UTF-8.
func (l *Loader) loadScript(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := ConvertLatin1ToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert encoding: %w", err)
	}

	return &Script{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// ResolvePath returns path if it exists, otherwise searches the parent
// directory for an entry whose name matches ignoring case. Historical
// .des files often arrive with DOS-era uppercase names, so "castle.des"
// should find "CASTLE.DES".
func ResolvePath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	dir := filepath.Dir(path)
	want := strings.ToLower(filepath.Base(path))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.ToLower(entry.Name()) == want {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("file not found: %s", path)
}

// ConvertLatin1ToUTF8 converts ISO 8859-1 encoded data to UTF-8.
// Historical .des files carry accented characters in Latin-1, and plain
// ASCII passes through unchanged.
func ConvertLatin1ToUTF8(data []byte) (string, error) {
	decoder := charmap.ISO8859_1.NewDecoder()
	reader := transform.NewReader(strings.NewReader(string(data)), decoder)

	utf8Data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode Latin-1: %w", err)
	}

	return string(utf8Data), nil
}
