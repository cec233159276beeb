// Package compiler provides the compilation pipeline for .des level
// description files. It transforms source text into level programs in
// two phases:
//  1. Lexer: tokenization
//  2. Parser: single-pass bytecode generation
//
// The package offers a unified API:
//   - Compile: compiles source text to programs
//   - CompileFile: compiles a file (handles Latin-1 encoding)
//   - CompileWithOptions: compiles with a monster/object catalog
//   - CompileScripts: compiles scripts loaded by script.Loader
//   - CompileDirectory: loads and compiles all .des files in a directory
package compiler

import (
	"errors"
	"fmt"
	"os"

	"github.com/levforge/deslev/pkg/compiler/lexer"
	"github.com/levforge/deslev/pkg/compiler/parser"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/script"
)

// CompileOptions configures compilation.
type CompileOptions struct {
	// Catalog resolves monster and object names at compile time.
	// When nil, every name compiles to the random marker.
	Catalog parser.Catalog
}

// Compile compiles .des source text to level programs, one per LEVEL or
// MAZE definition in the source, in definition order.
func Compile(source string) ([]*opcode.Program, []error) {
	return CompileWithOptions(source, CompileOptions{})
}

// CompileWithOptions compiles source text with a caller-supplied catalog.
func CompileWithOptions(source string, opts CompileOptions) ([]*opcode.Program, []error) {
	l := lexer.New(source)
	p := parser.New(l, opts.Catalog)

	programs, err := p.Parse()
	if err != nil {
		return nil, []error{withContext(err, source)}
	}
	return programs, nil
}

// withContext converts pipeline errors into CompileError carrying a
// source snippet. Unknown error types pass through unchanged.
func withContext(err error, source string) error {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return NewLexerErrorWithContext(lexErr.Reason, lexErr.Line, lexErr.Column, source)
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return NewParserErrorWithContext(parseErr.Msg, parseErr.Line, parseErr.Column, source)
	}
	return err
}

// CompileFile compiles a single .des file. The file content is decoded
// from Latin-1 to UTF-8 before compilation.
func CompileFile(path string) ([]*opcode.Program, []error) {
	return CompileFileWithOptions(path, CompileOptions{})
}

// CompileFileWithOptions compiles a file with a caller-supplied catalog.
func CompileFileWithOptions(path string, opts CompileOptions) ([]*opcode.Program, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read file %s: %w", path, err)}
	}

	content, err := script.ConvertLatin1ToUTF8(data)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to convert encoding for %s: %w", path, err)}
	}

	return CompileWithOptions(content, opts)
}

// CompileResult holds the outcome of compiling one script file.
type CompileResult struct {
	// FileName is the name of the script file.
	FileName string
	// Programs are the compiled levels (nil if compilation failed).
	Programs []*opcode.Program
	// Errors contains any compilation errors (empty if successful).
	Errors []error
}

// CompileScripts compiles multiple scripts loaded by script.Loader.
// Each script is compiled independently; the function does not stop on
// the first error but collects every result.
func CompileScripts(scripts []script.Script, opts CompileOptions) (map[string][]*opcode.Program, []error) {
	results := make(map[string][]*opcode.Program)
	var allErrors []error

	for _, s := range scripts {
		programs, errs := CompileWithOptions(s.Content, opts)

		if len(errs) > 0 {
			for _, err := range errs {
				allErrors = append(allErrors, fmt.Errorf("%s: %w", s.FileName, err))
			}
		} else {
			results[s.FileName] = programs
		}
	}

	return results, allErrors
}

// CompileScriptsWithResults compiles multiple scripts and returns a
// CompileResult per script, so callers see successes and failures
// side by side.
func CompileScriptsWithResults(scripts []script.Script, opts CompileOptions) []CompileResult {
	results := make([]CompileResult, 0, len(scripts))

	for _, s := range scripts {
		programs, errs := CompileWithOptions(s.Content, opts)
		results = append(results, CompileResult{
			FileName: s.FileName,
			Programs: programs,
			Errors:   errs,
		})
	}

	return results
}

// CompileDirectory loads every .des file under dirPath and compiles
// them all.
func CompileDirectory(dirPath string, opts CompileOptions) (map[string][]*opcode.Program, []error) {
	loader := script.NewLoader(dirPath)
	scripts, err := loader.LoadAllScripts()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to load scripts from %s: %w", dirPath, err)}
	}

	return CompileScripts(scripts, opts)
}

// CompileDirectoryWithResults loads every .des file under dirPath and
// compiles them, returning a detailed result per file.
func CompileDirectoryWithResults(dirPath string, opts CompileOptions) ([]CompileResult, error) {
	loader := script.NewLoader(dirPath)
	scripts, err := loader.LoadAllScripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts from %s: %w", dirPath, err)
	}

	return CompileScriptsWithResults(scripts, opts), nil
}

// Re-export error types from sub-packages for convenience.

// LexError is re-exported from the lexer sub-package.
type LexError = lexer.LexError

// ParseError is re-exported from the parser sub-package.
type ParseError = parser.Error
