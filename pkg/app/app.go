// Package app wires the deslev command line tool together: argument
// parsing, logging, script loading, compilation, and interpretation.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/levforge/deslev/pkg/cli"
	"github.com/levforge/deslev/pkg/compiler"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/logger"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/rng"
	"github.com/levforge/deslev/pkg/script"
	"github.com/levforge/deslev/pkg/vm"
)

// Application holds state for one tool invocation.
type Application struct {
	config *cli.Config
	log    *slog.Logger
	opts   compiler.CompileOptions
}

// New creates an Application.
func New() *Application {
	return &Application{}
}

// Run executes the tool.
func (app *Application) Run(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()

	if app.config.Path == "" {
		cli.PrintHelp()
		return fmt.Errorf("no input path given")
	}

	scripts, err := app.loadScripts(app.config.Path)
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}
	app.log.Info("scripts loaded", "count", len(scripts))

	for _, s := range scripts {
		app.log.Debug("script file", "name", s.FileName, "size", s.Size)
		if err := app.processScript(s); err != nil {
			return err
		}
	}

	return nil
}

// loadScripts loads one .des file or every .des file under a directory.
// File names resolve case-insensitively so DOS-era names still work.
func (app *Application) loadScripts(path string) ([]script.Script, error) {
	path, err := script.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return script.NewLoader(path).LoadAllScripts()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content, err := script.ConvertLatin1ToUTF8(data)
	if err != nil {
		return nil, err
	}
	return []script.Script{{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}}, nil
}

// processScript compiles one script and, depending on flags, dumps the
// bytecode or interprets each level.
func (app *Application) processScript(s script.Script) error {
	programs, errs := compiler.CompileWithOptions(s.Content, app.opts)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %v\n", s.FileName, e)
		}
		return fmt.Errorf("compilation of %s failed", s.FileName)
	}

	app.log.Info("script compiled", "name", s.FileName, "levels", len(programs))

	for _, prog := range programs {
		if app.config.Dump {
			fmt.Print(prog.Disassemble())
		}

		if app.config.Run {
			if err := app.runLevel(s.FileName, prog); err != nil {
				return err
			}
		}

		if !app.config.Dump && !app.config.Run {
			fmt.Printf("%s: level %q (%d instructions)\n",
				s.FileName, prog.Name, len(prog.Code))
		}
	}

	return nil
}

// runLevel interprets one compiled level against a fresh recorder and
// prints the resulting build transcript.
func (app *Application) runLevel(fileName string, prog *opcode.Program) error {
	rec := level.NewRecorder()
	in := vm.New(prog, rec, rng.New(app.config.Seed))

	if err := in.Run(); err != nil {
		return fmt.Errorf("%s: level %q: %w", fileName, prog.Name, err)
	}

	fmt.Printf("=== %s: %s ===\n", fileName, prog.Name)
	transcript := rec.Transcript()
	fmt.Print(transcript)
	if transcript != "" && !strings.HasSuffix(transcript, "\n") {
		fmt.Println()
	}
	return nil
}
