// Package cli parses command line arguments for the deslev tool.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds settings parsed from command line arguments.
type Config struct {
	Path     string // .des file or directory of .des files
	Seed     uint64 // random seed for -run
	LogLevel string // log level (debug, info, warn, error)
	Run      bool   // interpret compiled programs and print the build transcript
	Dump     bool   // print disassembled bytecode
	ShowHelp bool   // help flag
}

// ParseArgs parses command line arguments into a Config.
// Environment variables LOG_LEVEL and SEED act as fallbacks when the
// corresponding flag is not given.
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("deslev", flag.ContinueOnError)

	config := &Config{}

	var seed int64
	fs.Int64Var(&seed, "seed", 0, "random seed for -run")
	fs.Int64Var(&seed, "s", 0, "random seed (short form)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (short form)")
	fs.BoolVar(&config.Run, "run", false, "interpret compiled levels and print the build transcript")
	fs.BoolVar(&config.Dump, "dump", false, "print disassembled bytecode")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (short form)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// Environment variable fallbacks; flags take precedence.
	if seed == 0 {
		if seedEnv := os.Getenv("SEED"); seedEnv != "" {
			if s, err := strconv.ParseInt(seedEnv, 10, 64); err == nil {
				seed = s
			}
		}
	}
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if seed < 0 {
		return nil, fmt.Errorf("seed must be non-negative, got %d", seed)
	}
	config.Seed = uint64(seed)

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if fs.NArg() > 0 {
		config.Path = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs moves flags before positional arguments so that
// "deslev file.des -run" works the same as "deslev -run file.des".
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	boolFlags := map[string]bool{
		"-h": true, "--h": true, "-help": true, "--help": true,
		"-run": true, "--run": true, "-dump": true, "--dump": true,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// Value flags consume the next argument ("-s 42").
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if !boolFlags[arg] && !strings.Contains(arg, "=") {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp writes the usage message to stdout.
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `deslev - special level compiler and interpreter

Usage:
  deslev [options] <path>

Arguments:
  path          a .des file, or a directory searched for .des files

Options:
  -dump                       print disassembled bytecode for each level
  -run                        interpret each level and print the build transcript
  -s, --seed <n>              random seed for -run (default: 0)
  -l, --log-level <level>     log level: debug, info, warn, error (default: info)
  -h, --help                  show this help

Environment Variables:
  SEED=<n>                    random seed
  LOG_LEVEL=<level>           log level

Examples:
  deslev castle.des                 compile and report level names
  deslev -dump castle.des           show the compiled bytecode
  deslev -run -seed 7 castle.des    build levels with a fixed seed
  deslev -run /path/to/dat          compile and build every .des in a directory
`)
}
