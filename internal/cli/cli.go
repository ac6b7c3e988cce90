package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Commands accepted as the first argument.
const (
	CmdCheck        = "check"
	CmdHistory      = "history"
	CmdClearHistory = "clear-history"
	CmdSetKey       = "set-key"
	CmdClearKey     = "clear-key"
	CmdServe        = "serve"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// CLIArgs are the parsed arguments of a single invocation.
type CLIArgs struct {
	Command string

	// URL is the input for check.
	URL string

	// Key is the API key for set-key.
	Key string

	// Addr overrides the listen address for serve; empty means config.
	Addr string

	// Origin overrides the allowed browser origin for serve.
	Origin string

	// JSON selects machine-readable output.
	JSON bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// Usage is printed for usage errors.
const Usage = `usage: safelink <command> [flags]

commands:
  check -url URL [-json]   score a URL
  history [-json]          list recent checks
  clear-history            remove all history
  set-key -key KEY         store the AI API key
  clear-key                remove the AI API key
  serve [-addr ADDR] [-origin ORIGIN]
                           run the HTTP API`

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing command", ErrUsage)
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet("safelink "+cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := &CLIArgs{Command: cmd, RawArgs: args}

	switch cmd {
	case CmdCheck:
		fs.StringVar(&out.URL, "url", "", "URL to check (required)")
		fs.BoolVar(&out.JSON, "json", false, "print JSON")
	case CmdHistory:
		fs.BoolVar(&out.JSON, "json", false, "print JSON")
	case CmdSetKey:
		fs.StringVar(&out.Key, "key", "", "AI API key (required)")
	case CmdServe:
		fs.StringVar(&out.Addr, "addr", "", "listen address")
		fs.StringVar(&out.Origin, "origin", "", "allowed browser origin")
	case CmdClearHistory, CmdClearKey:
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	if err := fs.Parse(rest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	// check also accepts the URL as a positional argument.
	if cmd == CmdCheck && out.URL == "" && fs.NArg() == 1 {
		out.URL = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	switch {
	case cmd == CmdCheck && strings.TrimSpace(out.URL) == "":
		return nil, fmt.Errorf("%w: missing required -url argument", ErrUsage)
	case cmd == CmdSetKey && strings.TrimSpace(out.Key) == "":
		return nil, fmt.Errorf("%w: missing required -key argument", ErrUsage)
	}
	return out, nil
}
