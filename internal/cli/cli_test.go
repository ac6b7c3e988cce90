package cli_test

import (
	"errors"
	"testing"

	"github.com/raysh454/safelink/internal/cli"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want cli.CLIArgs
	}{
		{"check flag", []string{"check", "-url", "example.com"}, cli.CLIArgs{Command: "check", URL: "example.com"}},
		{"check positional json", []string{"check", "-json", "example.com"}, cli.CLIArgs{Command: "check", URL: "example.com", JSON: true}},
		{"history", []string{"history"}, cli.CLIArgs{Command: "history"}},
		{"clear-history", []string{"clear-history"}, cli.CLIArgs{Command: "clear-history"}},
		{"set-key", []string{"set-key", "-key", "abc"}, cli.CLIArgs{Command: "set-key", Key: "abc"}},
		{"clear-key", []string{"clear-key"}, cli.CLIArgs{Command: "clear-key"}},
		{"serve", []string{"serve", "-addr", ":9000"}, cli.CLIArgs{Command: "serve", Addr: ":9000"}},
		{"serve origin", []string{"serve", "-origin", "http://localhost:3000"}, cli.CLIArgs{Command: "serve", Origin: "http://localhost:3000"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := cli.ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			if got.Command != tt.want.Command || got.URL != tt.want.URL || got.Key != tt.want.Key ||
				got.Addr != tt.want.Addr || got.Origin != tt.want.Origin || got.JSON != tt.want.JSON {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
			if len(got.RawArgs) != len(tt.args) {
				t.Errorf("RawArgs = %v", got.RawArgs)
			}
		})
	}
}

func TestParseArgs_UsageErrors(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{
		nil,
		{"scan"},
		{"check"},
		{"check", "-url", "  "},
		{"check", "-url", "a.com", "b.com"},
		{"set-key"},
		{"history", "extra"},
		{"serve", "-port", "1"},
	} {
		if _, err := cli.ParseArgs(args); !errors.Is(err, cli.ErrUsage) {
			t.Errorf("ParseArgs(%q) err = %v, want ErrUsage", args, err)
		}
	}
}
