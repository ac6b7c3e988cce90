package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/safelink/internal/app"
	"github.com/raysh454/safelink/internal/history"
	"github.com/raysh454/safelink/internal/logging"
	"github.com/raysh454/safelink/internal/model"
	"github.com/raysh454/safelink/internal/server"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Run executes a parsed command against a wired application. serve blocks
// until ctx is canceled.
func Run(ctx context.Context, a *app.Application, args *CLIArgs, stdout, stderr io.Writer) int {
	var err error
	switch args.Command {
	case CmdCheck:
		return runCheck(ctx, a, args, stdout, stderr)
	case CmdHistory:
		err = runHistory(ctx, a, args.JSON, stdout)
	case CmdClearHistory:
		if err = a.History.Clear(ctx); err == nil {
			fmt.Fprintln(stdout, "history cleared")
		}
	case CmdSetKey:
		if err = a.Credentials.Set(ctx, args.Key); err == nil {
			fmt.Fprintln(stdout, "api key saved")
		}
	case CmdClearKey:
		if err = a.Credentials.Clear(ctx); err == nil {
			fmt.Fprintln(stdout, "api key removed")
		}
	case CmdServe:
		err = runServe(ctx, a, args.Addr, args.Origin)
	default:
		fmt.Fprintln(stderr, Usage)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func runCheck(ctx context.Context, a *app.Application, args *CLIArgs, stdout, stderr io.Writer) int {
	res, err := a.Checker.Check(ctx, args.URL)
	switch {
	case err == nil:
	case app.ValidationKind(err) != "":
		fmt.Fprintf(stderr, "invalid input: %v\n", err)
		return ExitUsage
	case errors.Is(err, history.ErrPersistence) && res != nil:
		fmt.Fprintf(stderr, "warning: result not saved to history: %v\n", err)
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitFailure
	}

	if args.JSON {
		if err := writeJSON(stdout, res); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return ExitFailure
		}
		return ExitOK
	}
	RenderResult(stdout, res)
	return ExitOK
}

func runHistory(ctx context.Context, a *app.Application, asJSON bool, stdout io.Writer) error {
	records, err := a.History.List(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(stdout, records)
	}
	RenderHistory(stdout, records)
	return nil
}

func runServe(ctx context.Context, a *app.Application, addr, origin string) error {
	if addr == "" {
		addr = a.Config.ListenAddr
	}
	if origin == "" {
		origin = a.Config.AllowedOrigin
	}
	s, err := server.NewServer(server.Config{ListenAddr: addr, App: a, AllowedOrigin: origin})
	if err != nil {
		return err
	}
	httpSrv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", logging.Field{Key: "addr", Value: addr})
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderResult prints a human-readable check report.
func RenderResult(w io.Writer, res *model.FinalResult) {
	fmt.Fprintf(w, "URL:        %s\n", res.URL)
	fmt.Fprintf(w, "Score:      %d/100 (%s)\n", res.FinalScore, res.Label)
	fmt.Fprintf(w, "Heuristic:  %d\n", res.Score)

	if ai := res.AI; ai != nil {
		if ai.Degraded {
			fmt.Fprintf(w, "AI:         unavailable\n")
		} else {
			note := ""
			if ai.Inferred {
				note = ", inferred"
			}
			fmt.Fprintf(w, "AI:         %d (%s%s)\n", ai.Score, ai.Model, note)
		}
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
	for _, positive := range res.Positives {
		fmt.Fprintf(w, "  + %s\n", positive)
	}

	if res.AI != nil && strings.TrimSpace(res.AI.Explanation) != "" {
		fmt.Fprintf(w, "\n%s\n", res.AI.Explanation)
	}
}

// RenderHistory prints one line per record, most recent first.
func RenderHistory(w io.Writer, records []model.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no history")
		return
	}
	for _, r := range records {
		ts := time.UnixMilli(r.Timestamp).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "%3d  %-18s  %s  %s\n", r.Score, model.SafetyLabel(r.Score), ts, r.URL)
	}
}
