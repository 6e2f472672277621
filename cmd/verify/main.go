// Command verify checks every therapy against its sessions and exits with
// status 1 when any consistency rule is broken.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/ariebrainware/clinic-therapy/tracker"
	"go.uber.org/zap"
)

func main() {
	therapyID := flag.Uint("therapy", 0, "check a single therapy instead of all of them")
	flag.Parse()

	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	config.SetLogger(logger)

	db, err := config.ConnectMySQL()
	if err != nil {
		logger.Fatal("error connecting to database", zap.Error(err))
	}

	tr := tracker.New(db, tracker.WithLogger(logger))
	violations, err := collect(context.Background(), tr, *therapyID)
	if err != nil {
		logger.Fatal("verification failed", zap.Error(err))
	}
	os.Exit(report(os.Stdout, violations))
}

func collect(ctx context.Context, tr *tracker.Tracker, therapyID uint) ([]tracker.Violation, error) {
	if therapyID != 0 {
		return tr.Verify(ctx, therapyID)
	}
	return tr.VerifyAll(ctx)
}

// report prints one line per violation and returns the process exit code.
func report(w io.Writer, violations []tracker.Violation) int {
	if len(violations) == 0 {
		fmt.Fprintln(w, "ok: no violations")
		return 0
	}
	for _, v := range violations {
		fmt.Fprintln(w, v.String())
	}
	fmt.Fprintf(w, "%d violation(s)\n", len(violations))
	return 1
}
