package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/nknight/playclient/internal/api"
	"github.com/nknight/playclient/internal/session"
	"github.com/nknight/playclient/internal/shell"
	"github.com/nknight/playclient/internal/storage"
)

var opts struct {
	Server  string        `short:"s" long:"server" env:"NKNIGHT_SERVER" default:"http://localhost:8080" description:"game server base URL"`
	DataDir string        `long:"data-dir" env:"NKNIGHT_DATA_DIR" description:"directory for the agent database (default: platform data dir)"`
	Timeout time.Duration `short:"t" long:"timeout" env:"NKNIGHT_TIMEOUT" default:"5s" description:"HTTP request timeout"`
	Debug   bool          `short:"d" long:"debug" description:"echo JSON responses and log at debug level"`
	Quiet   bool          `short:"q" long:"quiet" description:"do not print the prompt (for piped input)"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger, err := newLogger(opts.Debug)
	if err != nil {
		log.Fatalf("could not create logger: %v", err)
	}
	if code := exitCode(logger, run(logger)); code != 0 {
		os.Exit(code)
	}
}

// exitCode logs err and flushes the logger, which os.Exit would skip.
func exitCode(logger *zap.Logger, err error) int {
	defer logger.Sync()
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.Encoding = "console"
	return cfg.Build()
}

func run(logger *zap.Logger) error {
	store, err := openStorage(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	hrefs, err := store.LoadAgents()
	if err != nil {
		logger.Warn("could not load agents, starting empty", zap.Error(err))
		hrefs = nil
	}
	if saved, err := store.LastSaved(); err == nil && !saved.IsZero() {
		logger.Debug("agents loaded", zap.Int("count", len(hrefs)), zap.Time("saved", saved))
	}

	sess, skipped := session.New(hrefs)
	for _, h := range skipped {
		logger.Warn("dropping unreadable agent handle", zap.String("href", h))
	}

	client, err := api.New(opts.Server,
		api.WithTimeout(opts.Timeout),
		api.WithLogger(logger.Named("api")),
	)
	if err != nil {
		return err
	}

	sh := shell.New(sess, client,
		shell.WithOutput(os.Stdout),
		shell.WithLogger(logger.Named("shell")),
		shell.WithDebug(opts.Debug),
		shell.WithPrompt(!opts.Quiet),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The read loop blocks on stdin, so an interrupt is handled by saving
	// and returning from here rather than waiting for the loop.
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx, os.Stdin) }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		os.Stdout.WriteString("\n")
	}

	if err := store.SaveAgents(sess.Hrefs()); err != nil {
		return err
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func openStorage(logger *zap.Logger) (*storage.Storage, error) {
	if opts.DataDir != "" {
		if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
			return nil, err
		}
		return storage.OpenOrRecover(opts.DataDir, logger.Named("storage")), nil
	}
	return storage.NewStorage(logger.Named("storage"))
}
