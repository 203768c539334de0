package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"rackcatalog/internal/store"
)

// openStore opens the environment-selected backend and hydrates a store on
// top of it. Callers must Close the returned store.
func openStore(ctx context.Context, opts *RootOptions) (*store.Store, error) {
	backend, err := store.OpenBackend()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage backend", err)
	}
	storeOpts := []store.Option{}
	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		storeOpts = append(storeOpts, store.WithLogger(store.SlogLogger{L: logger}))
	}
	st := store.New(backend, storeOpts...)

	hydrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := st.WaitForHydration(hydrateCtx); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "hydrate catalog state", err)
	}
	return st, nil
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}
}
