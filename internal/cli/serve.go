package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/api"
	"github.com/matzehuels/flowlane/pkg/config"
	"github.com/matzehuels/flowlane/pkg/diagram"
	flerrors "github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/history"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 5 * time.Second

type serveOpts struct {
	addr   string
	noSave bool
	create bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve <doc>",
		Short: "Serve a diagram over the HTTP API",
		Long: `Serve a diagram over the HTTP API until interrupted. The document is
loaded into an in-memory store with undo history and written back on
shutdown unless --no-save is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), parseDocRef(args[0]), opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default: config server.addr, else "+config.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not write the document back on shutdown")
	cmd.Flags().BoolVar(&opts.create, "create", false, "start from an empty document if it does not exist")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, ref docRef, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	st, err := c.load(ctx, ref)
	if err != nil {
		if !opts.create || !(flerrors.Is(err, flerrors.ErrCodeNotFound) || flerrors.Is(err, flerrors.ErrCodeFileNotFound)) {
			return err
		}
		st = c.newStore()
		st.Hydrate(c.cfg.Apply(diagram.EmptyDocument(time.Now())))
		logger.Info("starting from an empty document", "doc", ref)
	}
	h := history.Attach(st)
	defer h.Detach()

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}
	rc := c.renderCache(ctx)
	defer rc.Close()

	srv := &http.Server{
		Handler:           api.New(st, api.WithHistory(h), api.WithLogger(logger), api.WithRenderCache(rc)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	printSuccess("Serving %s", StyleHighlight.Render(ref.String()))
	printDetail("http://%s/api/snapshot", ln.Addr())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}

	if opts.noSave {
		return nil
	}
	// The signal context is already cancelled; saving must not inherit it.
	if err := c.writeDoc(context.WithoutCancel(ctx), ref, st.ExportSnapshot()); err != nil {
		return fmt.Errorf("save %s: %w", ref, err)
	}
	printSuccess("Saved %s", ref)
	return nil
}
