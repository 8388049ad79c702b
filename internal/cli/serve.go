package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schemagraph/internal/server"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
	"github.com/matzehuels/schemagraph/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "serve <schema> [schema...]",
		Short: "Serve rendered schemas over HTTP",
		Long: `Serve renders schemas on request and serves the HTML viewer, SVG, graph
JSON and DOT for each of them. Schemas are addressed by file stem.

With --watch, open viewer pages reload when an input file changes.`,
		Example: `  schemagraph serve openapi.yaml
  schemagraph serve specs/*.yaml --addr :9000 --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			runner := c.newRunner(ctx, cfg)
			defer runner.Close()

			srv := server.New(runner, args, server.Options{
				Pipeline:     pipeline.OptionsFromConfig(cfg),
				LiveReload:   watchFiles,
				PollInterval: cfg.Serve.PollInterval,
				Logger:       c.Logger,
			})

			var w *watch.Watcher
			if watchFiles {
				if w, err = watch.New(args, watch.Options{Logger: c.Logger}); err != nil {
					return err
				}
				defer w.Close()
			}

			ln, err := net.Listen("tcp", cfg.Serve.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Serve.Addr, err)
			}
			httpSrv := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			printSuccess(c.Out, "Serving %d schema(s)", len(args))
			for _, name := range srv.Names() {
				printDetail(c.Out, "%s", StyleLink.Render("http://"+ln.Addr().String()+"/view/"+name))
			}
			printInfo(c.Out, "Press Ctrl+C to stop")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := httpSrv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})
			if w != nil {
				g.Go(func() error {
					return w.Run(gctx, func(ch watch.Change) {
						c.Logger.Info("schema changed", "paths", ch.Paths)
						srv.Invalidate()
					})
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	f := cmd.Flags()
	f.String("addr", "", "listen address (default \"127.0.0.1:8080\")")
	f.BoolVarP(&watchFiles, "watch", "w", false, "reload open viewers when an input file changes")
	addOutputFlags(cmd)

	return cmd
}
