package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/schemagraph/pkg/config"
	"github.com/matzehuels/schemagraph/pkg/pipeline"
	"github.com/matzehuels/schemagraph/pkg/watch"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var watchFiles bool

	cmd := &cobra.Command{
		Use:   "render <schema> [schema...]",
		Short: "Render schema files to SVG (and optional HTML, JSON, DOT, PNG, PDF)",
		Long: `Render draws the component schemas of each input file.

Outputs are written to <output-dir>/<output>.<format>. With several inputs each
one is written to <output>_<file stem>.<format>. All inputs are rendered in
memory first; if any of them fails, nothing is written.`,
		Example: `  schemagraph render openapi.yaml
  schemagraph render openapi.yaml -o petstore --viewer
  schemagraph render specs/*.yaml --format json,dot --jobs 8
  schemagraph render openapi.yaml --viewer --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			refresh, _ := cmd.Flags().GetBool("refresh")
			ctx := cmd.Context()
			runner := c.newRunner(ctx, cfg)
			defer runner.Close()

			if err := c.renderAll(ctx, runner, cfg, args, refresh); err != nil {
				if !watchFiles {
					return err
				}
				printError(c.Out, "%s", err)
			}
			if !watchFiles {
				return nil
			}
			return c.watchAndRender(ctx, runner, cfg, args)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "output base name (default \""+config.DefaultOutput+"\")")
	f.String("output-dir", "", "directory for written files (default current directory)")
	f.Bool("viewer", false, "also write a self-contained HTML viewer")
	f.IntP("jobs", "j", 0, "number of schemas rendered in parallel")
	f.BoolVarP(&watchFiles, "watch", "w", false, "re-render when an input file changes")
	addOutputFlags(cmd)

	return cmd
}

// renderAll renders every input concurrently and writes the artifacts only
// when all inputs succeeded.
func (c *CLI) renderAll(ctx context.Context, runner *pipeline.Runner, cfg *config.Config, paths []string, refresh bool) error {
	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, c.spinnerWriter(), fmt.Sprintf("Rendering %d schema(s)", len(paths)))
	spin.Start()

	sources := make([]pipeline.Source, len(paths))
	results := make([]*pipeline.Result, len(paths))
	errs := make([]error, len(paths))
	var finished atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		g.Go(func() error {
			src, err := pipeline.LoadSource(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			sources[i] = src

			opts := pipeline.OptionsFromConfig(cfg)
			opts.Refresh = refresh
			opts.Title = src.Stem()
			res, err := runner.Execute(gctx, src, opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			results[i] = res
			spin.SetMessage(fmt.Sprintf("Rendering %d schema(s), %d done", len(paths), finished.Add(1)))
			return nil
		})
	}
	_ = g.Wait()
	spin.Stop()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	multiple := len(paths) > 1
	for i, res := range results {
		base := pipeline.OutputBase(cfg.Output, sources[i], multiple)
		written, err := pipeline.WriteArtifacts(cfg.OutputDir, base, res.Artifacts)
		if err != nil {
			return err
		}
		c.reportResult(sources[i], res, written)
	}
	prog.done(fmt.Sprintf("Rendered %d schema(s)", len(paths)))
	return nil
}

func (c *CLI) reportResult(src pipeline.Source, res *pipeline.Result, written []string) {
	printSuccess(c.Out, "Rendered %s", src.Name)
	for _, path := range written {
		printFile(c.Out, path)
	}
	printStats(c.Out, res.Stats, res.CacheInfo.AllHit())
	if n := len(res.Recursive); n > 0 {
		printDetail(c.Out, "%d recursive group(s)", n)
	}
}

// watchAndRender re-renders all inputs after each debounced change until ctx
// is cancelled. Render failures are reported and watching continues.
func (c *CLI) watchAndRender(ctx context.Context, runner *pipeline.Runner, cfg *config.Config, paths []string) error {
	w, err := watch.New(paths, watch.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	printInfo(c.Out, "Watching %d file(s), press Ctrl+C to stop", len(paths))

	err = w.Run(ctx, func(ch watch.Change) {
		c.Logger.Debug("change detected", "paths", ch.Paths)
		if err := c.renderAll(ctx, runner, cfg, paths, false); err != nil && ctx.Err() == nil {
			printError(c.Out, "%s", err)
		}
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

// spinnerWriter returns stderr, or nil when debug logging is on.
func (c *CLI) spinnerWriter() io.Writer {
	if c.Logger.GetLevel() <= log.DebugLevel {
		return nil
	}
	return os.Stderr
}
