package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/render/dot"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command. Flags
// that were not given fall back to the export preferences stored in the
// document.
type renderOpts struct {
	output     string // output file path (stdout if empty)
	format     string // "dot" or "svg"
	lanes      bool   // draw lanes as clusters
	guardrails bool   // colour edges by guardrail severity
	dark       bool   // dark palette
	noCache    bool   // bypass the SVG render cache
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <doc>",
		Short: "Render a diagram to Graphviz DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromPath(opts.output)
			}
			if opts.format != formatDOT && opts.format != formatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use dot or svg)", opts.format)
			}

			st, err := c.load(cmd.Context(), parseDocRef(args[0]))
			if err != nil {
				return err
			}
			doc := st.ExportSnapshot()

			ro := dot.OptionsFromUI(doc.UI)
			flags := cmd.Flags()
			if flags.Changed("lanes") {
				ro.Lanes = opts.lanes
			}
			if flags.Changed("guardrails") {
				ro.Guardrails = opts.guardrails
			}
			if flags.Changed("dark") {
				ro.Dark = opts.dark
			}
			rc := cache.NewNullCache()
			if !opts.noCache {
				rc = c.renderCache(cmd.Context())
			}
			defer rc.Close()
			return runRender(cmd.Context(), doc, ro, rc, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, dot (default from -o extension, else svg)")
	cmd.Flags().BoolVar(&opts.lanes, "lanes", true, "draw swimlanes")
	cmd.Flags().BoolVar(&opts.guardrails, "guardrails", false, "colour edges by guardrail severity")
	cmd.Flags().BoolVar(&opts.dark, "dark", false, "use the dark palette")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render SVG even if a cached copy exists")

	return cmd
}

// formatFromPath infers the format from an output path's extension.
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".dot") || strings.EqualFold(filepath.Ext(path), ".gv") {
		return formatDOT
	}
	return formatSVG
}

// renderCache opens the configured SVG cache. A cache that cannot be opened
// is logged and replaced by a NullCache.
func (c *CLI) renderCache(ctx context.Context) cache.Cache {
	if !c.cfg.Cache.Enabled {
		return cache.NewNullCache()
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			loggerFromContext(ctx).Warn("render cache disabled", "err", err)
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		loggerFromContext(ctx).Warn("render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

func runRender(ctx context.Context, doc diagram.Document, ro dot.Options, rc cache.Cache, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	src := dot.ToDOT(doc, ro)
	data := []byte(src)
	if opts.format == formatSVG {
		logger.Debug("rendering svg", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
		svg, hit, err := dot.CachedSVG(ctx, rc, src)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		logger.Debug("render cache", "hit", hit)
		data = svg
	}

	if opts.output == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.ToUpper(opts.format)))
	printFile(opts.output)
	return nil
}
