package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/pipeline"
	"github.com/traceband/traceband/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	tracks    string   // comma-separated track id filter
	order     string   // output order hints
	output    string   // output file (single format) or base path (multiple)
	formats   []string // output formats: ascii, svg, dot, json
	rasterize bool     // also rasterize dot output to svg via graphviz
	noCache   bool     // disable caching
}

// formatExtensions maps formats to output file extensions.
var formatExtensions = map[string]string{
	render.FormatASCII: ".txt",
	render.FormatSVG:   ".svg",
	render.FormatDOT:   ".dot",
	render.FormatJSON:  ".json",
}

// renderCommand creates the render command for generating layout artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [trace.json]",
		Short: "Render the merged slice layout of a trace",
		Long: `Render the merged slice layout of a trace.

Computes the layout for the selected tracks and renders it in one or more
formats. With a single format and no --output, the artifact is written to
stdout; otherwise files are written next to the input (or under the
--output base path).

Formats:
  ascii  waterfall with one '#' per time unit (stdout friendly)
  svg    scalable waterfall with slice names
  dot    stack-group call trees in graphviz DOT
  json   full layout rows for downstream tooling`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tracks, "tracks", "t", "", "comma-separated track ids to select (default: none)")
	cmd.Flags().StringVar(&opts.order, "order", "", "output order hints, e.g. ts,-dur")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): ascii (default), svg, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.rasterize, "rasterize", false, "also render dot output to svg via graphviz")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		TracePath: input,
		Filter:    opts.tracks,
		Hints:     layout.ParseHints(opts.order),
		Formats:   opts.formats,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Single format without --output goes to stdout.
	if len(opts.formats) == 1 && opts.output == "" && !opts.rasterize {
		_, err := os.Stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout"
	} else if len(opts.formats) == 1 && !opts.rasterize {
		// Explicit single output path is used as-is.
		return writeArtifact(base, result.Artifacts[opts.formats[0]])
	}

	printSuccess("Render complete")
	for _, format := range opts.formats {
		path := base + formatExtensions[format]
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)

		if format == render.FormatDOT && opts.rasterize {
			svg, err := render.RenderDOTSVG(string(result.Artifacts[format]))
			if err != nil {
				return fmt.Errorf("rasterize dot: %w", err)
			}
			rasterPath := base + ".groups.svg"
			if err := writeArtifact(rasterPath, svg); err != nil {
				return err
			}
			printFile(rasterPath)
		}
	}
	printStats(result.Stats.SliceCount, result.Stats.GroupCount, result.Stats.BandCount, result.CacheInfo.LayoutHit)

	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
