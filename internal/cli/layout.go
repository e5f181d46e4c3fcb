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

// layoutCommand creates the layout command for computing merged slice layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		tracks  string
		order   string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [trace.json]",
		Short: "Compute the merged slice layout for selected tracks",
		Long: `Compute the merged slice layout for selected tracks.

The layout command takes a trace file, extracts the stack groups of the
selected tracks, and packs them into merged bands so overlapping groups
never collide. The output is a layout.json file carrying every slice with
its merged layout depth.

Results are cached locally; editing the trace file invalidates its entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], tracks, order, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&tracks, "tracks", "t", "", "comma-separated track ids to select (default: none)")
	cmd.Flags().StringVar(&order, "order", "", "output order hints, e.g. ts,-dur")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, tracks, order, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		TracePath: input,
		Filter:    tracks,
		Hints:     layout.ParseHints(order),
		Formats:   []string{render.FormatJSON},
	})
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data := result.Artifacts[render.FormatJSON]
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.SliceCount, result.Stats.GroupCount, result.Stats.BandCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("traceband render %s -t %s -f ascii", input, tracks))

	return nil
}
