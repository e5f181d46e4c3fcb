package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/traceband/traceband/pkg/trace"
)

// trackSummary aggregates per-track statistics for the tracks command.
type trackSummary struct {
	id       trace.TrackID
	slices   int
	roots    int
	maxDepth uint32
	start    int64
	end      int64
}

// tracksCommand creates the tracks command for summarizing a trace file.
func (c *CLI) tracksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks [trace.json]",
		Short: "Summarize the tracks of a trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracks(args[0])
		},
	}
}

func runTracks(input string) error {
	tbl, err := trace.ReadTraceFile(input)
	if err != nil {
		return err
	}
	if tbl.Len() == 0 {
		printInfo("Trace is empty")
		return nil
	}

	summaries := summarizeTracks(tbl)

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			fmt.Sprintf("%d", s.id),
			fmt.Sprintf("%d", s.slices),
			fmt.Sprintf("%d", s.roots),
			fmt.Sprintf("%d", s.maxDepth+1),
			fmt.Sprintf("[%d, %d)", s.start, s.end),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Track", "Slices", "Roots", "Height", "Span").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleValue
		})

	fmt.Println(t.Render())
	printDetail("%d slices across %d tracks", tbl.Len(), len(summaries))
	return nil
}

func summarizeTracks(tbl *trace.SliceTable) []trackSummary {
	byTrack := make(map[trace.TrackID]*trackSummary)
	for i := 0; i < tbl.Len(); i++ {
		s := tbl.Row(i)
		sum, ok := byTrack[s.TrackID]
		if !ok {
			sum = &trackSummary{id: s.TrackID, start: s.TS, end: s.End()}
			byTrack[s.TrackID] = sum
		}
		sum.slices++
		if s.IsRoot() {
			sum.roots++
		}
		if s.Depth > sum.maxDepth {
			sum.maxDepth = s.Depth
		}
		if s.TS < sum.start {
			sum.start = s.TS
		}
		if s.End() > sum.end {
			sum.end = s.End()
		}
	}

	out := make([]trackSummary, 0, len(byTrack))
	for _, s := range byTrack {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
