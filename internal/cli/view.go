package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/traceband/traceband/pkg/layout"
	"github.com/traceband/traceband/pkg/pipeline"
	"github.com/traceband/traceband/pkg/render"
)

// viewCommand creates the view command for browsing layouts interactively.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		tracks  string
		order   string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "view [trace.json]",
		Short: "Browse the ascii waterfall interactively",
		Long: `Browse the ascii waterfall interactively.

Computes the merged layout for the selected tracks and opens a scrollable
viewer. Wide or deep layouts can be panned with the arrow keys.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], tracks, order, noCache)
		},
	}

	cmd.Flags().StringVarP(&tracks, "tracks", "t", "", "comma-separated track ids to select (default: none)")
	cmd.Flags().StringVar(&order, "order", "", "output order hints, e.g. ts,-dur")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input, tracks, order string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, pipeline.Options{
		TracePath: input,
		Filter:    tracks,
		Hints:     layout.ParseHints(order),
		Formats:   []string{render.FormatASCII},
	})
	if err != nil {
		return err
	}

	model := newWaterfallModel(input, tracks, result)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// waterfallModel is the bubbletea model for the scrollable waterfall viewer.
type waterfallModel struct {
	title  string
	filter string
	stats  pipeline.Stats
	lines  []string

	width   int
	height  int
	offsetX int
	offsetY int
}

func newWaterfallModel(input, filter string, result *pipeline.Result) waterfallModel {
	ascii := string(result.Artifacts[render.FormatASCII])
	lines := strings.Split(strings.TrimRight(ascii, "\n"), "\n")
	if ascii == "" {
		lines = []string{StyleDim.Render("(no slices match the filter)")}
	}
	return waterfallModel{
		title:  input,
		filter: filter,
		stats:  result.Stats,
		lines:  lines,
		width:  80,
		height: 24,
	}
}

func (m waterfallModel) Init() tea.Cmd {
	return nil
}

// viewportHeight is the number of waterfall lines visible below the header
// and above the footer.
func (m waterfallModel) viewportHeight() int {
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m waterfallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		page := m.viewportHeight()
		maxY := len(m.lines) - page
		if maxY < 0 {
			maxY = 0
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.offsetY > 0 {
				m.offsetY--
			}
		case "down", "j":
			if m.offsetY < maxY {
				m.offsetY++
			}
		case "pgup", "b":
			m.offsetY -= page
			if m.offsetY < 0 {
				m.offsetY = 0
			}
		case "pgdown", "f", " ":
			m.offsetY += page
			if m.offsetY > maxY {
				m.offsetY = maxY
			}
		case "left", "h":
			m.offsetX -= 10
			if m.offsetX < 0 {
				m.offsetX = 0
			}
		case "right", "l":
			m.offsetX += 10
		case "home", "g":
			m.offsetY = 0
			m.offsetX = 0
		case "end", "G":
			m.offsetY = maxY
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m waterfallModel) View() string {
	var b strings.Builder

	filter := m.filter
	if filter == "" {
		filter = "(none)"
	}
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  tracks %s · %d slices · %d bands",
		filter, m.stats.SliceCount, m.stats.BandCount)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ scroll  ←/→ pan  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.offsetY + m.viewportHeight()
	if end > len(m.lines) {
		end = len(m.lines)
	}
	for i := m.offsetY; i < end; i++ {
		b.WriteString(clipLine(m.lines[i], m.offsetX, m.width))
		b.WriteString("\n")
	}

	b.WriteString(StyleDim.Render(fmt.Sprintf("[%d-%d/%d]", m.offsetY+1, end, len(m.lines))))
	return b.String()
}

// clipLine returns the visible window of a line after horizontal panning.
func clipLine(line string, offset, width int) string {
	runes := []rune(line)
	if offset >= len(runes) {
		return ""
	}
	runes = runes[offset:]
	if width > 0 && len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}
