package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/narayan-iyengar/scope/pkg/engine"
	"github.com/narayan-iyengar/scope/pkg/layout/force"
	"github.com/narayan-iyengar/scope/pkg/topology"
	"github.com/narayan-iyengar/scope/pkg/viewport"
)

// Pan step in graph-space pixels per key press, and zoom step per press.
const (
	panStep  = 40.0
	zoomStep = 1.2
)

// viewCommand creates the interactive terminal viewer. It doubles as the
// gesture source from the engine's point of view: key presses become raw
// pan/zoom gestures, enter/tab drive selection, esc is the background click.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <topology.json>",
		Short: "View a topology interactively in the terminal",
		Long:  `View renders a positioned topology on a character grid. Arrow keys pan, +/- zoom, tab cycles the highlighted node, enter focuses it with its neighbors on a ring, esc deselects.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			eng := engine.New(force.Layout,
				engine.WithLogger(loggerFromContext(cmd.Context())),
				engine.WithSizeLimits(cfg.Engine.NodeSize),
				engine.WithDensity(cfg.Engine.Density))
			if err := eng.Transition(cmd.Context(), engine.InputChanged{Snapshot: snap}); err != nil {
				return err
			}

			model := newViewerModel(eng, snap)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	return cmd
}

// =============================================================================
// ViewerModel - Interactive Topology Viewer
// =============================================================================

// viewerModel is the bubbletea model for the topology viewer.
type viewerModel struct {
	eng  *engine.Engine
	snap engine.Snapshot

	// Terminal dimensions in cells.
	width  int
	height int

	// cursor indexes the highlighted node in the current state.
	cursor int
}

func newViewerModel(eng *engine.Engine, snap engine.Snapshot) viewerModel {
	return viewerModel{eng: eng, snap: snap, width: 80, height: 24}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up":
			m.pan(0, panStep)
		case "down":
			m.pan(0, -panStep)
		case "left":
			m.pan(panStep, 0)
		case "right":
			m.pan(-panStep, 0)
		case "+", "=":
			m.zoom(zoomStep)
		case "-", "_":
			m.zoom(1 / zoomStep)
		case "tab":
			state := m.eng.CurrentGraphState()
			if len(state.Nodes) > 0 {
				m.cursor = (m.cursor + 1) % len(state.Nodes)
			}
		case "enter":
			m.focusCursor()
		case "esc":
			// Background click: the owning UI deselects.
			_ = m.eng.Transition(context.Background(), engine.SelectionChanged{})
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 3 // status lines
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// pan applies a pan gesture relative to the current transform.
func (m *viewerModel) pan(dx, dy float64) {
	vp := m.eng.CurrentGraphState().Viewport
	_ = m.eng.Transition(context.Background(), engine.Gesture{
		Scale:      vp.Scale,
		TranslateX: vp.PanX + dx,
		TranslateY: vp.PanY + dy,
	})
}

// zoom applies a zoom gesture, clamping like a real gesture source would.
func (m *viewerModel) zoom(factor float64) {
	vp := m.eng.CurrentGraphState().Viewport
	_ = m.eng.Transition(context.Background(), engine.Gesture{
		Scale:      viewport.ClampScale(vp.Scale * factor),
		TranslateX: vp.PanX,
		TranslateY: vp.PanY,
	})
}

// focusCursor selects the highlighted node, with neighbors derived from the
// snapshot's adjacency data.
func (m *viewerModel) focusCursor() {
	state := m.eng.CurrentGraphState()
	if m.cursor >= len(state.Nodes) {
		return
	}
	sel := state.Nodes[m.cursor]
	_ = m.eng.Transition(context.Background(), engine.SelectionChanged{
		NodeID:      sel.ID,
		AdjacentIDs: adjacentOf(m.snap.Nodes, sel.ID),
	})
}

// adjacentOf gathers neighbor ids from both edge directions.
func adjacentOf(nodes []topology.Node, id string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(nid string) {
		if nid == id {
			return
		}
		if _, ok := seen[nid]; ok {
			return
		}
		seen[nid] = struct{}{}
		out = append(out, nid)
	}
	for i := range nodes {
		if nodes[i].ID == id {
			for _, a := range nodes[i].Adjacency {
				add(a)
			}
			continue
		}
		for _, a := range nodes[i].Adjacency {
			if a == id {
				add(nodes[i].ID)
			}
		}
	}
	return out
}

// =============================================================================
// Rendering
// =============================================================================

func (m viewerModel) View() string {
	state := m.eng.CurrentGraphState()

	grid := make([][]string, m.height)
	for y := range grid {
		grid[y] = make([]string, m.width)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for i := range state.Edges {
		m.drawEdge(grid, state, &state.Edges[i])
	}

	neighbors := make(map[string]struct{})
	if state.SelectedID != "" {
		for i := range state.Edges {
			e := &state.Edges[i]
			if e.Source == state.SelectedID {
				neighbors[e.Target] = struct{}{}
			}
			if e.Target == state.SelectedID {
				neighbors[e.Source] = struct{}{}
			}
		}
	}

	for i := range state.Nodes {
		n := &state.Nodes[i]
		x, y, ok := m.project(state.Viewport, n.X, n.Y)
		if !ok {
			continue
		}
		style := styleNode
		marker := "●"
		switch {
		case n.ID == state.SelectedID:
			style, marker = styleSelectedNode, "◉"
		case i == m.cursor:
			style, marker = styleSelectedNode, "○"
		case n.Pseudo:
			style = stylePseudoNode
		default:
			if _, ok := neighbors[n.ID]; ok {
				style = styleNeighborNode
			}
		}
		grid[y][x] = style.Render(marker)
		m.drawLabel(grid, x, y, style, n.DisplayLabel())
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}

	vp := state.Viewport
	b.WriteString(StyleTitle.Render(fmt.Sprintf("scope %s", state.TopologyID)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  scale %.2f  pan (%.0f, %.0f)  %d nodes",
		vp.Scale, vp.PanX, vp.PanY, len(state.Nodes))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←↑↓→ pan  +/- zoom  ⇥ highlight  ⏎ focus  esc deselect  q quit"))
	return b.String()
}

// project maps graph coordinates through the viewport transform onto the
// character grid. The boolean is false for off-screen positions.
func (m viewerModel) project(vp viewport.State, gx, gy float64) (int, int, bool) {
	sx := gx*vp.Scale + vp.PanX
	sy := gy*vp.Scale + vp.PanY
	x := int(sx / m.snap.Width * float64(m.width))
	y := int(sy / m.snap.Height * float64(m.height))
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, 0, false
	}
	return x, y, true
}

// drawEdge draws the edge polyline with dim dots, segment by segment.
func (m viewerModel) drawEdge(grid [][]string, state engine.GraphState, e *topology.Edge) {
	for i := 1; i < len(e.Points); i++ {
		x0, y0, ok0 := m.project(state.Viewport, e.Points[i-1].X, e.Points[i-1].Y)
		x1, y1, ok1 := m.project(state.Viewport, e.Points[i].X, e.Points[i].Y)
		if !ok0 || !ok1 {
			continue
		}
		drawLine(grid, x0, y0, x1, y1)
	}
}

// drawLine plots a Bresenham line of dim dots, skipping occupied cells.
func drawLine(grid [][]string, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if grid[y0][x0] == " " {
			grid[y0][x0] = styleEdge.Render("·")
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawLabel writes the node label to the right of its marker, truncated at
// the grid edge.
func (m viewerModel) drawLabel(grid [][]string, x, y int, style lipgloss.Style, label string) {
	for i, r := range label {
		cx := x + 2 + i
		if cx >= m.width {
			return
		}
		grid[y][cx] = style.Render(string(r))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
