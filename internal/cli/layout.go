package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/narayan-iyengar/scope/pkg/engine"
	"github.com/narayan-iyengar/scope/pkg/layout/force"
	"github.com/narayan-iyengar/scope/pkg/render"
)

// Output formats for the layout command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// layoutCommand creates the one-shot layout command: read a topology
// snapshot, compute positions, export the result.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output        string
		format        string
		width         float64
		height        float64
		forceRelayout bool
	)

	cmd := &cobra.Command{
		Use:   "layout <topology.json>",
		Short: "Compute a layout for a topology snapshot",
		Long:  `Layout reads a topology snapshot (nodes with adjacency lists), runs the force layout, and writes the positioned graph as JSON, DOT, or SVG.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			snap, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			if width > 0 {
				snap.Width = width
			}
			if height > 0 {
				snap.Height = height
			}
			snap.ForceRelayout = snap.ForceRelayout || forceRelayout

			layoutCache, err := buildCache(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init cache: %w", err)
			}
			defer layoutCache.Close()

			eng := engine.New(force.Layout,
				engine.WithLogger(logger),
				engine.WithCache(layoutCache),
				engine.WithCacheTTL(cfg.Cache.TTL.Std()),
				engine.WithSizeLimits(cfg.Engine.NodeSize),
				engine.WithDensity(cfg.Engine.Density))

			prog := newProgress(logger)
			if err := eng.Transition(cmd.Context(), engine.InputChanged{Snapshot: snap}); err != nil {
				return err
			}
			state := eng.CurrentGraphState()
			prog.done(fmt.Sprintf("Positioned %d nodes, %d edges", len(state.Nodes), len(state.Edges)))

			data, err := encodeState(state, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json, dot, svg")
	cmd.Flags().Float64Var(&width, "width", 0, "override viewport width")
	cmd.Flags().Float64Var(&height, "height", 0, "override viewport height")
	cmd.Flags().BoolVar(&forceRelayout, "force", false, "bypass the layout cache")

	return cmd
}

// readSnapshot loads and decodes a topology snapshot file.
func readSnapshot(path string) (engine.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap.Width <= 0 {
		snap.Width = 1024
	}
	if snap.Height <= 0 {
		snap.Height = 768
	}
	return snap, nil
}

func encodeState(state engine.GraphState, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return json.MarshalIndent(state, "", "  ")
	case formatDOT:
		return []byte(render.ToDOT(state)), nil
	case formatSVG:
		return render.RenderSVG(render.ToDOT(state))
	default:
		return nil, fmt.Errorf("unknown format %q (want json, dot, or svg)", format)
	}
}
