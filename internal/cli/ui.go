package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)

	// Viewer styles
	styleNode         = lipgloss.NewStyle().Foreground(colorCyan)
	stylePseudoNode   = lipgloss.NewStyle().Foreground(colorDim)
	styleSelectedNode = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleNeighborNode = lipgloss.NewStyle().Foreground(colorGreen)
	styleEdge         = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
)

// printSuccess prints a success message with a check mark.
func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

// printError prints an error message with a cross.
func printError(format string, args ...any) {
	fmt.Printf("%s %s\n", styleIconError.Render(iconError), fmt.Sprintf(format, args...))
}

// printInfo prints an informational message.
func printInfo(format string, args ...any) {
	fmt.Printf("%s %s\n", styleIconInfo.Render(iconInfo), fmt.Sprintf(format, args...))
}

// printDetail prints dimmed secondary detail, indented under the previous line.
func printDetail(format string, args ...any) {
	fmt.Printf("  %s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
}
