// Package tui implements the storefront terminal user interface using Bubble Tea.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - wool and heather tones
var (
	colorOatmeal   = lipgloss.Color("#F3EBDD")
	colorBurgundy  = lipgloss.Color("#8C2F39")
	colorHeather   = lipgloss.Color("#A89CC8")
	colorForest    = lipgloss.Color("#4F6D57")
	colorCharcoal  = lipgloss.Color("#5A5A66")
	colorHighlight = lipgloss.Color("#E0A458")
	colorSuccess   = lipgloss.Color("#6BAA75")
	colorBadge     = lipgloss.Color("#F2C14E")
	colorError     = lipgloss.Color("#E5534B")
	colorMuted     = lipgloss.Color("#9E9E9E")
)

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	App lipgloss.Style

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderTag   lipgloss.Style
	CartBadge   lipgloss.Style

	// Listing
	ListTitle   lipgloss.Style
	FilterLabel lipgloss.Style
	FilterValue lipgloss.Style
	EmptyState  lipgloss.Style

	// Product details
	ProductName        lipgloss.Style
	ProductPrice       lipgloss.Style
	ProductCategory    lipgloss.Style
	ProductDescription lipgloss.Style
	Bestseller         lipgloss.Style
	Rating             lipgloss.Style

	// Cart and checkout
	SectionTitle lipgloss.Style
	Summary      lipgloss.Style
	Total        lipgloss.Style
	Flash        lipgloss.Style

	// General
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Box       lipgloss.Style
	HelpBar   lipgloss.Style
}

// DefaultStyles returns the default TUI styles.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorCharcoal).
			MarginBottom(1).
			Padding(0, 1),

		HeaderTitle: lipgloss.NewStyle().
			Foreground(colorBurgundy).
			Bold(true),

		HeaderTag: lipgloss.NewStyle().
			Foreground(colorHeather).
			Italic(true),

		CartBadge: lipgloss.NewStyle().
			Foreground(colorOatmeal).
			Background(colorBurgundy).
			Padding(0, 1),

		ListTitle: lipgloss.NewStyle().
			Foreground(colorOatmeal).
			Background(colorForest).
			Bold(true).
			Padding(0, 1),

		FilterLabel: lipgloss.NewStyle().
			Foreground(colorMuted),

		FilterValue: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),

		EmptyState: lipgloss.NewStyle().
			Foreground(colorOatmeal).
			Padding(1, 2),

		ProductName: lipgloss.NewStyle().
			Foreground(colorBurgundy).
			Bold(true),

		ProductPrice: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),

		ProductCategory: lipgloss.NewStyle().
			Foreground(colorHeather),

		ProductDescription: lipgloss.NewStyle().
			Foreground(colorOatmeal).
			MarginTop(1).
			MarginBottom(1),

		Bestseller: lipgloss.NewStyle().
			Foreground(colorCharcoal).
			Background(colorBadge).
			Bold(true).
			Padding(0, 1),

		Rating: lipgloss.NewStyle().
			Foreground(colorBadge),

		SectionTitle: lipgloss.NewStyle().
			Foreground(colorHeather).
			Bold(true),

		Summary: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorCharcoal).
			Padding(0, 2).
			MarginTop(1),

		Total: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),

		Flash: lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true),

		Subtle: lipgloss.NewStyle().
			Foreground(colorMuted),

		Highlight: lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(colorSuccess),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorCharcoal).
			Padding(1, 2),

		HelpBar: lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1),
	}
}
