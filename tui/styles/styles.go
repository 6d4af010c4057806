package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#7C3AED") // Purple
	AccentColor  = lipgloss.Color("#F59E0B") // Amber

	BuyColor  = lipgloss.Color("#10B981")
	SellColor = lipgloss.Color("#EF4444")

	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = lipgloss.Color("#7C3AED")

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("#374151"))
)

// Text styles
var (
	BuyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(BuyColor)

	SellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SellColor)

	PriceUpStyle = lipgloss.NewStyle().
			Foreground(BuyColor)

	PriceDownStyle = lipgloss.NewStyle().
			Foreground(SellColor)

	SizeStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)
)

// Order outcome styles
var (
	PendingStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(BuyColor)

	// SimulatedFailureStyle is for practice failures, which are part of the lesson.
	SimulatedFailureStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(AccentColor)

	FailureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SellColor)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(FocusBorderColor).
				Padding(0, 1)

	DisabledInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(BorderColor).
				Foreground(TextMutedColor).
				Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	OptionStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1)

	SelectedOptionStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Background(lipgloss.Color("#374151")).
				Padding(0, 1)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)

	LearnerBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(BackgroundColor).
				Background(AccentColor).
				Padding(0, 1)

	InvestorBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(TextColor).
				Background(SellColor).
				Padding(0, 1)
)

// RenderTitle renders a title bar for a panel.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatPrice formats a quote-currency amount at cents.
func FormatPrice(price decimal.Decimal) string {
	if !price.IsPositive() {
		return "-"
	}
	return price.StringFixed(2)
}

// FormatChange renders a signed percentage in up/down colors.
func FormatChange(pct decimal.Decimal) string {
	s := pct.StringFixed(2) + "%"
	switch {
	case pct.IsPositive():
		return PriceUpStyle.Render("+" + s)
	case pct.IsNegative():
		return PriceDownStyle.Render(s)
	default:
		return SizeStyle.Render(s)
	}
}
