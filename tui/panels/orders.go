package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/tradedesk/internal/trade"
	"github.com/zappabad/tradedesk/tui/styles"
)

// OrdersPanel shows the order in progress and the recent order history.
type OrdersPanel struct {
	current       *trade.Order
	history       []trade.Order
	quoteAsset    string
	selectedIndex int
	scrollOffset  int
	focused       bool
	width         int
	height        int
}

// NewOrdersPanel creates an empty orders panel.
func NewOrdersPanel(quoteAsset string) *OrdersPanel {
	return &OrdersPanel{quoteAsset: quoteAsset}
}

// Init initializes the panel.
func (p *OrdersPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *OrdersPanel) Update(msg tea.Msg) (*OrdersPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.history)-1 {
				p.selectedIndex++
				visible := p.visibleRows()
				if p.selectedIndex >= p.scrollOffset+visible {
					p.scrollOffset = p.selectedIndex - visible + 1
				}
			}
		}
	}
	return p, nil
}

func (p *OrdersPanel) visibleRows() int {
	// title, current order block, header, borders
	n := p.height - 8
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *OrdersPanel) View() string {
	var content strings.Builder

	if p.current != nil {
		text, style := OrderStatusText(*p.current, p.quoteAsset)
		content.WriteString(style.Render(text))
	} else {
		content.WriteString(styles.TimeStyle.Render("No order in progress"))
	}
	content.WriteString("\n\n")

	header := fmt.Sprintf("%-8s %-4s %-5s %14s %12s %-9s", "Time", "Side", "Asset", "Filled", "Price", "Status")
	content.WriteString(styles.HeaderStyle.Render(header))

	if len(p.history) == 0 {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("No orders yet"))
	}

	visible := p.visibleRows()
	end := min(p.scrollOffset+visible, len(p.history))
	for i := p.scrollOffset; i < end; i++ {
		o := p.history[i]

		sideStyle := styles.BuyStyle
		if o.Side == trade.SideSell {
			sideStyle = styles.SellStyle
		}
		line := fmt.Sprintf("%s %s %-5s %14s %12s %s",
			styles.TimeStyle.Render(o.CreatedAt.Local().Format("15:04:05")),
			sideStyle.Render(fmt.Sprintf("%-4s", o.Side)),
			o.Asset,
			o.FilledAmount.StringFixed(trade.QuantityDecimals),
			styles.FormatPrice(o.Price),
			statusStyle(o).Render(statusLabel(o)),
		)
		if i == p.selectedIndex && p.focused {
			line = styles.SelectedRowStyle.Render(line)
		}
		content.WriteString("\n")
		content.WriteString(line)
	}

	if len(p.history) > visible {
		content.WriteString("\n")
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(
			fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.history))))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("Orders", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *OrdersPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *OrdersPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetCurrent shows o as the order in progress or just finished.
func (p *OrdersPanel) SetCurrent(o trade.Order) {
	p.current = &o
}

// Current returns the order shown at the top of the panel.
func (p *OrdersPanel) Current() (trade.Order, bool) {
	if p.current == nil {
		return trade.Order{}, false
	}
	return *p.current, true
}

// SetHistory replaces the history list, newest first.
func (p *OrdersPanel) SetHistory(orders []trade.Order) {
	p.history = orders
	if p.selectedIndex >= len(p.history) {
		p.selectedIndex = max(len(p.history)-1, 0)
	}
	if p.scrollOffset > p.selectedIndex {
		p.scrollOffset = p.selectedIndex
	}
}

func statusLabel(o trade.Order) string {
	if o.Simulated {
		return "PRACTICE"
	}
	return o.Status.String()
}

func statusStyle(o trade.Order) lipgloss.Style {
	switch {
	case o.Status == trade.StatusPending:
		return styles.PendingStyle
	case o.Status == trade.StatusCompleted:
		return styles.SuccessStyle
	case o.Simulated:
		return styles.SimulatedFailureStyle
	case o.Status == trade.StatusCancelled:
		return styles.SizeStyle
	default:
		return styles.FailureStyle
	}
}

// OrderStatusText describes an order's outcome for the user, with the style to
// render it in. Practice failures get encouraging copy; real failures are loud.
func OrderStatusText(o trade.Order, quoteAsset string) (string, lipgloss.Style) {
	style := statusStyle(o)
	switch {
	case o.Status == trade.StatusPending:
		if o.Side == trade.SideBuy {
			return fmt.Sprintf("Buying %s with %s %s...", o.Asset, o.RequestedAmount.StringFixed(trade.CashDecimals), quoteAsset), style
		}
		return fmt.Sprintf("Selling %s %s...", o.RequestedAmount.StringFixed(trade.QuantityDecimals), o.Asset), style

	case o.Status == trade.StatusCompleted:
		verb := "Bought"
		if o.Side == trade.SideSell {
			verb = "Sold"
		}
		return fmt.Sprintf("✓ %s %s %s @ %s %s", verb, o.FilledAmount.StringFixed(trade.QuantityDecimals), o.Asset,
			styles.FormatPrice(o.Price), quoteAsset), style

	case o.Simulated:
		msg := "Practice run: this order hit a simulated failure. Nothing was lost, so have another go."
		if o.FailureReason != "" {
			msg = fmt.Sprintf("Practice run: %s. Nothing was lost, so have another go.", strings.TrimRight(o.FailureReason, "."))
		}
		return msg, style

	case o.Status == trade.StatusCancelled:
		return "Order cancelled", style

	default:
		reason := o.FailureReason
		if reason == "" {
			reason = "unknown error"
		}
		return "✗ Order failed: " + reason, style
	}
}
