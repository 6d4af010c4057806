package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/tradedesk/internal/market"
	"github.com/zappabad/tradedesk/tui/styles"
)

// MarketsPanel lists the tradeable pairs with their latest price.
type MarketsPanel struct {
	pairs         []market.AssetPair
	index         map[string]int
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketsPanel creates a markets panel for pairs, in the given order.
func NewMarketsPanel(pairs []market.AssetPair) *MarketsPanel {
	p := &MarketsPanel{index: make(map[string]int, len(pairs))}
	p.SetPairs(pairs)
	return p
}

// Init initializes the panel.
func (p *MarketsPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *MarketsPanel) Update(msg tea.Msg) (*MarketsPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.pairs)-1 {
				p.selectedIndex++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if pair, ok := p.SelectedPair(); ok {
				return p, func() tea.Msg { return PairSelectedMsg{Pair: pair} }
			}
		}
	}
	return p, nil
}

// View renders the panel.
func (p *MarketsPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-10s %12s %9s", "Pair", "Price", "24h")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for i, pair := range p.pairs {
		row := fmt.Sprintf("%-10s %12s ", pair.Symbol(), styles.FormatPrice(pair.Price))

		style := styles.RowStyle
		if i == p.selectedIndex && p.focused {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(row))
		content.WriteString(lipgloss.NewStyle().Width(9).Align(lipgloss.Right).Render(styles.FormatChange(pair.Change24h)))
		if i < len(p.pairs)-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("Markets", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *MarketsPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPairs replaces the listed pairs.
func (p *MarketsPanel) SetPairs(pairs []market.AssetPair) {
	p.pairs = append(p.pairs[:0], pairs...)
	clear(p.index)
	for i, pair := range p.pairs {
		p.index[pair.Symbol()] = i
	}
	if p.selectedIndex >= len(p.pairs) {
		p.selectedIndex = 0
	}
}

// UpdatePair refreshes one row. Unknown pairs are ignored.
func (p *MarketsPanel) UpdatePair(pair market.AssetPair) {
	if i, ok := p.index[pair.Symbol()]; ok {
		p.pairs[i] = pair
	}
}

// SelectedPair returns the highlighted pair.
func (p *MarketsPanel) SelectedPair() (market.AssetPair, bool) {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.pairs) {
		return p.pairs[p.selectedIndex], true
	}
	return market.AssetPair{}, false
}

// PairSelectedMsg is sent when a pair is picked for trading.
type PairSelectedMsg struct {
	Pair market.AssetPair
}

// MarketUpdateMsg is sent when a pair's price changes.
type MarketUpdateMsg struct {
	Pair market.AssetPair
}
