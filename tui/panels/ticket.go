package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/tradedesk/internal/trade"
	"github.com/zappabad/tradedesk/tui/styles"
)

// TicketField represents the currently focused ticket field.
type TicketField int

const (
	FieldSide TicketField = iota
	FieldCash
	FieldQuantity
	FieldSubmit
)

var percentKeys = map[string]int{"1": 25, "2": 50, "3": 75, "4": 100}

// TicketPanel edits the trade ticket. Both amount inputs write through the
// ticket so the other leg is always derived from the same price.
type TicketPanel struct {
	ticket     *trade.Ticket
	quoteAsset string

	cashInput     textinput.Model
	quantityInput textinput.Model
	currentField  TicketField

	availableCash     decimal.Decimal
	availableQuantity decimal.Decimal
	inFlight          bool
	hint              string

	focused bool
	width   int
	height  int
}

// NewTicketPanel creates a ticket panel editing ticket.
func NewTicketPanel(ticket *trade.Ticket, quoteAsset string) *TicketPanel {
	cashInput := textinput.New()
	cashInput.Placeholder = "0.00"
	cashInput.Width = 14
	cashInput.CharLimit = 18

	quantityInput := textinput.New()
	quantityInput.Placeholder = "0.00000000"
	quantityInput.Width = 14
	quantityInput.CharLimit = 20

	p := &TicketPanel{
		ticket:        ticket,
		quoteAsset:    quoteAsset,
		cashInput:     cashInput,
		quantityInput: quantityInput,
		currentField:  FieldCash,
	}
	p.Refresh()
	return p
}

// Init initializes the panel.
func (p *TicketPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *TicketPanel) Update(msg tea.Msg) (*TicketPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			p.setField((p.currentField + 1) % 4)
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			p.setField((p.currentField + 3) % 4)
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if p.currentField == FieldSubmit {
				return p, p.submit()
			}
			p.setField(p.currentField + 1)
			return p, nil

		// The ticket is frozen until the pending order settles.
		case p.inFlight:
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			p.ticket.Clear()
			p.hint = ""
			p.Refresh()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "right"))):
			if p.currentField == FieldSide {
				p.toggleSide()
				return p, nil
			}
		}

		if p.currentField == FieldSide || p.currentField == FieldSubmit {
			if pct, ok := percentKeys[msg.String()]; ok {
				p.ApplyPercentage(pct)
			}
			return p, nil
		}

		if msg.Type == tea.KeyRunes && !numeric(msg.Runes) {
			return p, nil
		}
	}

	var cmd tea.Cmd
	switch p.currentField {
	case FieldCash:
		before := p.cashInput.Value()
		p.cashInput, cmd = p.cashInput.Update(msg)
		if v := p.cashInput.Value(); v != before {
			cash, qty := p.ticket.SetCashAmount(v)
			setValue(&p.cashInput, cash)
			setValue(&p.quantityInput, qty)
			p.hint = ""
		}

	case FieldQuantity:
		before := p.quantityInput.Value()
		p.quantityInput, cmd = p.quantityInput.Update(msg)
		if v := p.quantityInput.Value(); v != before {
			cash, qty := p.ticket.SetQuantityAmount(v)
			setValue(&p.cashInput, cash)
			setValue(&p.quantityInput, qty)
			p.hint = ""
		}
	}

	return p, cmd
}

// View renders the panel.
func (p *TicketPanel) View() string {
	intent := p.ticket.Intent()
	price := p.ticket.Price()

	var content strings.Builder

	content.WriteString(p.renderField("Side", FieldSide, p.renderSideField(intent.Side)))
	content.WriteString("\n")
	content.WriteString(p.renderField("Amount", FieldCash, p.renderInput(&p.cashInput, FieldCash)+" "+p.quoteAsset))
	content.WriteString("\n")
	content.WriteString(p.renderField("Qty", FieldQuantity, p.renderInput(&p.quantityInput, FieldQuantity)+" "+intent.BaseAsset))
	content.WriteString("\n")

	shortcuts := styles.StatusBarKeyStyle.Render("1-4") + styles.StatusBarDescStyle.Render(" 25/50/75/100%  ")
	content.WriteString(shortcuts + styles.LabelStyle.Render("Available: ") + p.availableText(intent))
	content.WriteString("\n\n")

	content.WriteString(p.renderSummary(intent, price))
	content.WriteString("\n\n")
	content.WriteString(p.renderSubmit())

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("Trade %s", intent.BaseAsset), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *TicketPanel) renderField(label string, field TicketField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-8s", label)) + inputView
}

func (p *TicketPanel) renderInput(in *textinput.Model, field TicketField) string {
	style := styles.InputStyle
	switch {
	case p.inFlight:
		style = styles.DisabledInputStyle
	case p.currentField == field && p.focused:
		style = styles.FocusedInputStyle
	}
	return style.Render(in.View())
}

func (p *TicketPanel) renderSideField(side trade.Side) string {
	var items []string
	for _, s := range []trade.Side{trade.SideBuy, trade.SideSell} {
		style := styles.OptionStyle
		if s == side {
			if p.currentField == FieldSide && p.focused {
				style = styles.SelectedOptionStyle
			}
			if s == trade.SideBuy {
				style = style.Bold(true).Foreground(styles.BuyColor)
			} else {
				style = style.Bold(true).Foreground(styles.SellColor)
			}
		}
		items = append(items, style.Render(s.String()))
	}
	return strings.Join(items, " | ")
}

func (p *TicketPanel) availableText(intent trade.Intent) string {
	if intent.Side == trade.SideSell {
		return p.availableQuantity.StringFixed(trade.QuantityDecimals) + " " + intent.BaseAsset
	}
	return p.availableCash.StringFixed(trade.CashDecimals) + " " + p.quoteAsset
}

func (p *TicketPanel) renderSummary(intent trade.Intent, price decimal.Decimal) string {
	cash := intent.Cash()
	fee := trade.Fee(cash)
	receive := trade.ReceiveAmount(intent.Side, intent.Quantity(), cash)

	receiveText := receive.StringFixed(trade.QuantityDecimals) + " " + intent.BaseAsset
	if intent.Side == trade.SideSell {
		receiveText = receive.StringFixed(trade.CashDecimals) + " " + p.quoteAsset
	}

	lines := []string{
		styles.LabelStyle.Render(fmt.Sprintf("%-8s", "Price")) + styles.FormatPrice(price) + " " + p.quoteAsset,
		styles.LabelStyle.Render(fmt.Sprintf("%-8s", "Fee")) + fee.StringFixed(trade.CashDecimals) + " " + p.quoteAsset,
		styles.LabelStyle.Render(fmt.Sprintf("%-8s", "Receive")) + styles.HeaderStyle.Render(receiveText),
	}
	return strings.Join(lines, "\n")
}

func (p *TicketPanel) renderSubmit() string {
	if p.inFlight {
		return styles.DisabledInputStyle.Render("  Submitting...  ")
	}

	v := p.Validation()
	label := "  [Submit Order]  "
	style := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		style = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	if !v.OK {
		style = styles.DisabledInputStyle
	}

	out := style.Render(label)
	switch {
	case p.hint != "":
		out += "\n" + styles.SimulatedFailureStyle.Render(p.hint)
	case !v.OK:
		out += "\n" + styles.LabelStyle.Render(p.reasonText(v.Reason))
	}
	return out
}

func (p *TicketPanel) reasonText(r trade.Reason) string {
	intent := p.ticket.Intent()
	asset := p.quoteAsset
	if intent.Side == trade.SideSell {
		asset = intent.BaseAsset
	}
	switch r {
	case trade.ReasonEmptyAmount:
		return "Enter an amount to trade"
	case trade.ReasonNonPositivePrice:
		return "Waiting for a price"
	case trade.ReasonZeroBalance:
		return fmt.Sprintf("No %s available", asset)
	case trade.ReasonInsufficientBalance:
		return fmt.Sprintf("Not enough %s", asset)
	}
	return ""
}

func (p *TicketPanel) toggleSide() {
	side := trade.SideSell
	if p.ticket.Intent().Side == trade.SideSell {
		side = trade.SideBuy
	}
	p.ticket.SetSide(side)
	p.hint = ""
}

// ApplyPercentage sizes the ticket from the available balance of the active side.
func (p *TicketPanel) ApplyPercentage(pct int) bool {
	if p.inFlight {
		return false
	}
	if !p.ticket.ApplyPercentage(pct, p.availableCash, p.availableQuantity) {
		p.hint = "No price yet, try again in a moment"
		return false
	}
	p.hint = ""
	p.Refresh()
	return true
}

// Validation runs the local gate against the last known balances.
func (p *TicketPanel) Validation() trade.Validation {
	return p.ticket.Validate(p.availableCash, p.availableQuantity)
}

func (p *TicketPanel) submit() tea.Cmd {
	if p.inFlight || !p.Validation().OK {
		return nil
	}
	return func() tea.Msg {
		return TicketSubmitMsg{Intent: p.ticket.Intent()}
	}
}

func (p *TicketPanel) setField(f TicketField) {
	p.currentField = f
	p.cashInput.Blur()
	p.quantityInput.Blur()
	if !p.focused {
		return
	}
	switch f {
	case FieldCash:
		p.cashInput.Focus()
	case FieldQuantity:
		p.quantityInput.Focus()
	}
}

// Refresh reloads both inputs from the ticket, after a price change or a reset.
func (p *TicketPanel) Refresh() {
	intent := p.ticket.Intent()
	setValue(&p.cashInput, intent.CashAmount)
	setValue(&p.quantityInput, intent.QuantityAmount)
}

// SetBalances sets the available cash and base-asset balances.
func (p *TicketPanel) SetBalances(cash, quantity decimal.Decimal) {
	p.availableCash = cash
	p.availableQuantity = quantity
}

// SetInFlight disables submission while an order is pending.
func (p *TicketPanel) SetInFlight(inFlight bool) {
	p.inFlight = inFlight
}

// InFlight reports whether the panel is waiting on a pending order.
func (p *TicketPanel) InFlight() bool {
	return p.inFlight
}

// SetFocus sets the focus state of the panel.
func (p *TicketPanel) SetFocus(focused bool) {
	p.focused = focused
	p.setField(p.currentField)
}

// SetSize sets the panel dimensions.
func (p *TicketPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Field returns the focused field.
func (p *TicketPanel) Field() TicketField {
	return p.currentField
}

func setValue(in *textinput.Model, v string) {
	if in.Value() != v {
		in.SetValue(v)
	}
}

func numeric(rs []rune) bool {
	for _, r := range rs {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// TicketSubmitMsg is sent when the user submits a valid ticket.
type TicketSubmitMsg struct {
	Intent trade.Intent
}
