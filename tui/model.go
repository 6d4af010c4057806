package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	accountservice "github.com/zappabad/tradedesk/internal/account/service"
	"github.com/zappabad/tradedesk/internal/desk"
	"github.com/zappabad/tradedesk/internal/trade"
	tradeservice "github.com/zappabad/tradedesk/internal/trade/service"
	"github.com/zappabad/tradedesk/tui/panels"
	"github.com/zappabad/tradedesk/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarkets PanelFocus = 0
	FocusTicket  PanelFocus = 1
	FocusOrders  PanelFocus = 2
)

const panelCount = 3

// Model is the main TUI application model.
type Model struct {
	desk   *desk.Desk
	ticket *trade.Ticket
	mode   trade.Mode
	quote  string

	marketsPanel *panels.MarketsPanel
	ticketPanel  *panels.TicketPanel
	ordersPanel  *panels.OrdersPanel

	focusedPanel PanelFocus

	width  int
	height int

	statusMsg   string
	statusStyle lipgloss.Style
	ready       bool
}

// NewModel creates a TUI model over an assembled desk.
func NewModel(d *desk.Desk) *Model {
	pairs := d.Market.Pairs()

	ticket := trade.NewTicket("", trade.SideBuy)
	if len(pairs) > 0 {
		ticket.SelectAsset(pairs[0].Base, pairs[0].Price)
	}

	m := &Model{
		desk:         d,
		ticket:       ticket,
		mode:         d.Mode(),
		quote:        d.QuoteAsset(),
		marketsPanel: panels.NewMarketsPanel(pairs),
		ticketPanel:  panels.NewTicketPanel(ticket, d.QuoteAsset()),
		ordersPanel:  panels.NewOrdersPanel(d.QuoteAsset()),
		focusedPanel: FocusTicket,
		statusStyle:  styles.StatusBarDescStyle,
	}
	m.refreshAccount()
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.marketsPanel.Init(),
		m.ticketPanel.Init(),
		m.ordersPanel.Init(),
		m.listenMarketEvents(),
		m.listenAccountEvents(),
		m.listenOrderEvents(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.focusedPanel = (m.focusedPanel + 1) % panelCount
		case "shift+tab":
			m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		case "f1":
			m.focusedPanel = FocusMarkets
		case "f2":
			m.focusedPanel = FocusTicket
		case "f3":
			m.focusedPanel = FocusOrders
		case "ctrl+t":
			m.toggleMode()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case panels.MarketUpdateMsg:
		m.marketsPanel.UpdatePair(msg.Pair)
		if msg.Pair.Base == m.ticket.Intent().BaseAsset && msg.Pair.Quote == m.quote {
			m.ticket.SetPrice(msg.Pair.Price)
			m.ticketPanel.Refresh()
		}
		cmds = append(cmds, m.listenMarketEvents())

	case panels.PairSelectedMsg:
		m.selectPair(msg)

	case accountUpdateMsg:
		m.refreshAccount()
		cmds = append(cmds, m.listenAccountEvents())

	case orderEventMsg:
		m.ordersPanel.SetCurrent(msg.order)
		// Emissions are drained asynchronously, so a pending one can arrive after the result.
		if msg.order.Status == trade.StatusPending && m.desk.Submitter.InFlight() {
			m.ticketPanel.SetInFlight(true)
		}
		m.setOrderStatus(msg.order)
		cmds = append(cmds, m.listenOrderEvents())

	case panels.TicketSubmitMsg:
		m.ticketPanel.SetInFlight(true)
		cmds = append(cmds, m.submitOrder())

	case orderResultMsg:
		m.ticketPanel.SetInFlight(false)
		m.ticketPanel.Refresh()
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.ordersPanel.SetCurrent(msg.order)
			m.setOrderStatus(msg.order)
		}
		m.refreshAccount()

	case tickMsg:
		m.ticketPanel.SetInFlight(m.desk.Submitter.InFlight())
		cmds = append(cmds, m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusMarkets:
		m.marketsPanel, cmd = m.marketsPanel.Update(msg)
	case FocusTicket:
		m.ticketPanel, cmd = m.ticketPanel.Update(msg)
	case FocusOrders:
		m.ordersPanel, cmd = m.ordersPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.marketsPanel.SetFocus(m.focusedPanel == FocusMarkets)
	m.ticketPanel.SetFocus(m.focusedPanel == FocusTicket)
	m.ordersPanel.SetFocus(m.focusedPanel == FocusOrders)

	// ┌──────────────┬──────────────────────┐
	// │   Markets    │        Ticket        │
	// ├──────────────┴──────────────────────┤
	// │               Orders                │
	// └─────────────────────────────────────┘
	leftWidth := m.width * 2 / 5
	rightWidth := m.width - leftWidth

	topHeight := (m.height - 1) * 3 / 5
	bottomHeight := m.height - topHeight - 1

	m.marketsPanel.SetSize(leftWidth, topHeight)
	m.ticketPanel.SetSize(rightWidth, topHeight)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.marketsPanel.View(),
		m.ticketPanel.View(),
	)

	m.ordersPanel.SetSize(m.width, bottomHeight)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, m.ordersPanel.View(), m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	badge := styles.LearnerBadgeStyle.Render(m.mode.String())
	if m.mode == trade.ModeInvestor {
		badge = styles.InvestorBadgeStyle.Render(m.mode.String())
	}

	help := []string{
		styles.StatusBarKeyStyle.Render("F1-F3") + styles.StatusBarDescStyle.Render(" panels"),
		styles.StatusBarKeyStyle.Render("↑↓") + styles.StatusBarDescStyle.Render(" move"),
		styles.StatusBarKeyStyle.Render("ctrl+t") + styles.StatusBarDescStyle.Render(" mode"),
		styles.StatusBarKeyStyle.Render("q") + styles.StatusBarDescStyle.Render(" quit"),
	}
	helpStr := lipgloss.JoinHorizontal(lipgloss.Center, help[0], " │ ", help[1], " │ ", help[2], " │ ", help[3])

	status := ""
	if m.statusMsg != "" {
		status = " │ " + m.statusStyle.Render(m.statusMsg)
	}

	return styles.StatusBarStyle.Width(m.width).Render(badge + " " + helpStr + status)
}

func (m *Model) toggleMode() {
	if m.desk.Submitter.InFlight() {
		return
	}
	if m.mode == trade.ModeLearner {
		m.mode = trade.ModeInvestor
		m.statusMsg = "Investor mode: orders are real"
		m.statusStyle = styles.FailureStyle
	} else {
		m.mode = trade.ModeLearner
		m.statusMsg = "Learner mode: practice orders"
		m.statusStyle = styles.SimulatedFailureStyle
	}
}

func (m *Model) selectPair(msg panels.PairSelectedMsg) {
	if m.desk.Submitter.InFlight() || msg.Pair.Base == m.ticket.Intent().BaseAsset {
		return
	}
	m.ticket.SelectAsset(msg.Pair.Base, msg.Pair.Price)
	m.ticketPanel.Refresh()
	m.refreshAccount()
	m.focusedPanel = FocusTicket
}

func (m *Model) refreshAccount() {
	cash := m.desk.Account.GetBalance(m.quote)
	qty := m.desk.Account.GetBalance(m.ticket.Intent().BaseAsset)
	m.ticketPanel.SetBalances(cash.Available, qty.Available)
	m.ordersPanel.SetHistory(m.desk.Account.Orders())
}

func (m *Model) setOrderStatus(o trade.Order) {
	m.statusMsg, m.statusStyle = panels.OrderStatusText(o, m.quote)
}

func (m *Model) setError(err error) {
	m.statusStyle = styles.FailureStyle
	var verr *trade.ValidationError
	switch {
	case errors.Is(err, tradeservice.ErrOrderInFlight):
		m.statusMsg = "An order is already in progress"
		m.statusStyle = styles.PendingStyle
	case errors.As(err, &verr):
		m.statusMsg = "Cannot submit: " + verr.Reason.Err().Error()
	default:
		m.statusMsg = "✗ " + err.Error()
	}
}

func (m *Model) submitOrder() tea.Cmd {
	mode := m.mode
	return func() tea.Msg {
		settled, err := m.desk.Submitter.Submit(context.Background(), mode, m.ticket)
		if err != nil {
			logrus.WithField("component", "tui").WithError(err).Debug("submit rejected")
			return orderResultMsg{err: err}
		}
		return orderResultMsg{order: settled.Snapshot()}
	}
}

func (m *Model) listenMarketEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.desk.Market.Events()
		if !ok {
			return nil
		}
		return panels.MarketUpdateMsg{Pair: ev.Pair}
	}
}

func (m *Model) listenAccountEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.desk.Account.Events()
		if !ok {
			return nil
		}
		return accountUpdateMsg{kind: ev.Kind}
	}
}

func (m *Model) listenOrderEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.desk.Submitter.Events()
		if !ok {
			return nil
		}
		switch e := ev.(type) {
		case tradeservice.PendingEmission:
			return orderEventMsg{order: e.Order}
		case tradeservice.SettledEmission:
			return orderEventMsg{order: e.Order}
		}
		return nil
	}
}

// tickMsg is sent periodically to refresh derived state.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

// orderResultMsg is sent when Submit returns.
type orderResultMsg struct {
	order trade.Order
	err   error
}

// orderEventMsg carries an order emission from the submitter.
type orderEventMsg struct {
	order trade.Order
}

type accountUpdateMsg struct {
	kind accountservice.EventKind
}
