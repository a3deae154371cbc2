// Package tui provides the Bubble Tea TUI for burnerctl.
package tui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emberwallet/burner/internal/gas"
	"github.com/emberwallet/burner/internal/wallet"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")).
			MarginLeft(2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			MarginLeft(2)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1).
			MarginLeft(2)
)

// MenuItem represents a menu item.
type MenuItem struct {
	title       string
	description string
	action      string
}

func (i MenuItem) Title() string       { return i.title }
func (i MenuItem) Description() string { return i.description }
func (i MenuItem) FilterValue() string { return i.title }

// View represents the current view.
type View int

const (
	ViewMain View = iota
	ViewBurner
	ViewGasTable
)

// burnerTTL is the lifetime offered to TUI-created burners.
const burnerTTL = 15 * time.Minute

// Model is the Bubble Tea model.
type Model struct {
	list        list.Model
	currentView View
	width       int
	height      int
	account     *wallet.Account
	err         error
}

// NewModel creates a new TUI model.
func NewModel() Model {
	items := []list.Item{
		MenuItem{
			title:       "New burner",
			description: fmt.Sprintf("Generate a single-use account (%s TTL)", burnerTTL),
			action:      "new",
		},
		MenuItem{
			title:       "Gas costs",
			description: "Transfer cost table at common gas prices",
			action:      "gas",
		},
		MenuItem{
			title:       "Quit",
			description: "Exit burnerctl",
			action:      "quit",
		},
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "burnerctl"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{list: l, currentView: ViewMain}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.currentView == ViewMain {
				return m, tea.Quit
			}
			m.currentView = ViewMain
			return m, nil

		case "esc":
			m.currentView = ViewMain
			return m, nil

		case "enter":
			if m.currentView != ViewMain {
				return m, nil
			}
			item, ok := m.list.SelectedItem().(MenuItem)
			if !ok {
				return m, nil
			}
			switch item.action {
			case "new":
				acct, err := wallet.New(burnerTTL, "tui")
				m.account = acct
				m.err = err
				m.currentView = ViewBurner
			case "gas":
				m.currentView = ViewGasTable
			case "quit":
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.currentView {
	case ViewBurner:
		return m.burnerView()
	case ViewGasTable:
		return m.gasTableView()
	default:
		return m.list.View()
	}
}

func (m Model) burnerView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New burner account") + "\n\n")

	if m.err != nil {
		b.WriteString(warnStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(helpStyle.Render("esc: back"))
		return b.String()
	}

	addr := m.account.Address().Hex()
	b.WriteString(labelStyle.Render("Address") + "\n")
	b.WriteString(valueStyle.Render(addr) + "\n\n")
	b.WriteString(labelStyle.Render("Payment URI") + "\n")
	b.WriteString(valueStyle.Render(wallet.PaymentURI(addr)) + "\n\n")
	b.WriteString(labelStyle.Render("Expires") + "\n")
	b.WriteString(valueStyle.Render(m.account.ExpiresAt.Format(time.RFC3339)) + "\n\n")
	b.WriteString(warnStyle.Render("Single use. The key lives only in this process.") + "\n")
	b.WriteString(helpStyle.Render("esc: back  q: menu"))

	return b.String()
}

// gasTableView renders transfer costs with a 20% safety margin at common
// gas prices.
func (m Model) gasTableView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ETH transfer cost (21000 gas, +20% margin)") + "\n\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s %-22s %s", "GWEI", "EXACT (wei)", "WITH MARGIN (wei)")) + "\n")

	gwei := big.NewInt(1_000_000_000)
	for _, price := range []int64{5, 10, 20, 50, 100} {
		wei := new(big.Int).Mul(big.NewInt(price), gwei)
		exact := gas.TotalCost(gas.LimitETHTransfer, wei)
		margin := gas.WithMargin(gas.LimitETHTransfer, wei, 2000)
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-12d %-22s %s", price, exact, margin)) + "\n")
	}

	b.WriteString(helpStyle.Render("esc: back  q: menu"))
	return b.String()
}

// Run starts the TUI.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
