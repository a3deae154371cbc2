package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelMenu(t *testing.T) {
	m := NewModel()

	if m.currentView != ViewMain {
		t.Errorf("initial view = %v, want ViewMain", m.currentView)
	}
	if len(m.list.Items()) != 3 {
		t.Errorf("menu has %d items, want 3", len(m.list.Items()))
	}

	first, ok := m.list.Items()[0].(MenuItem)
	if !ok {
		t.Fatal("menu items should be MenuItem")
	}
	if first.action != "new" {
		t.Errorf("first action = %q, want %q", first.action, "new")
	}
}

func TestEnterCreatesBurner(t *testing.T) {
	m := NewModel()

	updated, _ := m.Update(keyMsg("enter"))
	model := updated.(Model)

	if model.currentView != ViewBurner {
		t.Fatalf("view after enter = %v, want ViewBurner", model.currentView)
	}
	if model.err != nil {
		t.Fatalf("burner creation failed: %v", model.err)
	}
	if model.account == nil {
		t.Fatal("account should be created")
	}
	if model.account.ExpiresAt.IsZero() {
		t.Error("TUI burner should carry a TTL")
	}

	view := model.View()
	if !strings.Contains(view, model.account.Address().Hex()) {
		t.Error("burner view should show the address")
	}
	if !strings.Contains(view, "ethereum:"+model.account.Address().Hex()) {
		t.Error("burner view should show the payment URI")
	}
	if strings.Contains(view, model.account.Keypair().PrivateKeyHex()) {
		t.Error("burner view must never show the private key")
	}
}

func TestEscReturnsToMenu(t *testing.T) {
	m := NewModel()

	updated, _ := m.Update(keyMsg("enter"))
	updated, _ = updated.(Model).Update(keyMsg("esc"))
	model := updated.(Model)

	if model.currentView != ViewMain {
		t.Errorf("view after esc = %v, want ViewMain", model.currentView)
	}
}

func TestGasTableView(t *testing.T) {
	m := NewModel()
	m.currentView = ViewGasTable

	view := m.View()
	if !strings.Contains(view, "21000") {
		t.Error("gas table should mention the transfer gas limit")
	}
	// 21000 gas at 20 gwei.
	if !strings.Contains(view, "420000000000000") {
		t.Error("gas table should show the exact 20 gwei transfer cost")
	}
	// Same row with a 20% margin applied.
	if !strings.Contains(view, "504000000000000") {
		t.Error("gas table should show the margin-adjusted 20 gwei cost")
	}
}

func TestQuitFromMenu(t *testing.T) {
	m := NewModel()

	_, cmd := m.Update(keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c on the menu should quit")
	}
}
