package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned by PickItem for an empty list.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // wallet name
	SubLabel string // address or account, dimmed
	Value    string // returned on selection
	Current  bool   // marks the active entry and places the cursor on it
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPicker(title string, items []PickerItem) pickerModel {
	m := pickerModel{title: title, items: items}
	for i, it := range items {
		if it.Current {
			m.cursor = i
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.items) == 0 {
		return m, nil
	}
	last := len(m.items) - 1
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.cursor--
		if m.cursor < 0 {
			m.cursor = last
		}
	case "down", "j", "tab":
		m.cursor++
		if m.cursor > last {
			m.cursor = 0
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = last
	case "enter", " ":
		item := m.items[m.cursor]
		m.selected = &item
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n" + StyleTitle.Render("  "+m.title) + "\n\n")
	for i, item := range m.items {
		marker := "  "
		if item.Current {
			marker = StyleSuccess.Render("● ")
		}
		line := marker + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			sb.WriteString("  ▸ " + StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString("    " + line + "\n")
		}
	}
	sb.WriteString("\n" + StyleMeta.Render("  [ ↑↓ / jk ] move   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's
// Value, or "" if the user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}
	final, err := tea.NewProgram(newPicker(title, items), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
