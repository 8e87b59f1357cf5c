package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/history"
	"github.com/matzehuels/flowlane/pkg/lanes"
	"github.com/matzehuels/flowlane/pkg/store"
)

// resizeStep is how far one key press moves the resize pointer.
const resizeStep = 10

var (
	laneCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	laneNormalStyle = lipgloss.NewStyle().Foreground(colorText)
	laneHiddenStyle = lipgloss.NewStyle().Foreground(colorFaint).Strikethrough(true)
	laneBarStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	laneDraftStyle  = lipgloss.NewStyle().Foreground(colorWarn).Underline(true)
)

// =============================================================================
// laneEditor - Interactive lane editing
// =============================================================================

// laneEditor is the bubbletea model behind "lane edit". It drives the store
// through the same resize tracker and rename editor a pointer UI would use:
// the keyboard stands in for the pointer.
type laneEditor struct {
	store   *store.Store
	history *history.History
	save    func(diagram.Document) error
	title   string

	resize  *lanes.ResizeTracker
	rename  *lanes.RenameEditor
	pointer diagram.Position

	cursor int
	dirty  bool
	warned bool
	status string
}

func newLaneEditor(st *store.Store, h *history.History, title string, save func(diagram.Document) error) laneEditor {
	return laneEditor{
		store:   st,
		history: h,
		save:    save,
		title:   title,
		resize:  lanes.NewResizeTracker(st, st.UI().LaneOrientation),
		rename:  lanes.NewRenameEditor(st),
	}
}

func (m laneEditor) Init() tea.Cmd {
	return nil
}

func (m laneEditor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.String() == "ctrl+c" {
		m.resize.Release()
		m.rename.Cancel()
		return m, tea.Quit
	}
	switch {
	case m.rename.Editing():
		return m.updateRename(key), nil
	case m.resize.Active():
		return m.updateResize(key), nil
	}
	return m.updateBrowse(key)
}

func (m laneEditor) ordered() []diagram.Swimlane {
	return sortedLanes(m.store.Snapshot().Lanes)
}

// current returns the lane under the cursor.
func (m laneEditor) current() (diagram.Swimlane, bool) {
	ls := m.ordered()
	if m.cursor < 0 || m.cursor >= len(ls) {
		return diagram.Swimlane{}, false
	}
	return ls[m.cursor], true
}

func (m laneEditor) changed(status string) laneEditor {
	m.dirty = true
	m.warned = false
	m.status = status
	return m
}

func (m laneEditor) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	ls := m.ordered()
	l, ok := m.current()

	switch key.String() {
	case "q", "esc":
		if m.dirty && !m.warned {
			m.warned = true
			m.status = "Unsaved changes: s to save, q again to discard"
			return m, nil
		}
		return m, tea.Quit
	case "s":
		if err := m.save(m.store.ExportSnapshot()); err != nil {
			m.status = "Save failed: " + err.Error()
			return m, nil
		}
		m.dirty = false
		m.warned = false
		m.status = "Saved " + m.title
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(ls)-1 {
			m.cursor++
		}
	case "K", "shift+up":
		if ok && m.cursor > 0 {
			m.store.ReorderLanes(swapped(ls, m.cursor, m.cursor-1))
			m.cursor--
			m = m.changed("Moved " + l.Label + " up")
		}
	case "J", "shift+down":
		if ok && m.cursor < len(ls)-1 {
			m.store.ReorderLanes(swapped(ls, m.cursor, m.cursor+1))
			m.cursor++
			m = m.changed("Moved " + l.Label + " down")
		}
	case "enter", "e":
		if ok {
			m.rename.Begin(l.ID, l.Label)
			m.status = ""
		}
	case "r":
		if ok {
			m.pointer = diagram.Position{}
			m.resize.Press(l.ID, l.Size, m.pointer)
			m.status = ""
		}
	case " ", "v":
		if ok {
			m.store.SetLaneVisible(l.ID, !l.Visible)
			m = m.changed("Toggled " + l.Label)
		}
	case "a":
		id := m.store.AddLane()
		for i, nl := range m.ordered() {
			if nl.ID == id {
				m.cursor = i
			}
		}
		m = m.changed("Added lane")
	case "x", "delete":
		if ok {
			m.store.RemoveLane(l.ID)
			if m.cursor >= len(ls)-1 && m.cursor > 0 {
				m.cursor--
			}
			m = m.changed("Removed " + l.Label)
		}
	case "o":
		next := diagram.Vertical
		if m.store.UI().LaneOrientation == diagram.Vertical {
			next = diagram.Horizontal
		}
		m.store.SetLaneOrientation(next)
		m.resize.SetOrientation(next)
		m = m.changed("Lanes are " + string(next))
	case "u", "ctrl+z":
		if m.history.Undo() {
			m = m.changed("Undone")
			m.cursor = min(m.cursor, max(len(m.ordered())-1, 0))
		}
	case "U", "ctrl+r":
		if m.history.Redo() {
			m = m.changed("Redone")
			m.cursor = min(m.cursor, max(len(m.ordered())-1, 0))
		}
	}
	return m, nil
}

// updateResize moves the synthetic pointer along the stacking axis. Enter
// keeps the size, Escape returns the pointer to where the drag started.
func (m laneEditor) updateResize(key tea.KeyMsg) laneEditor {
	var delta float64
	switch key.String() {
	case "+", "=", "down", "right", "j", "l":
		delta = resizeStep
	case "-", "_", "up", "left", "k", "h":
		delta = -resizeStep
	case "enter", "r":
		id := m.resize.LaneID()
		m.resize.Release()
		l, _ := m.store.Snapshot().Lane(id)
		return m.changed(fmt.Sprintf("Resized %s to %.0f", l.Label, l.Size))
	case "esc":
		m.resize.Move(diagram.Position{})
		m.resize.Release()
		m.status = "Resize cancelled"
		return m
	default:
		return m
	}

	if m.store.UI().LaneOrientation == diagram.Vertical {
		m.pointer.X += delta
	} else {
		m.pointer.Y += delta
	}
	m.resize.Move(m.pointer)
	m.dirty = true
	return m
}

func (m laneEditor) updateRename(key tea.KeyMsg) laneEditor {
	switch key.Type {
	case tea.KeyEnter:
		label, _ := m.rename.Commit()
		return m.changed("Renamed to " + label)
	case tea.KeyEsc:
		m.rename.Cancel()
		m.status = "Rename cancelled"
	case tea.KeyBackspace:
		r := []rune(m.rename.Draft())
		if len(r) > 0 {
			m.rename.SetDraft(string(r[:len(r)-1]))
		}
	case tea.KeyCtrlU:
		m.rename.SetDraft("")
	case tea.KeySpace:
		m.rename.SetDraft(m.rename.Draft() + " ")
	case tea.KeyRunes:
		m.rename.SetDraft(m.rename.Draft() + string(key.Runes))
	}
	return m
}

func (m laneEditor) View() string {
	var b strings.Builder

	ui := m.store.UI()
	b.WriteString(StyleTitle.Render("Lanes") + " " + StyleDim.Render(m.title+" · "+string(ui.LaneOrientation)))
	if m.dirty {
		b.WriteString(StyleWarning.Render(" *"))
	}
	b.WriteString("\n\n")

	ls := m.ordered()
	if len(ls) == 0 {
		b.WriteString(StyleDim.Render("  no lanes (a to add)") + "\n")
	}
	for i, l := range ls {
		cursor := "  "
		style := laneNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = laneCursorStyle
		}
		if !l.Visible {
			style = laneHiddenStyle
		}

		label := style.Render(fmt.Sprintf("%-20s", l.Label))
		if m.rename.Editing() && m.rename.LaneID() == l.ID {
			label = laneDraftStyle.Render(fmt.Sprintf("%-19s", m.rename.Draft())) + "▌"
		}
		bar := laneBarStyle.Render(strings.Repeat("█", int(l.Size/diagram.MinLaneSize*4)))
		size := fmt.Sprintf("%5.0f", l.Size)
		if m.resize.Active() && m.resize.LaneID() == l.ID {
			size = StyleHighlight.Render(size)
		}
		b.WriteString(cursor + label + " " + size + " " + bar + "\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(StyleDim.Render(m.status) + "\n")
	}
	b.WriteString(StyleDim.Render(m.help()))
	return b.String()
}

func (m laneEditor) help() string {
	switch {
	case m.rename.Editing():
		return "type to edit  ⏎ commit  esc cancel"
	case m.resize.Active():
		return "+/- resize  ⏎ done  esc cancel"
	}
	return "↑/↓ select  J/K move  ⏎ rename  r resize  v visible  a add  x remove  o orientation  u undo  s save  q quit"
}

// runLaneEditor opens ref in the interactive lane editor.
func (c *CLI) runLaneEditor(ctx context.Context, ref docRef) error {
	st, err := c.load(ctx, ref)
	if err != nil {
		return err
	}
	h := history.Attach(st)
	defer h.Detach()

	m := newLaneEditor(st, h, ref.String(), func(doc diagram.Document) error {
		return c.writeDoc(ctx, ref, doc)
	})
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(laneEditor); ok && fm.dirty {
		printWarning("Discarded unsaved lane changes")
	}
	return nil
}

// sortedLanes returns a copy of ls ordered by Order.
func sortedLanes(ls []diagram.Swimlane) []diagram.Swimlane {
	sorted := slices.Clone(ls)
	slices.SortStableFunc(sorted, func(a, b diagram.Swimlane) int { return a.Order - b.Order })
	return sorted
}

// swapped returns the ids of ls with positions i and j exchanged.
func swapped(ls []diagram.Swimlane, i, j int) []string {
	ids := make([]string, len(ls))
	for k, l := range ls {
		ids[k] = l.ID
	}
	ids[i], ids[j] = ids[j], ids[i]
	return ids
}
