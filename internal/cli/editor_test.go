package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/history"
	"github.com/matzehuels/flowlane/pkg/store"
)

type editorFixture struct {
	t     *testing.T
	st    *store.Store
	m     laneEditor
	saved []diagram.Document
	cmd   tea.Cmd
}

func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	st := store.New()
	st.Hydrate(diagram.EmptyDocument(time.Now()))
	h := history.Attach(st)
	t.Cleanup(h.Detach)

	f := &editorFixture{t: t, st: st}
	f.m = newLaneEditor(st, h, "flow", func(doc diagram.Document) error {
		f.saved = append(f.saved, doc)
		return nil
	})
	return f
}

// keyMsg turns a key name into the message bubbletea would deliver.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (f *editorFixture) press(keys ...string) {
	f.t.Helper()
	for _, k := range keys {
		next, cmd := f.m.Update(keyMsg(k))
		f.m = next.(laneEditor)
		f.cmd = cmd
	}
}

func (f *editorFixture) lane(id string) diagram.Swimlane {
	f.t.Helper()
	l, ok := f.st.Snapshot().Lane(id)
	if !ok {
		f.t.Fatalf("lane %s missing", id)
	}
	return l
}

func (f *editorFixture) quit() bool {
	if f.cmd == nil {
		return false
	}
	_, ok := f.cmd().(tea.QuitMsg)
	return ok
}

func TestLaneEditorCursor(t *testing.T) {
	f := newEditorFixture(t)
	f.press("j", "j", "j")
	if f.m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", f.m.cursor)
	}
	f.press("k")
	if l, _ := f.m.current(); l.ID != "lane-program" {
		t.Errorf("current = %s", l.ID)
	}
}

func TestLaneEditorRename(t *testing.T) {
	f := newEditorFixture(t)
	f.press("enter", "ctrl+u", "C", "a", "r", "d", " ", "o", "p", "s", "backspace", "enter")
	if got := f.lane("lane-customer").Label; got != "Card op" {
		t.Errorf("label = %q", got)
	}
	if !f.m.dirty {
		t.Error("rename did not mark the editor dirty")
	}

	f.press("enter", "X", "esc")
	if got := f.lane("lane-customer").Label; got != "Card op" {
		t.Errorf("cancelled rename wrote %q", got)
	}
	if f.m.rename.Editing() {
		t.Error("still editing after esc")
	}
}

func TestLaneEditorResize(t *testing.T) {
	f := newEditorFixture(t)
	f.press("r", "+", "+", "+", "+", "enter")
	if got := f.lane("lane-customer").Size; got != diagram.DefaultLaneSize+40 {
		t.Fatalf("size = %v", got)
	}
	if f.m.resize.Active() {
		t.Error("drag still active after enter")
	}

	// Every step is its own history entry.
	f.press("u")
	if got := f.lane("lane-customer").Size; got != diagram.DefaultLaneSize+30 {
		t.Errorf("size after undo = %v", got)
	}
	f.press("U")
	if got := f.lane("lane-customer").Size; got != diagram.DefaultLaneSize+40 {
		t.Errorf("size after redo = %v", got)
	}

	f.press("j", "r", "-", "-", "esc")
	if got := f.lane("lane-program").Size; got != diagram.DefaultLaneSize {
		t.Errorf("cancelled resize left size %v", got)
	}

	f.press("r")
	for range 20 {
		f.press("-")
	}
	f.press("enter")
	if got := f.lane("lane-program").Size; got != diagram.MinLaneSize {
		t.Errorf("size = %v, want clamped to %v", got, diagram.MinLaneSize)
	}
}

func TestLaneEditorVerticalResize(t *testing.T) {
	f := newEditorFixture(t)
	f.press("o")
	if f.st.UI().LaneOrientation != diagram.Vertical {
		t.Fatal("orientation not toggled")
	}
	f.press("r", "l", "enter")
	if got := f.lane("lane-customer").Size; got != diagram.DefaultLaneSize+resizeStep {
		t.Errorf("size = %v", got)
	}
}

func TestLaneEditorReorderAndVisibility(t *testing.T) {
	f := newEditorFixture(t)
	f.press("J")
	if got := f.lane("lane-customer").Order; got != 1 {
		t.Errorf("order = %d", got)
	}
	if f.m.cursor != 1 {
		t.Errorf("cursor = %d, want to follow the lane", f.m.cursor)
	}

	f.press(" ")
	if f.lane("lane-customer").Visible {
		t.Error("space did not hide the lane")
	}
	if !strings.Contains(f.m.View(), "Customer") {
		t.Error("hidden lanes should still be listed")
	}
}

func TestLaneEditorAddRemove(t *testing.T) {
	f := newEditorFixture(t)
	f.press("a")
	if n := len(f.st.Snapshot().Lanes); n != 4 {
		t.Fatalf("lanes = %d", n)
	}
	if f.m.cursor != 3 {
		t.Errorf("cursor = %d, want on the new lane", f.m.cursor)
	}
	f.press("x")
	if n := len(f.st.Snapshot().Lanes); n != 3 {
		t.Errorf("lanes after remove = %d", n)
	}
	if f.m.cursor != 2 {
		t.Errorf("cursor = %d after removing the last lane", f.m.cursor)
	}
}

func TestLaneEditorSaveAndQuit(t *testing.T) {
	f := newEditorFixture(t)
	f.press("q")
	if !f.quit() {
		t.Fatal("clean editor did not quit on q")
	}

	f = newEditorFixture(t)
	f.press("v", "q")
	if f.quit() {
		t.Fatal("dirty editor quit without a warning")
	}
	if !strings.Contains(f.m.status, "Unsaved") {
		t.Errorf("status = %q", f.m.status)
	}

	f.press("s")
	if len(f.saved) != 1 || f.m.dirty {
		t.Fatalf("saved = %d, dirty = %v", len(f.saved), f.m.dirty)
	}
	if f.saved[0].Lanes[0].Visible {
		t.Error("saved document lost the visibility change")
	}
	f.press("q")
	if !f.quit() {
		t.Error("saved editor did not quit")
	}
}
