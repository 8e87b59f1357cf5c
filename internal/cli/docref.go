package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/io"
	"github.com/matzehuels/flowlane/pkg/store"
	"github.com/matzehuels/flowlane/pkg/workspace"
)

// docRef identifies a document either by file path or by workspace name.
// Exactly one of path and name is set.
type docRef struct {
	path string
	name string
}

// parseDocRef classifies arg. A .json suffix or a path separator makes it a
// file; everything else is a workspace name.
func parseDocRef(arg string) docRef {
	if strings.HasSuffix(strings.ToLower(arg), ".json") || strings.ContainsRune(arg, '/') || strings.ContainsRune(arg, filepath.Separator) {
		return docRef{path: arg}
	}
	return docRef{name: arg}
}

func (r docRef) String() string {
	if r.path != "" {
		return r.path
	}
	return r.name
}

// workspace opens the configured workspace directory.
func (c *CLI) workspace() (*workspace.Workspace, error) {
	dir := c.cfg.Workspace.Dir
	if dir == "" {
		d, err := workspace.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("workspace dir: %w", err)
		}
		dir = d
	}
	return workspace.Open(dir)
}

// location returns the file path behind ref.
func (c *CLI) location(ref docRef) (string, error) {
	if ref.path != "" {
		if err := errors.ValidatePath(ref.path); err != nil {
			return "", err
		}
		return ref.path, nil
	}
	ws, err := c.workspace()
	if err != nil {
		return "", err
	}
	return ws.Path(ref.name)
}

func (c *CLI) exists(ref docRef) bool {
	path, err := c.location(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *CLI) readDoc(ctx context.Context, ref docRef) (*diagram.Document, error) {
	if ref.path != "" {
		if err := errors.ValidatePath(ref.path); err != nil {
			return nil, err
		}
		return io.ImportJSON(ctx, ref.path)
	}
	ws, err := c.workspace()
	if err != nil {
		return nil, err
	}
	return ws.Get(ctx, ref.name)
}

func (c *CLI) writeDoc(ctx context.Context, ref docRef, doc diagram.Document) error {
	if ref.path != "" {
		if err := errors.ValidatePath(ref.path); err != nil {
			return err
		}
		return io.ExportJSON(ctx, doc, ref.path)
	}
	ws, err := c.workspace()
	if err != nil {
		return err
	}
	return ws.Put(ctx, ref.name, doc)
}

// newStore returns an empty store wired to the CLI logger.
func (c *CLI) newStore() *store.Store {
	return store.New(store.WithLogger(c.Logger))
}

// load reads ref into a fresh store.
func (c *CLI) load(ctx context.Context, ref docRef) (*store.Store, error) {
	doc, err := c.readDoc(ctx, ref)
	if err != nil {
		return nil, err
	}
	st := c.newStore()
	st.Hydrate(*doc)
	return st, nil
}

// edit loads ref, runs fn against the store and saves the result. Selection
// is transient on the command line and is cleared before saving.
func (c *CLI) edit(ctx context.Context, arg string, fn func(*store.Store) error) error {
	ref := parseDocRef(arg)
	st, err := c.load(ctx, ref)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	st.ClearSelection()
	return c.writeDoc(ctx, ref, st.ExportSnapshot())
}

// =============================================================================
// Element lookup
// =============================================================================

// findNode resolves ref to a node id. It matches an exact id, then a unique
// id prefix, then a unique display name (case-insensitive).
func findNode(snap store.Snapshot, ref string) (string, error) {
	ids := make([]string, len(snap.Nodes))
	names := make([]string, len(snap.Nodes))
	for i, n := range snap.Nodes {
		ids[i] = n.ID
		names[i] = n.Attributes.DisplayName
	}
	return lookup("node", ref, ids, names)
}

// findEdge resolves ref to an edge id by exact id or unique id prefix.
func findEdge(snap store.Snapshot, ref string) (string, error) {
	ids := make([]string, len(snap.Edges))
	for i, e := range snap.Edges {
		ids[i] = e.ID
	}
	return lookup("edge", ref, ids, nil)
}

// findLane resolves ref to a lane id by exact id, unique id prefix or
// unique label.
func findLane(snap store.Snapshot, ref string) (string, error) {
	ids := make([]string, len(snap.Lanes))
	labels := make([]string, len(snap.Lanes))
	for i, l := range snap.Lanes {
		ids[i] = l.ID
		labels[i] = l.Label
	}
	return lookup("lane", ref, ids, labels)
}

func lookup(what, ref string, ids, names []string) (string, error) {
	if ref == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s reference cannot be empty", what)
	}
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}

	match := func(pred func(i int) bool) (string, error) {
		var found []string
		for i, id := range ids {
			if pred(i) {
				found = append(found, id)
			}
		}
		switch len(found) {
		case 0:
			return "", nil
		case 1:
			return found[0], nil
		default:
			return "", errors.New(errors.ErrCodeInvalidInput, "%s %q is ambiguous (%d matches)", what, ref, len(found))
		}
	}

	if id, err := match(func(i int) bool { return strings.HasPrefix(ids[i], ref) }); id != "" || err != nil {
		return id, err
	}
	if names != nil {
		if id, err := match(func(i int) bool { return strings.EqualFold(names[i], ref) }); id != "" || err != nil {
			return id, err
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "%s %q not found", what, ref)
}
