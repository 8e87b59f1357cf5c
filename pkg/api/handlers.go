package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	"github.com/matzehuels/flowlane/pkg/io"
	"github.com/matzehuels/flowlane/pkg/lanes"
	"github.com/matzehuels/flowlane/pkg/render/dot"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

// created is the response to operations that mint an id.
type created struct {
	ID       string         `json:"id"`
	Snapshot store.Snapshot `json:"snapshot"`
}

func (s *Server) snapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// =============================================================================
// Reads
// =============================================================================

func (s *Server) getSnapshot(w http.ResponseWriter, _ *http.Request) { s.snapshot(w) }

func (s *Server) getGuardrails(w http.ResponseWriter, _ *http.Request) {
	issues := s.store.Guardrails()
	warnings, errs := guardrail.Counts(issues)
	writeJSON(w, http.StatusOK, map[string]any{
		"issues":   issues,
		"warnings": warnings,
		"errors":   errs,
	})
}

func (s *Server) getSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"kinds":      schema.Kinds(),
		"rails":      schema.Rails(),
		"speeds":     schema.Speeds(),
		"directions": schema.Directions(),
		"nodeFields": schema.NodeFields(),
		"edgeFields": schema.EdgeFields(),
	})
}

func (s *Server) getRender(w http.ResponseWriter, r *http.Request) {
	doc := s.store.ExportSnapshot()
	src := dot.ToDOT(doc, dot.OptionsFromUI(doc.UI))

	switch format := r.URL.Query().Get("format"); format {
	case "", "svg":
		svg, hit, err := dot.CachedSVG(r.Context(), s.renders, src)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		if hit {
			w.Header().Set("X-Render-Cache", "hit")
		}
		w.Write(svg)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.Write([]byte(src))
	default:
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use svg or dot)", format))
	}
}

func (s *Server) getBands(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()
	bands := lanes.Compute(snap.Lanes, snap.UI.LaneOrientation)
	handles := lanes.Handles(bands)
	if handles == nil {
		handles = []lanes.Handle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orientation": snap.UI.LaneOrientation,
		"bands":       bands,
		"handles":     handles,
	})
}

// =============================================================================
// Document
// =============================================================================

func (s *Server) getDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ExportSnapshot())
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadDocument(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	s.store.Hydrate(*doc)
	s.snapshot(w)
}

func (s *Server) resetDocument(w http.ResponseWriter, _ *http.Request) {
	s.store.ResetDocument()
	s.snapshot(w)
}

// =============================================================================
// Nodes
// =============================================================================

type addNodeRequest struct {
	Kind     string           `json:"kind"`
	Position diagram.Position `json:"position"`
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	kind, ok := schema.ParseKind(req.Kind)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeInvalidKind, "unknown node kind %q", req.Kind))
		return
	}
	id := s.store.AddNode(kind, req.Position)
	writeJSON(w, http.StatusCreated, created{ID: id, Snapshot: s.store.Snapshot()})
}

// requireNode writes a 404 and returns false when the node does not exist.
func (s *Server) requireNode(w http.ResponseWriter, id string) bool {
	if _, ok := s.store.Snapshot().Node(id); !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return false
	}
	return true
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch store.NodePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if !s.requireNode(w, id) {
		return
	}
	s.store.UpdateNodeAttributes(id, patch)
	s.snapshot(w)
}

func (s *Server) resetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.requireNode(w, id) {
		return
	}
	s.store.ResetNodeAttributes(id)
	s.snapshot(w)
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var pos diagram.Position
	if err := decode(w, r, &pos); err != nil {
		writeError(w, err)
		return
	}
	if !s.requireNode(w, id) {
		return
	}
	s.store.MoveNode(id, pos)
	s.snapshot(w)
}

// =============================================================================
// Edges
// =============================================================================

type addEdgeRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, ok := s.store.AddConnection(req.Source, req.Target, req.SourceHandle, req.TargetHandle)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeRejected, "connection rejected: self-loop or unknown node"))
		return
	}
	writeJSON(w, http.StatusCreated, created{ID: id, Snapshot: s.store.Snapshot()})
}

func (s *Server) requireEdge(w http.ResponseWriter, id string) bool {
	if _, ok := s.store.Snapshot().Edge(id); !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "edge %q not found", id))
		return false
	}
	return true
}

func (s *Server) updateEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch store.EdgePatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if !s.requireEdge(w, id) {
		return
	}
	s.store.UpdateEdgeAttributes(id, patch)
	s.snapshot(w)
}

func (s *Server) resetEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.requireEdge(w, id) {
		return
	}
	s.store.ResetEdgeAttributes(id)
	s.snapshot(w)
}

// =============================================================================
// Selection
// =============================================================================

// selectionRequest selects one node or edge by id, sets marquee flags when
// nodes or edges are given, or clears the selection when empty.
type selectionRequest struct {
	NodeID string    `json:"nodeId"`
	EdgeID string    `json:"edgeId"`
	Nodes  *[]string `json:"nodes"`
	Edges  *[]string `json:"edges"`
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case req.NodeID != "":
		if !s.requireNode(w, req.NodeID) {
			return
		}
		s.store.SelectNode(req.NodeID)
	case req.EdgeID != "":
		if !s.requireEdge(w, req.EdgeID) {
			return
		}
		s.store.SelectEdge(req.EdgeID)
	case req.Nodes != nil || req.Edges != nil:
		var nodes, edges []string
		if req.Nodes != nil {
			nodes = *req.Nodes
		}
		if req.Edges != nil {
			edges = *req.Edges
		}
		s.store.SetElementsSelected(nodes, edges)
	default:
		s.store.ClearSelection()
	}
	s.snapshot(w)
}

func (s *Server) deleteSelection(w http.ResponseWriter, _ *http.Request) {
	s.store.DeleteSelection()
	s.snapshot(w)
}

func (s *Server) duplicateSelection(w http.ResponseWriter, _ *http.Request) {
	s.store.DuplicateSelection()
	s.snapshot(w)
}

// =============================================================================
// Lanes
// =============================================================================

func (s *Server) addLane(w http.ResponseWriter, _ *http.Request) {
	id := s.store.AddLane()
	writeJSON(w, http.StatusCreated, created{ID: id, Snapshot: s.store.Snapshot()})
}

type laneRequest struct {
	Label   *string  `json:"label"`
	Visible *bool    `json:"visible"`
	Size    *float64 `json:"size"`
}

func (s *Server) requireLane(w http.ResponseWriter, id string) bool {
	if _, ok := s.store.Snapshot().Lane(id); !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "lane %q not found", id))
		return false
	}
	return true
}

func (s *Server) updateLane(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req laneRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !s.requireLane(w, id) {
		return
	}
	if req.Label != nil {
		s.store.RenameLane(id, *req.Label)
	}
	if req.Visible != nil {
		s.store.SetLaneVisible(id, *req.Visible)
	}
	if req.Size != nil {
		s.store.ResizeLane(id, *req.Size)
	}
	s.snapshot(w)
}

func (s *Server) removeLane(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.requireLane(w, id) {
		return
	}
	s.store.RemoveLane(id)
	s.snapshot(w)
}

func (s *Server) reorderLanes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.store.ReorderLanes(req.IDs)
	s.snapshot(w)
}

func (s *Server) setOrientation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orientation diagram.Orientation `json:"orientation"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !req.Orientation.Valid() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "orientation must be horizontal or vertical, got %q", req.Orientation))
		return
	}
	s.store.SetLaneOrientation(req.Orientation)
	s.snapshot(w)
}

// =============================================================================
// UI and history
// =============================================================================

func (s *Server) updateUI(w http.ResponseWriter, r *http.Request) {
	var patch store.UIPatch
	if err := decode(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if patch.Background != nil && !diagram.ValidBackgrounds[*patch.Background] {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unsupported background %q", *patch.Background))
		return
	}
	s.store.UpdateUI(patch)
	s.snapshot(w)
}

func (s *Server) undo(w http.ResponseWriter, _ *http.Request) {
	if s.history == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "history is not enabled"))
		return
	}
	s.history.Undo()
	s.snapshot(w)
}

func (s *Server) redo(w http.ResponseWriter, _ *http.Request) {
	if s.history == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "history is not enabled"))
		return
	}
	s.history.Redo()
	s.snapshot(w)
}
