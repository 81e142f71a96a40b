// Package api provides the HTTP control handlers for particlehands.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/particlehands/internal/app"
	"github.com/ayusman/particlehands/internal/shape"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 10

// Controller is the part of the app the handlers drive.
type Controller interface {
	State() app.State
	SetShape(name string) error
	TriggerExplosion()
}

type errorResponse struct {
	Error string `json:"error"`
}

type shapeRequest struct {
	Name string `json:"name"`
}

type shapeResponse struct {
	Shape    string `json:"shape"`
	Text     bool   `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

type shapeInfo struct {
	Name       string `json:"name"`
	Parametric bool   `json:"parametric"`
	Palette    string `json:"palette"`
}

type shapesResponse struct {
	Shapes   []shapeInfo `json:"shapes"`
	Palettes []string    `json:"palettes"`
}

type explodeResponse struct {
	Exploding bool    `json:"exploding"`
	Phase     float64 `json:"phase"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// StateHandler serves GET /api/state.
type StateHandler struct {
	ctl Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(ctl Controller) *StateHandler {
	return &StateHandler{ctl: ctl}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.State())
}

// ShapesHandler serves GET /api/shapes, the registered shapes and palettes.
type ShapesHandler struct{}

func (ShapesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	kinds := shape.Kinds()
	resp := shapesResponse{
		Shapes:   make([]shapeInfo, 0, len(kinds)),
		Palettes: shape.PaletteNames(),
	}
	for _, k := range kinds {
		resp.Shapes = append(resp.Shapes, shapeInfo{
			Name:       k.String(),
			Parametric: k.Parametric(),
			Palette:    shape.PaletteNameFor(k.String()),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ShapeHandler serves POST /api/shape. Names that are not registered shapes
// are shown as text.
type ShapeHandler struct {
	ctl Controller
}

// NewShapeHandler creates a ShapeHandler.
func NewShapeHandler(ctl Controller) *ShapeHandler {
	return &ShapeHandler{ctl: ctl}
}

func (h *ShapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req shapeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	// A failed shape change leaves the field on the sphere.
	err := h.ctl.SetShape(req.Name)
	st := h.ctl.State()
	writeJSON(w, http.StatusOK, shapeResponse{Shape: st.Field.Shape, Text: st.Field.Text, Fallback: err != nil})
}

// ExplodeHandler serves POST /api/explode. An explosion already running is
// left alone.
type ExplodeHandler struct {
	ctl Controller
}

// NewExplodeHandler creates an ExplodeHandler.
func NewExplodeHandler(ctl Controller) *ExplodeHandler {
	return &ExplodeHandler{ctl: ctl}
}

func (h *ExplodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.ctl.TriggerExplosion()
	st := h.ctl.State().Field
	writeJSON(w, http.StatusAccepted, explodeResponse{Exploding: st.Exploding, Phase: st.Phase})
}
