package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/particlehands/internal/app"
	"github.com/ayusman/particlehands/internal/field"
	"github.com/ayusman/particlehands/internal/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	state      app.State
	shapeErr   error
	shapes     []string
	explosions int
}

func (c *fakeController) State() app.State { return c.state }

func (c *fakeController) SetShape(name string) error {
	c.shapes = append(c.shapes, name)
	c.state.Field.Shape = name
	_, registered := shape.Parse(name)
	c.state.Field.Text = !registered && c.shapeErr == nil
	return c.shapeErr
}

func (c *fakeController) TriggerExplosion() {
	c.explosions++
	c.state.Field.Exploding = true
}

func serve(h http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStateHandler(t *testing.T) {
	ctl := &fakeController{state: app.State{RunID: "run-1", Frames: 42, Field: field.Status{Count: 10, Shape: "heart"}}}
	h := NewStateHandler(ctl)

	rec := serve(h, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		RunID  string `json:"run_id"`
		Frames uint64 `json:"frames"`
		Field  struct {
			Count int    `json:"count"`
			Shape string `json:"shape"`
		} `json:"field"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, uint64(42), got.Frames)
	assert.Equal(t, 10, got.Field.Count)
	assert.Equal(t, "heart", got.Field.Shape)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "").Code)
}

func TestShapesHandler(t *testing.T) {
	rec := serve(ShapesHandler{}, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got shapesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Shapes, len(shape.Kinds()))
	assert.Equal(t, shape.PaletteNames(), got.Palettes)

	byName := map[string]shapeInfo{}
	for _, s := range got.Shapes {
		byName[s.Name] = s
	}
	assert.Equal(t, shapeInfo{Name: "heart", Parametric: true, Palette: "love"}, byName["heart"])
	assert.False(t, byName["text"].Parametric)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(ShapesHandler{}, http.MethodPost, "").Code)
}

func TestShapeHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		shapeErr   error
		wantStatus int
		wantShape  string
		wantText   bool
		wantFall   bool
	}{
		{name: "registered shape", method: http.MethodPost, body: `{"name":"heart"}`, wantStatus: http.StatusOK, wantShape: "heart"},
		{name: "free text", method: http.MethodPost, body: `{"name":" HI "}`, wantStatus: http.StatusOK, wantShape: "HI", wantText: true},
		{name: "fallback", method: http.MethodPost, body: `{"name":"..."}`, shapeErr: errors.New("raster has no lit pixels"), wantStatus: http.StatusOK, wantShape: "...", wantFall: true},
		{name: "empty name", method: http.MethodPost, body: `{"name":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, body: `{`, wantStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{shapeErr: tt.shapeErr}
			rec := serve(NewShapeHandler(ctl), tt.method, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Empty(t, ctl.shapes)
				return
			}

			var got shapeResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, shapeResponse{Shape: tt.wantShape, Text: tt.wantText, Fallback: tt.wantFall}, got)
			assert.Equal(t, []string{tt.wantShape}, ctl.shapes)
		})
	}
}

func TestExplodeHandler(t *testing.T) {
	ctl := &fakeController{}
	h := NewExplodeHandler(ctl)

	rec := serve(h, http.MethodPost, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var got explodeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Exploding)
	assert.Equal(t, 1, ctl.explosions)

	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "").Code)
	assert.Equal(t, 1, ctl.explosions)
}
