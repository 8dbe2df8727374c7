package server

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func init() {
	log.Discard()
}

func newTestServer(t *testing.T) (*Server, *renderer.Viewport) {
	t.Helper()
	sc, view := scene.NewQuadLightScene()
	v := renderer.NewViewport(sc, renderer.NewCamera(view), renderer.ViewportOptions{
		Workers: 1,
		Seed:    3,
		Config:  renderer.DefaultRenderConfig(),
	})
	t.Cleanup(v.Close)
	v.Update()

	srv := NewServer(v, Options{SceneID: "quad-light", StreamInterval: 10 * time.Millisecond})
	return srv, v
}

func request(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) StatusResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	return status
}

func TestServer_HealthAndIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := request(t, srv, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = request(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Progressive Path Tracer")
}

func TestServer_Scenes(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := request(t, srv, http.MethodGet, "/api/scenes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var scenes []scene.SceneInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scenes))
	ids := map[string]bool{}
	for _, s := range scenes {
		ids[s.ID] = true
	}
	assert.True(t, ids["cornell"])
	assert.True(t, ids["quad-light"])
}

func TestServer_Frame(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		expectCode int
		expectSize int
	}{
		{"native", "", http.StatusOK, 64},
		{"scaled", "?scale=3", http.StatusOK, 192},
		{"scale too large", "?scale=9", http.StatusBadRequest, 0},
		{"scale not a number", "?scale=big", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(t, srv, http.MethodGet, "/api/frame.png"+tt.query, "")
			require.Equal(t, tt.expectCode, rec.Code, rec.Body.String())
			if tt.expectCode != http.StatusOK {
				return
			}
			assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
			img, err := png.Decode(rec.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.expectSize, img.Bounds().Dx())
			assert.Equal(t, tt.expectSize, img.Bounds().Dy())
		})
	}
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t)

	status := decodeStatus(t, request(t, srv, http.MethodGet, "/api/status", ""))
	assert.Equal(t, "quad-light", status.Scene)
	assert.Equal(t, 64, status.Width)
	assert.Equal(t, 64, status.Height)
	assert.Equal(t, 1, status.Workers)
	assert.Equal(t, renderer.DefaultRenderConfig(), status.Config)
	assert.Equal(t, 40.0, status.View.VFov)
}

func TestServer_Settings(t *testing.T) {
	srv, v := newTestServer(t)
	generation := v.Generation()

	status := decodeStatus(t, request(t, srv, http.MethodPost, "/api/settings", `{"maxBounces": -4, "basicRatio": 0.5, "fillRatio": 7}`))
	assert.Equal(t, 0, status.Config.MaxBounces)
	assert.Equal(t, 0.5, status.Config.BasicRatio)
	assert.Equal(t, 1.0, status.Config.FillRatio)
	assert.Equal(t, 1, status.Config.SampleCount, "omitted fields are kept")
	assert.Greater(t, v.Generation(), generation)

	rec := request(t, srv, http.MethodPost, "/api/settings", `{"maxBounces": "many"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Resolution(t *testing.T) {
	srv, v := newTestServer(t)

	status := decodeStatus(t, request(t, srv, http.MethodPost, "/api/resolution", `{"width": 32, "height": 24}`))
	assert.Equal(t, 32, status.Width)
	assert.Equal(t, 24, status.Height)

	rec := request(t, srv, http.MethodPost, "/api/resolution", `{"width": 5, "height": 24}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	width, height := v.Resolution()
	assert.Equal(t, 32, width)
	assert.Equal(t, 24, height)
}

func TestServer_Workers(t *testing.T) {
	srv, v := newTestServer(t)

	rec := request(t, srv, http.MethodPost, "/api/workers", `{"count": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"workers": 3, "changed": true}`, rec.Body.String())
	assert.Equal(t, 3, v.WorkerCount())

	rec = request(t, srv, http.MethodPost, "/api/workers", `{"count": 3}`)
	assert.JSONEq(t, `{"workers": 3, "changed": false}`, rec.Body.String())

	rec = request(t, srv, http.MethodPost, "/api/workers", `{"count": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 3, v.WorkerCount())
}

func TestServer_SceneSwitch(t *testing.T) {
	srv, v := newTestServer(t)
	before := v.Scene()

	status := decodeStatus(t, request(t, srv, http.MethodPost, "/api/scene", `{"id": "cornell"}`))
	assert.Equal(t, "cornell", status.Scene)
	assert.Equal(t, 300, status.Width)
	assert.NotSame(t, before, v.Scene())
	assert.True(t, status.Waiting)

	rec := request(t, srv, http.MethodPost, "/api/scene", `{"id": "teapot"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "cornell", srv.SceneID())
}

func TestServer_Inspect(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := request(t, srv, http.MethodGet, "/api/inspect?x=32&y=32", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Hit)
	assert.Equal(t, "Panel", resp.Object)
	assert.Equal(t, "Quad", resp.GeometryType)
	assert.Equal(t, "Emissive", resp.MaterialType)
	assert.InDelta(t, -1, resp.Point[2], 1e-9)
	assert.InDelta(t, 2, resp.Distance, 0.05)

	for _, query := range []string{"?x=64&y=0", "?x=1", "?x=a&y=1"} {
		rec := request(t, srv, http.MethodGet, "/api/inspect"+query, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestServer_Stats(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := request(t, srv, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resolution")
	assert.Contains(t, rec.Body.String(), "64x64")
}

func TestServer_Stream(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		srv.console.Warningf("hello from the viewport")
	}()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: progress")
	assert.Contains(t, body, "event: console")
	assert.Contains(t, body, "hello from the viewport")
}
