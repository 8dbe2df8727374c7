package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/df07/go-progressive-pathtracer/pkg/loaders"
	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

//go:embed static/index.html
var static embed.FS

// Server exposes a running viewport over HTTP for live preview and tuning
type Server struct {
	viewport       *renderer.Viewport
	console        *Console
	echo           *echo.Echo
	logger         log.Logger
	streamInterval time.Duration

	mu      sync.Mutex
	sceneID string
}

// Options configures a new server
type Options struct {
	SceneID        string        // Preset the viewport starts with
	Console        *Console      // Log messages streamed to browsers, may be nil
	StreamInterval time.Duration // Delay between progress events, defaults to 500ms
}

// NewServer creates a web server for viewport
func NewServer(viewport *renderer.Viewport, opts Options) *Server {
	s := &Server{
		viewport:       viewport,
		console:        opts.Console,
		logger:         log.New("server"),
		streamInterval: opts.StreamInterval,
		sceneID:        opts.SceneID,
	}
	if s.streamInterval <= 0 {
		s.streamInterval = 500 * time.Millisecond
	}
	if s.console == nil {
		s.console = NewConsole(s.logger, 50)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(corsMiddleware)

	e.GET("/", s.handleIndex)

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/scenes", s.handleScenes)
	api.GET("/frame.png", s.handleFrame)
	api.GET("/status", s.handleStatus)
	api.GET("/stats", s.handleStats)
	api.GET("/inspect", s.handleInspect)
	api.GET("/stream", s.handleStream)
	api.POST("/settings", s.handleSettings)
	api.POST("/resolution", s.handleResolution)
	api.POST("/workers", s.handleWorkers)
	api.POST("/scene", s.handleScene)

	s.echo = e
	return s
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// ServeHTTP lets the server be mounted or tested as a plain handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.logger.Noticef("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for open ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// SceneID returns the preset currently loaded
func (s *Server) SceneID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneID
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}

func (s *Server) handleIndex(c echo.Context) error {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(c echo.Context) error {
	return c.JSON(http.StatusOK, scene.ListScenes())
}

// handleFrame returns the current frame as PNG, enlarged by the optional
// integer scale parameter
func (s *Server) handleFrame(c echo.Context) error {
	scale, err := parseIntParam(c.QueryParams(), "scale", 1, 1, 8)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	data, err := s.framePNG(scale)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, fmt.Sprintf("failed to encode frame: %v", err))
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", data)
}

func (s *Server) framePNG(scale int) ([]byte, error) {
	var img image.Image = s.viewport.Image()
	if scale > 1 {
		bounds := img.Bounds()
		img = loaders.Scale(img, bounds.Dx()*scale, bounds.Dy()*scale)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StatusResponse describes the viewport's progress and tunables
type StatusResponse struct {
	Scene       string                `json:"scene"`
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Samples     int                   `json:"samples"`
	Waiting     bool                  `json:"waiting"`
	Generation  uint64                `json:"generation"`
	Workers     int                   `json:"workers"`
	LiveWorkers int                   `json:"liveWorkers"`
	Config      renderer.RenderConfig `json:"config"`
	View        scene.View            `json:"view"`
}

func (s *Server) status() StatusResponse {
	camera := s.viewport.Camera()
	width, height := s.viewport.Resolution()
	return StatusResponse{
		Scene:       s.SceneID(),
		Width:       width,
		Height:      height,
		Samples:     s.viewport.CurrentSamples(),
		Waiting:     s.viewport.IsWaiting(),
		Generation:  s.viewport.Generation(),
		Workers:     s.viewport.WorkerCount(),
		LiveWorkers: s.viewport.LiveWorkers(),
		Config:      s.viewport.Config(),
		View:        camera.View(),
	}
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.status())
}

func (s *Server) handleStats(c echo.Context) error {
	return c.String(http.StatusOK, renderer.FormatStats(s.viewport.Stats()))
}

// SettingsRequest carries the tunables to change; omitted fields are kept
type SettingsRequest struct {
	MaxBounces  *int     `json:"maxBounces"`
	Bias        *float64 `json:"bias"`
	SampleCount *int     `json:"sampleCount"`
	MinSamples  *int     `json:"minSamples"`
	BasicRatio  *float64 `json:"basicRatio"`
	FillRatio   *float64 `json:"fillRatio"`
}

// handleSettings applies each provided tunable through the viewport setters,
// which clamp out-of-range values
func (s *Server) handleSettings(c echo.Context) error {
	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid settings: "+err.Error())
	}

	if req.MaxBounces != nil {
		s.viewport.SetMaxBounces(*req.MaxBounces)
	}
	if req.Bias != nil {
		s.viewport.SetBias(*req.Bias)
	}
	if req.SampleCount != nil {
		s.viewport.SetSampleCount(*req.SampleCount)
	}
	if req.MinSamples != nil {
		s.viewport.SetMinSamples(*req.MinSamples)
	}
	if req.BasicRatio != nil {
		s.viewport.SetBasicRatio(*req.BasicRatio)
	}
	if req.FillRatio != nil {
		s.viewport.SetFillRatio(*req.FillRatio)
	}

	return c.JSON(http.StatusOK, s.status())
}

// ResolutionRequest sets the render size
type ResolutionRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleResolution(c echo.Context) error {
	var req ResolutionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid resolution: "+err.Error())
	}
	if req.Width <= 10 || req.Height <= 10 || req.Width > 4096 || req.Height > 4096 {
		return errorJSON(c, http.StatusBadRequest,
			fmt.Sprintf("resolution must be between 11 and 4096 pixels, got %dx%d", req.Width, req.Height))
	}

	s.viewport.SetResolution(req.Width, req.Height)
	return c.JSON(http.StatusOK, s.status())
}

// WorkersRequest sets the worker count
type WorkersRequest struct {
	Count int `json:"count"`
}

func (s *Server) handleWorkers(c echo.Context) error {
	var req WorkersRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid worker count: "+err.Error())
	}
	if req.Count < 1 || req.Count > 256 {
		return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and 256, got %d", req.Count))
	}

	changed := s.viewport.SetWorkerCount(req.Count, false)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workers": s.viewport.WorkerCount(),
		"changed": changed,
	})
}

// SceneRequest switches to a preset
type SceneRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleScene(c echo.Context) error {
	var req SceneRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid scene request: "+err.Error())
	}

	sc, view, ok := scene.Load(req.ID)
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Unknown scene: "+req.ID)
	}

	s.viewport.SetScene(sc, renderer.NewCamera(view))
	s.mu.Lock()
	s.sceneID = req.ID
	s.mu.Unlock()
	s.console.Noticef("Switched to scene %s", req.ID)

	return c.JSON(http.StatusOK, s.status())
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
