package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	Scene      string `json:"scene"`
	Samples    int    `json:"samples"`
	Generation uint64 `json:"generation"`
	Waiting    bool   `json:"waiting"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG
	ElapsedMs  int64  `json:"elapsedMs"`
}

// handleStream pushes progress and console events until the client leaves.
// A frame is only encoded when new samples arrived since the last event.
func (s *Server) handleStream(c echo.Context) error {
	w := c.Response()
	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	consoleChan, unsubscribe := s.console.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	startTime := time.Now()
	lastSamples, lastGeneration := -1, uint64(0)

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return nil

		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Errorf("Error marshaling console message: %v", err)
				continue
			}
			if err := writeSSEEvent(w, "console", string(data)); err != nil {
				return nil
			}

		case <-ticker.C:
			samples, generation := s.viewport.CurrentSamples(), s.viewport.Generation()
			if samples == lastSamples && generation == lastGeneration {
				continue
			}
			lastSamples, lastGeneration = samples, generation

			frame, err := s.framePNG(1)
			if err != nil {
				s.logger.Errorf("Failed to encode frame: %v", err)
				continue
			}
			update := ProgressUpdate{
				Scene:      s.SceneID(),
				Samples:    samples,
				Generation: generation,
				Waiting:    s.viewport.IsWaiting(),
				ImageData:  base64.StdEncoding.EncodeToString(frame),
				ElapsedMs:  time.Since(startTime).Milliseconds(),
			}
			data, err := json.Marshal(update)
			if err != nil {
				s.logger.Errorf("Error marshaling progress: %v", err)
				continue
			}
			if err := writeSSEEvent(w, "progress", string(data)); err != nil {
				return nil
			}
		}
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w *echo.Response) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSEEvent writes one event and flushes it to the client
func writeSSEEvent(w *echo.Response, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
