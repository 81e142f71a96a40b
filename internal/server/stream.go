package server

import (
	"fmt"
	"net/http"
	"time"
)

// previewInterval paces the MJPEG stream at about 15 FPS.
const previewInterval = 66 * time.Millisecond

// Previewer supplies encoded camera frames.
type Previewer interface {
	SubscribePreview() func()
	Preview() ([]byte, uint64)
}

// StreamHandler serves the camera preview as MJPEG.
type StreamHandler struct {
	source Previewer
}

// NewStreamHandler creates a new StreamHandler over source.
func NewStreamHandler(source Previewer) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames until the client goes away. Frames that
// have not changed since the last write are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	unsubscribe := h.source.SubscribePreview()
	defer unsubscribe()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(previewInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, seq := h.source.Preview()
		if seq == last || len(jpeg) == 0 {
			continue
		}
		last = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
