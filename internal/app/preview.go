package app

import (
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// previewBuffer keeps the latest camera frame as JPEG while anyone watches.
type previewBuffer struct {
	mu      sync.Mutex
	viewers int
	jpeg    []byte
	seq     uint64
}

// SubscribePreview starts JPEG encoding of camera frames. Call the returned
// function to unsubscribe.
func (a *App) SubscribePreview() func() {
	p := &a.preview
	p.mu.Lock()
	p.viewers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.viewers--
			if p.viewers == 0 {
				p.jpeg = nil
			}
		})
	}
}

// Preview returns the latest JPEG frame and its sequence number. The
// sequence is zero until a frame has been encoded.
func (a *App) Preview() ([]byte, uint64) {
	p := &a.preview
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}

func (a *App) publishPreview(frame *gocv.Mat) {
	p := &a.preview
	p.mu.Lock()
	watching := p.viewers > 0
	p.mu.Unlock()
	if !watching {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		a.logger.Debug("encode preview", zap.Error(err))
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.viewers > 0 {
		p.jpeg = data
		p.seq++
	}
}
