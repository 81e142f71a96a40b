package server

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/particlehands/internal/app"
	"github.com/ayusman/particlehands/internal/field"
	"github.com/ayusman/particlehands/internal/gesture"
)

// ErrShortFrame is returned when decoding a truncated frame message.
var ErrShortFrame = errors.New("frame message truncated")

// FrameHeader is the JSON part of a frame message.
type FrameHeader struct {
	RunID  string         `json:"run_id"`
	Sample gesture.Sample `json:"sample"`
	Status field.Status   `json:"status"`
}

// EncodeFrame lays out a frame as a binary WebSocket message: a little-endian
// uint32 header length, the JSON header, then Count xyz positions followed by
// Count rgb colors as little-endian float32.
func EncodeFrame(f app.Frame) ([]byte, error) {
	header, err := json.Marshal(FrameHeader{
		RunID:  f.RunID,
		Sample: f.Sample,
		Status: f.Snapshot.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("encode frame header: %w", err)
	}

	size := 4 + len(header) + 4*(len(f.Snapshot.Positions)+len(f.Snapshot.Colors))
	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(header)))
	buf = append(buf, header...)
	for _, v := range f.Snapshot.Positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range f.Snapshot.Colors {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf, nil
}

// DecodeFrame parses a message written by EncodeFrame.
func DecodeFrame(data []byte) (FrameHeader, []float32, []float32, error) {
	var h FrameHeader
	if len(data) < 4 {
		return h, nil, nil, ErrShortFrame
	}
	n := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) < n {
		return h, nil, nil, ErrShortFrame
	}
	if err := json.Unmarshal(data[:n], &h); err != nil {
		return h, nil, nil, fmt.Errorf("decode frame header: %w", err)
	}
	data = data[n:]

	count := 3 * h.Status.Count
	if len(data) < 8*count {
		return h, nil, nil, ErrShortFrame
	}
	floats := make([]float32, 2*count)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return h, floats[:count], floats[count:], nil
}
