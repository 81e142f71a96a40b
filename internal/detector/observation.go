package detector

import (
	"sync"
	"time"
)

// Observation is the latest completed detection result.
type Observation struct {
	// Seq increases by one on every Publish. Zero means nothing was published yet.
	Seq   uint64
	Hands []HandLandmarks
	At    time.Time
}

// Mailbox is a single-slot handoff between an independently paced detector
// and the frame loop. Publish overwrites the slot; Poll never blocks.
//
// A failed detection is simply not published, so the frame loop keeps
// reusing the previous observation.
type Mailbox struct {
	mu  sync.Mutex
	obs Observation
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Publish stores hands as the latest observation and returns its sequence number.
func (m *Mailbox) Publish(hands []HandLandmarks) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.obs = Observation{
		Seq:   m.obs.Seq + 1,
		Hands: hands,
		At:    time.Now(),
	}
	return m.obs.Seq
}

// Poll returns the latest observation and whether it is newer than lastSeq.
func (m *Mailbox) Poll(lastSeq uint64) (Observation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.obs, m.obs.Seq != lastSeq
}

// Seq returns the sequence number of the latest observation.
func (m *Mailbox) Seq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.obs.Seq
}
