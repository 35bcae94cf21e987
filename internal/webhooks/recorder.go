package webhooks

import (
	"sync"
	"time"
)

// ReceivedWebhook is one delivery captured by the mock endpoint.
type ReceivedWebhook struct {
	Payload    Payload   `json:"payload"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Recorder backs the mock webhook surface used to observe deliveries during
// development. It captures payloads in memory and can simulate a failing
// endpoint to exercise the retry path.
type Recorder struct {
	mu            sync.Mutex
	received      []ReceivedWebhook
	simulateError bool
}

// NewRecorder builds an empty recorder.
func NewRecorder(simulateError bool) *Recorder {
	return &Recorder{simulateError: simulateError}
}

// Record captures one delivery.
func (r *Recorder) Record(payload Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, ReceivedWebhook{
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	})
}

// Received returns a copy of every captured delivery.
func (r *Recorder) Received() []ReceivedWebhook {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ReceivedWebhook(nil), r.received...)
}

// Clear drops all captured deliveries.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = nil
}

// SimulateError reports whether the mock endpoint should answer with a
// failure.
func (r *Recorder) SimulateError() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.simulateError
}

// SetSimulateError toggles failure mode.
func (r *Recorder) SetSimulateError(value bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.simulateError = value
}
