package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names
const (
	eventStep     = "step"
	eventComplete = "complete"
	eventError    = "error"
)

// eventStream writes Server-Sent Events for one request. Event ids are
// "<request id>-<sequence>" so a client can tell events of concurrent runs apart.
type eventStream struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	requestID string
	seq       int
}

// openEventStream sends the event-stream headers. It fails before anything is
// written when the writer cannot flush.
func openEventStream(w http.ResponseWriter, requestID string) (*eventStream, error) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	// Flush commits a 200 with these headers, or writes nothing when unsupported
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("streaming not supported: %w", err)
	}
	return &eventStream{w: w, rc: rc, requestID: requestID}, nil
}

// send writes one event with a JSON payload and flushes it
func (s *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %s-%d\nevent: %s\ndata: %s\n\n", s.requestID, s.seq, event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}
