package viewport

import (
	"sync"

	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/pkg/mesh"
)

// loadEvent is a loader callback tagged with the token of the request
// that produced it.
type loadEvent struct {
	token    uint64
	progress *loader.Progress
	done     bool
	desc     *mesh.Descriptor
	err      error
}

// message is either a load event or a queued call.
type message struct {
	event *loadEvent
	call  func()
}

// mailbox carries work from other goroutines to the UI thread. It is the
// only state shared across goroutines.
type mailbox struct {
	mu    sync.Mutex
	queue []message
}

func (m *mailbox) post(msg message) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
}

// take removes and returns everything queued, in posting order.
func (m *mailbox) take() []message {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}

func (m *mailbox) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
