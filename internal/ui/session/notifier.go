package session

import (
	"strings"
	"sync"
	"time"

	"github.com/Its-donkey/newsdesk/internal/ui/model"
)

// StatusAutoClear is how long success and info notices stay visible.
const StatusAutoClear = 5 * time.Second

// Notifier holds the single visible status notice. Success and info notices clear
// themselves; warnings and errors stay until replaced or dismissed.
type Notifier struct {
	mu       sync.Mutex
	current  model.Status
	cancel   chan struct{}
	ttl      time.Duration
	onChange func(model.Status)
}

// NewNotifier returns a notifier that reports every change to onChange.
func NewNotifier(onChange func(model.Status)) *Notifier {
	return &Notifier{ttl: StatusAutoClear, onChange: onChange}
}

// Notify replaces the current notice.
func (n *Notifier) Notify(message, tone string) {
	status := model.Status{Message: message, Tone: tone}
	n.mu.Lock()
	n.stopTimer()
	n.current = status
	if transient(tone) && strings.TrimSpace(message) != "" && n.ttl > 0 {
		done := make(chan struct{})
		n.cancel = done
		go n.expire(status, done)
	}
	n.mu.Unlock()
	n.emit(status)
}

// Dismiss clears the current notice.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	n.stopTimer()
	n.current = model.Status{}
	n.mu.Unlock()
	n.emit(model.Status{})
}

// Current returns the visible notice.
func (n *Notifier) Current() model.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stop cancels any pending auto-clear.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimer()
}

func (n *Notifier) expire(expected model.Status, done chan struct{}) {
	timer := time.NewTimer(n.ttl)
	defer timer.Stop()
	select {
	case <-timer.C:
		n.mu.Lock()
		if n.current != expected || n.cancel != done {
			n.mu.Unlock()
			return
		}
		n.current = model.Status{}
		n.cancel = nil
		n.mu.Unlock()
		n.emit(model.Status{})
	case <-done:
	}
}

func (n *Notifier) stopTimer() {
	if n.cancel != nil {
		close(n.cancel)
		n.cancel = nil
	}
}

func (n *Notifier) emit(status model.Status) {
	if n.onChange != nil {
		n.onChange(status)
	}
}

func transient(tone string) bool {
	return tone == model.ToneSuccess || tone == model.ToneInfo
}
