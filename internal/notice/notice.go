// Package notice carries user-facing feedback produced while handling an
// interaction: the (level, message) pairs a view renders as toasts.
package notice

import "sync"

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a single user-visible message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Info builds an informational notice.
func Info(message string) Notice { return Notice{Level: LevelInfo, Message: message} }

// Success builds a success notice.
func Success(message string) Notice { return Notice{Level: LevelSuccess, Message: message} }

// Error builds an error notice.
func Error(message string) Notice { return Notice{Level: LevelError, Message: message} }

// Sink accepts notices.
type Sink interface {
	Notify(n Notice)
}

// Collector buffers notices for a single interaction.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Notify appends n. A nil collector discards it.
func (c *Collector) Notify(n Notice) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of the buffered notices.
func (c *Collector) Notices() []Notice {
	if c == nil {
		return []Notice{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Discard is a sink that drops every notice.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(Notice) {}
