package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "notice", "warning", "error"
}

// Console is a log.Logger that forwards Info and above to every connected
// browser console while still writing to the wrapped logger
type Console struct {
	log.Logger

	mu          sync.Mutex
	subscribers map[chan ConsoleMessage]struct{}
	buffer      int
}

// NewConsole wraps logger. Each subscriber channel holds up to buffer
// messages; messages to a full channel are skipped.
func NewConsole(logger log.Logger, buffer int) *Console {
	return &Console{
		Logger:      logger,
		subscribers: make(map[chan ConsoleMessage]struct{}),
		buffer:      buffer,
	}
}

// Subscribe returns a channel receiving console messages until the returned
// cancel function is called
func (c *Console) Subscribe() (<-chan ConsoleMessage, func()) {
	ch := make(chan ConsoleMessage, c.buffer)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.subscribers, ch)
		c.mu.Unlock()
	}
}

func (c *Console) publish(level, message string) {
	msg := ConsoleMessage{Message: message, Timestamp: time.Now(), Level: level}

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- msg:
		default:
			// Channel full, skip (don't block)
		}
	}
}

func (c *Console) Info(v ...interface{}) {
	c.Logger.Info(v...)
	c.publish("info", fmt.Sprint(v...))
}

func (c *Console) Infof(format string, v ...interface{}) {
	c.Logger.Infof(format, v...)
	c.publish("info", fmt.Sprintf(format, v...))
}

func (c *Console) Notice(v ...interface{}) {
	c.Logger.Notice(v...)
	c.publish("notice", fmt.Sprint(v...))
}

func (c *Console) Noticef(format string, v ...interface{}) {
	c.Logger.Noticef(format, v...)
	c.publish("notice", fmt.Sprintf(format, v...))
}

func (c *Console) Warning(v ...interface{}) {
	c.Logger.Warning(v...)
	c.publish("warning", fmt.Sprint(v...))
}

func (c *Console) Warningf(format string, v ...interface{}) {
	c.Logger.Warningf(format, v...)
	c.publish("warning", fmt.Sprintf(format, v...))
}

func (c *Console) Error(v ...interface{}) {
	c.Logger.Error(v...)
	c.publish("error", fmt.Sprint(v...))
}

func (c *Console) Errorf(format string, v ...interface{}) {
	c.Logger.Errorf(format, v...)
	c.publish("error", fmt.Sprintf(format, v...))
}
