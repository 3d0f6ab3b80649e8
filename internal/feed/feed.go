package feed

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/models"
)

var (
	ErrFeedFull   = errors.New("feed buffer is full")
	ErrFeedClosed = errors.New("feed is closed")
)

// LeadFeed is an in-memory change feed of row-level lead events.
// Repositories publish after each successful mutation; subscribers
// receive insert/update/delete notifications in publish order.
type LeadFeed struct {
	events   chan models.LeadEvent
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(models.LeadEvent)
}

// NewLeadFeed creates a new feed with the specified buffer size
func NewLeadFeed(bufferSize int, logger *logrus.Logger) *LeadFeed {
	return &LeadFeed{
		events:   make(chan models.LeadEvent, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(models.LeadEvent), 0),
	}
}

// Publish adds an event to the feed
func (f *LeadFeed) Publish(event models.LeadEvent) error {
	// The lock is held across the send so Close cannot slip in between
	// the closed check and the channel write
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case f.events <- event:
		f.logger.WithFields(logrus.Fields{
			"type":    event.Type.String(),
			"lead_id": event.LeadID,
		}).Debug("Published lead event")
		return nil
	default:
		return ErrFeedFull
	}
}

// Subscribe adds a handler function that will be called for each event
func (f *LeadFeed) Subscribe(handler func(models.LeadEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
}

// Start begins delivering events to subscribers
func (f *LeadFeed) Start() {
	go f.process()
}

func (f *LeadFeed) process() {
	for {
		select {
		case <-f.done:
			return
		case event := <-f.events:
			f.dispatch(event)
		}
	}
}

func (f *LeadFeed) dispatch(event models.LeadEvent) {
	f.mu.RLock()
	handlers := f.handlers
	f.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Close stops the feed and prevents new events from being published
func (f *LeadFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	// events stays open: the process loop exits through done, and
	// Publish rejects once closed is set, so nothing sends on a closed
	// channel
	close(f.done)
	return nil
}

// Len returns the number of undelivered events
func (f *LeadFeed) Len() int {
	return len(f.events)
}

// IsClosed returns whether the feed has been closed
func (f *LeadFeed) IsClosed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}
