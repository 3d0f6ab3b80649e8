package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"imobdesk/server/internal/models"
)

func TestNewLeadFeed(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(10, logger)
	assert.NotNil(t, f)
	assert.Equal(t, 10, f.maxSize)
	assert.False(t, f.IsClosed())
}

func TestLeadFeed_Publish(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(2, logger)

	// Test successful publish
	event := models.LeadEvent{Type: models.LeadInserted, LeadID: "lead-1"}
	err := f.Publish(event)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.Len())

	// Test feed full
	for i := 0; i < 2; i++ {
		_ = f.Publish(models.LeadEvent{Type: models.LeadUpdated, LeadID: "lead-2"})
	}
	err = f.Publish(event)
	assert.Equal(t, ErrFeedFull, err)

	// Test closed feed
	f.Close()
	err = f.Publish(event)
	assert.Equal(t, ErrFeedClosed, err)
}

func TestLeadFeed_Subscribe(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(10, logger)

	var received []models.LeadEvent
	var mu sync.Mutex

	f.Subscribe(func(event models.LeadEvent) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
	})

	f.Start()

	err := f.Publish(models.LeadEvent{Type: models.LeadInserted, LeadID: "a"})
	assert.NoError(t, err)
	err = f.Publish(models.LeadEvent{Type: models.LeadDeleted, LeadID: "b"})
	assert.NoError(t, err)

	// Wait for delivery
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, len(received))
	assert.Equal(t, "a", received[0].LeadID)
	assert.Equal(t, models.LeadDeleted, received[1].Type)
	mu.Unlock()
}

func TestLeadFeed_MultipleSubscribers(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(10, logger)

	var wg sync.WaitGroup
	delivered := 0
	var mu sync.Mutex

	for i := 0; i < 3; i++ {
		wg.Add(1)
		f.Subscribe(func(event models.LeadEvent) {
			mu.Lock()
			delivered++
			mu.Unlock()
			wg.Done()
		})
	}

	f.Start()

	err := f.Publish(models.LeadEvent{Type: models.LeadInserted, LeadID: "x"})
	assert.NoError(t, err)

	wg.Wait()
	mu.Lock()
	assert.Equal(t, 3, delivered)
	mu.Unlock()
}

func TestLeadFeed_PublishDuringClose(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(4, logger)

	// Hammer Publish while Close runs concurrently. Publish must either
	// enqueue or return a sentinel, never panic on a closed channel.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := f.Publish(models.LeadEvent{Type: models.LeadInserted, LeadID: "race"})
				if err != nil {
					assert.Contains(t, []error{ErrFeedFull, ErrFeedClosed}, err)
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	assert.NoError(t, f.Close())
	wg.Wait()

	assert.Equal(t, ErrFeedClosed, f.Publish(models.LeadEvent{LeadID: "after"}))
}

func TestLeadFeed_Close(t *testing.T) {
	logger := logrus.New()
	f := NewLeadFeed(10, logger)

	err := f.Close()
	assert.NoError(t, err)
	assert.True(t, f.IsClosed())

	// Second close is a no-op
	err = f.Close()
	assert.NoError(t, err)
}
