// Package intake receives externally sourced leads (webhooks and
// spreadsheet imports) and lands them in batches.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"imobdesk/server/config"
	"imobdesk/server/internal/database"
	"imobdesk/server/internal/feed"
	"imobdesk/server/internal/models"
)

var (
	ErrIntakeFull   = errors.New("intake buffer is full")
	ErrIntakeClosed = errors.New("intake is closed")
)

// BatchProcessor drains lead batches into the database with retry and
// mirrors committed rows onto the change feed
type BatchProcessor struct {
	db        *gorm.DB
	feed      *feed.LeadFeed
	logger    *logrus.Logger
	config    *config.Config
	batches   chan []*models.Lead
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closed    bool
}

// NewBatchProcessor creates a new batch processor instance. A nil feed
// disables event publishing.
func NewBatchProcessor(db *gorm.DB, leadFeed *feed.LeadFeed, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:      db,
		feed:    leadFeed,
		logger:  logger,
		config:  cfg,
		batches: make(chan []*models.Lead, cfg.LeadIntake.MaxBatchSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue adds a batch for asynchronous processing
func (p *BatchProcessor) Enqueue(batch []*models.Lead) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrIntakeClosed
	}
	p.mu.RUnlock()

	// Non-blocking send so webhook handlers never stall on a busy pipeline
	select {
	case p.batches <- batch:
		p.logger.WithField("batch_size", len(batch)).Debug("Enqueued lead batch")
		return nil
	default:
		return ErrIntakeFull
	}
}

// Start launches the configured number of workers
func (p *BatchProcessor) Start() {
	for i := 0; i < p.config.LeadIntake.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop drains in-flight work and shuts the workers down
func (p *BatchProcessor) Stop() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.waitGroup.Wait()
}

func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.batches:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Failed to process lead batch")
			}
		}
	}
}

// processBatch writes a single batch inside a transaction with bounded retry
func (p *BatchProcessor) processBatch(batch []*models.Lead) error {
	var err error
	for attempt := 0; attempt <= p.config.LeadIntake.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying lead batch, attempt %d of %d", attempt, p.config.LeadIntake.MaxRetries)
			time.Sleep(time.Duration(p.config.LeadIntake.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertLeads(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert lead batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d leads", len(batch))
			p.publishBatch(batch)
			return nil
		}

		p.logger.Errorf("Lead batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.LeadIntake.MaxRetries, err)
}

// publishBatch mirrors a committed batch onto the change feed. An
// upsert may have created or refreshed each row, so both event types
// are published; the subscribers' dedupe and staleness rules keep the
// pair idempotent.
func (p *BatchProcessor) publishBatch(batch []*models.Lead) {
	if p.feed == nil {
		return
	}

	for _, lead := range batch {
		for _, eventType := range []models.LeadEventType{models.LeadInserted, models.LeadUpdated} {
			event := models.LeadEvent{
				Type:   eventType,
				LeadID: lead.ID,
				UserID: lead.UserID,
				Lead:   lead,
			}
			if err := p.feed.Publish(event); err != nil {
				p.logger.WithError(err).WithFields(logrus.Fields{
					"lead_id": lead.ID,
					"type":    eventType.String(),
				}).Warn("Failed to publish intake event")
			}
		}
	}
}
