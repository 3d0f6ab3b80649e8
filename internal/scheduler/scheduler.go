package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"imobdesk/server/internal/agenda"
	"imobdesk/server/internal/database"
	"imobdesk/server/internal/models"
	"imobdesk/server/internal/whatsapp"
)

// JobType represents the periodic background jobs
type JobType int

const (
	JobTypeAgendaSync JobType = iota
	JobTypeInstanceStatus
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeAgendaSync:
		return "agenda_sync"
	case JobTypeInstanceStatus:
		return "instance_status"
	default:
		return "unknown"
	}
}

const (
	agendaSyncInterval = time.Hour
	jobTimeout         = 2 * time.Minute
)

// Scheduler manages periodic background work: re-syncing calendar
// windows and refreshing WhatsApp connection states.
type Scheduler struct {
	db       *database.Database
	agenda   *agenda.Service
	whatsapp *whatsapp.Service
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.Database, agendaService *agenda.Service, whatsappService *whatsapp.Service, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		agenda:   agendaService,
		whatsapp: whatsappService,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

func (s *Scheduler) executeScheduledJobs(t time.Time) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	// Agenda re-sync on the hour
	if t.Minute() == 0 && s.agenda != nil && s.agenda.Enabled() {
		s.logger.WithField("job_type", JobTypeAgendaSync.String()).Info("Starting scheduled job")
		s.syncAgendas()
	}

	// Instance status refresh every five minutes
	if t.Minute()%5 == 0 && s.whatsapp != nil && s.whatsapp.Enabled() {
		s.logger.WithField("job_type", JobTypeInstanceStatus.String()).Debug("Starting scheduled job")
		s.refreshInstanceStatuses()
	}
}

// syncAgendas re-pulls the next 30 days for every broker with a
// profile, so the cached calendar stays close to the source
func (s *Scheduler) syncAgendas() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	users, err := s.db.ListUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users for agenda sync")
		return
	}

	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 30)

	for _, user := range users {
		if _, err := s.agenda.Sync(ctx, user.ID, "", from, to); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id":  user.ID,
				"job_type": JobTypeAgendaSync.String(),
			}).Error("Scheduled job failed")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"job_type": JobTypeAgendaSync.String(),
		}).Debug("Scheduled job completed")
	}
}

// refreshInstanceStatuses asks the gateway for the live state of every
// registered instance and stores changes
func (s *Scheduler) refreshInstanceStatuses() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	instances, err := s.db.ListWhatsAppInstances(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list whatsapp instances")
		return
	}

	for _, instance := range instances {
		status, err := s.whatsapp.ConnectionStatus(ctx, instance.InstanceKey)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"instance_key": instance.InstanceKey,
				"job_type":     JobTypeInstanceStatus.String(),
			}).Warn("Failed to refresh instance status")
			// Gateway unreachable counts as disconnected
			status = models.InstanceDisconnected
		}

		if status == instance.Status {
			continue
		}
		if err := s.db.UpdateWhatsAppStatus(ctx, instance.InstanceKey, status); err != nil {
			s.logger.WithError(err).WithField("instance_key", instance.InstanceKey).Error("Failed to store instance status")
		}
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
