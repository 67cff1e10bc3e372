package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	evictionSchedule = "@every 10m"
	jobTimeout       = time.Minute
)

// SessionPurger removes login sessions that can no longer be restored.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// ControllerEvictor drops dashboard state of sessions that went quiet.
type ControllerEvictor interface {
	EvictIdle(idleTTL time.Duration) int
}

type Scheduler struct {
	cron          *cron.Cron
	purger        SessionPurger
	evictor       ControllerEvictor
	purgeSchedule string
	idleTTL       time.Duration
	log           zerolog.Logger
}

func NewScheduler(purger SessionPurger, evictor ControllerEvictor, purgeSchedule string, idleTTL time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		purger:        purger,
		evictor:       evictor,
		purgeSchedule: purgeSchedule,
		idleTTL:       idleTTL,
		log:           log,
	}
}

func (s *Scheduler) Start() error {
	if s.purger != nil && s.purgeSchedule != "" {
		if _, err := s.cron.AddFunc(s.purgeSchedule, s.PurgeSessions); err != nil {
			return err
		}
	}
	if s.evictor != nil && s.idleTTL > 0 {
		if _, err := s.cron.AddFunc(evictionSchedule, s.EvictControllers); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) PurgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	purged, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
		return
	}
	s.log.Debug().Int("purged", purged).Msg("session purge finished")
}

func (s *Scheduler) EvictControllers() {
	if evicted := s.evictor.EvictIdle(s.idleTTL); evicted > 0 {
		s.log.Info().Int("evicted", evicted).Msg("idle dashboards evicted")
	}
}
