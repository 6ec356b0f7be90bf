package app

import (
	"fmt"

	"github.com/BadSnail11/Bookingbot/internal/controller/state"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron         *cron.Cron
	stateManager *state.Manager
	logger       *zap.Logger
}

// NewScheduler создаёт новый планировщик
func NewScheduler(stateManager *state.Manager, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		stateManager: stateManager,
		logger:       logger,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start() error {
	// Сметаем брошенные анкеты каждые 10 минут
	if _, err := s.cron.AddFunc("*/10 * * * *", s.expireStaleDialogs); err != nil {
		return fmt.Errorf("add stale dialog sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Starting background scheduler")
	return nil
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	s.cron.Stop()
}

// expireStaleDialogs удаляет анкеты без активности дольше DraftTTL.
// Гость, вернувшийся к протухшей анкете, начинает с /book заново.
func (s *Scheduler) expireStaleDialogs() {
	removed := s.stateManager.ExpireStale(state.DraftTTL)
	if removed > 0 {
		s.logger.Info("Expired stale booking dialogs", zap.Int("count", removed))
	}
}
