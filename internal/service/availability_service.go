package service

import (
	"context"
	"fmt"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"go.uber.org/zap"
)

// AvailabilityService подбирает свободный стол под заявку.
type AvailabilityService struct {
	reservationRepo ReservationStore
	tableRepo       TableStore
	logger          *zap.Logger
}

func NewAvailabilityService(reservationRepo ReservationStore, tableRepo TableStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		reservationRepo: reservationRepo,
		tableRepo:       tableRepo,
		logger:          logger,
	}
}

// FindTable ищет самый тесный свободный стол для компании на интервал
// [startsAt, endsAt). Возвращает (nil, nil), если подходящего стола нет.
//
// Жадный подбор без удержания: между проверкой и записью брони стол
// никак не резервируется, и два одновременных запроса могут получить
// один стол. Такие наложения разбирает администратор вручную.
func (s *AvailabilityService) FindTable(ctx context.Context, partySize int, startsAt, endsAt time.Time) (*model.Table, error) {
	held, err := s.reservationRepo.HeldTableIDs(ctx, startsAt, endsAt, model.HoldingStatuses())
	if err != nil {
		return nil, fmt.Errorf("list held tables: %w", err)
	}

	tables, err := s.tableRepo.ListByMinCapacity(ctx, partySize)
	if err != nil {
		return nil, fmt.Errorf("list candidate tables: %w", err)
	}

	for _, table := range tables {
		if _, taken := held[table.ID]; !taken {
			s.logger.Debug("Table found",
				zap.Int64("table_id", table.ID),
				zap.Int("capacity", table.Capacity),
				zap.Int("party_size", partySize),
			)
			return table, nil
		}
	}

	s.logger.Info("No free table for interval",
		zap.Int("party_size", partySize),
		zap.Time("starts_at", startsAt),
		zap.Int("held_count", len(held)),
	)

	return nil, nil
}
