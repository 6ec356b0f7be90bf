package service

import (
	"context"
	"fmt"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"go.uber.org/zap"
)

type GuestService struct {
	guestRepo GuestStore
	logger    *zap.Logger
}

func NewGuestService(guestRepo GuestStore, logger *zap.Logger) *GuestService {
	return &GuestService{
		guestRepo: guestRepo,
		logger:    logger,
	}
}

// Ensure находит гостя по chat id или заводит нового. Повторные вызовы
// для одного чата возвращают ту же запись, данные существующего гостя
// не перезаписываются.
func (s *GuestService) Ensure(ctx context.Context, chatID int64, firstName, lastName, username string) (*model.Guest, error) {
	existing, err := s.guestRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("check existing guest: %w", err)
	}

	if existing != nil {
		return existing, nil
	}

	guest := &model.Guest{
		ChatID:    chatID,
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
	}

	err = s.guestRepo.Create(ctx, guest)
	if err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}

	s.logger.Info("New guest registered",
		zap.Int64("guest_id", guest.ID),
		zap.Int64("chat_id", chatID),
		zap.String("username", username),
	)

	return guest, nil
}

// GetByChatID получает гостя по Telegram chat ID
func (s *GuestService) GetByChatID(ctx context.Context, chatID int64) (*model.Guest, error) {
	return s.guestRepo.GetByChatID(ctx, chatID)
}

// GetByID получает гостя по ID
func (s *GuestService) GetByID(ctx context.Context, id int64) (*model.Guest, error) {
	return s.guestRepo.GetByID(ctx, id)
}
