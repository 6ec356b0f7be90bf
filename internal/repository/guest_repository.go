package repository

import (
	"context"
	"fmt"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) *GuestRepository {
	return &GuestRepository{pool: pool}
}

// Create создаёт нового гостя
func (r *GuestRepository) Create(ctx context.Context, guest *model.Guest) error {
	query := `
		INSERT INTO guests (chat_id, first_name, last_name, username)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		guest.ChatID,
		guest.FirstName,
		guest.LastName,
		guest.Username,
	).Scan(&guest.ID, &guest.CreatedAt)

	if err != nil {
		return fmt.Errorf("create guest: %w", err)
	}

	return nil
}

// GetByChatID получает гостя по Telegram chat ID
func (r *GuestRepository) GetByChatID(ctx context.Context, chatID int64) (*model.Guest, error) {
	query := `
		SELECT id, chat_id, first_name, last_name, username, created_at
		FROM guests
		WHERE chat_id = $1
	`

	var guest model.Guest
	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&guest.ID,
		&guest.ChatID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Username,
		&guest.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Гость не найден
		}
		return nil, fmt.Errorf("get guest by chat id: %w", err)
	}

	return &guest, nil
}

// GetByID получает гостя по ID
func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*model.Guest, error) {
	query := `
		SELECT id, chat_id, first_name, last_name, username, created_at
		FROM guests
		WHERE id = $1
	`

	var guest model.Guest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&guest.ID,
		&guest.ChatID,
		&guest.FirstName,
		&guest.LastName,
		&guest.Username,
		&guest.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get guest by id: %w", err)
	}

	return &guest, nil
}
