package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, guest_id, table_id, joined_table_id, name, phone, party_size,
		set_count, comment, starts_at, ends_at, status, created_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.GuestID,
		&res.TableID,
		&res.JoinedTableID,
		&res.Name,
		&res.Phone,
		&res.PartySize,
		&res.SetCount,
		&res.Comment,
		&res.StartsAt,
		&res.EndsAt,
		&res.Status,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func statusStrings(statuses []model.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create создаёт новую бронь
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (guest_id, table_id, joined_table_id, name, phone,
			party_size, set_count, comment, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		res.GuestID,
		res.TableID,
		res.JoinedTableID,
		res.Name,
		res.Phone,
		res.PartySize,
		res.SetCount,
		res.Comment,
		res.StartsAt,
		res.EndsAt,
		res.Status,
	).Scan(&res.ID, &res.CreatedAt)

	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID получает бронь по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return res, nil
}

// HeldTableIDs получает столы, занятые бронями в интервале [startsAt, endsAt).
// Пересечение полуоткрытых интервалов: бронь задевает запрошенный интервал,
// если началась до его конца и закончится после его начала. Учитываются и
// основной, и присоединённый столы.
func (r *ReservationRepository) HeldTableIDs(ctx context.Context, startsAt, endsAt time.Time, statuses []model.ReservationStatus) (map[int64]struct{}, error) {
	query := `
		SELECT table_id, joined_table_id
		FROM reservations
		WHERE status = ANY($1)
		  AND starts_at < $2
		  AND ends_at > $3
	`

	rows, err := r.pool.Query(ctx, query, statusStrings(statuses), endsAt, startsAt)
	if err != nil {
		return nil, fmt.Errorf("list held table ids: %w", err)
	}
	defer rows.Close()

	held := make(map[int64]struct{})
	for rows.Next() {
		var tableID, joinedTableID *int64
		if err := rows.Scan(&tableID, &joinedTableID); err != nil {
			return nil, fmt.Errorf("scan held table ids: %w", err)
		}
		if tableID != nil {
			held[*tableID] = struct{}{}
		}
		if joinedTableID != nil {
			held[*joinedTableID] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate held table ids: %w", err)
	}

	return held, nil
}

// CountCreatedBetween считает брони, созданные в окне [from, to),
// опционально только для одного гостя
func (r *ReservationRepository) CountCreatedBetween(ctx context.Context, from, to time.Time, statuses []model.ReservationStatus, guestID *int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE status = ANY($1)
		  AND created_at >= $2
		  AND created_at < $3
	`
	args := []interface{}{statusStrings(statuses), from, to}

	if guestID != nil {
		query += ` AND guest_id = $4`
		args = append(args, *guestID)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}

	return count, nil
}

// UpdateStatus обновляет статус брони
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	query := `
		UPDATE reservations
		SET status = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation not found")
	}

	return nil
}

// ConfirmWithTable привязывает стол и переводит бронь в confirmed одним запросом
func (r *ReservationRepository) ConfirmWithTable(ctx context.Context, id, tableID int64) error {
	query := `
		UPDATE reservations
		SET table_id = $1, status = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, tableID, model.ReservationStatusConfirmed, id)
	if err != nil {
		return fmt.Errorf("confirm reservation with table: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation not found")
	}

	return nil
}

// GetPending получает все ожидающие подтверждения брони
func (r *ReservationRepository) GetPending(ctx context.Context) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1
		ORDER BY starts_at ASC
	`

	return r.list(ctx, query, model.ReservationStatusPending)
}

// GetFutureByGuestID получает ещё не закончившиеся брони гостя
func (r *ReservationRepository) GetFutureByGuestID(ctx context.Context, guestID int64, now time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE guest_id = $1
		  AND ends_at >= $2
		ORDER BY starts_at ASC
	`

	return r.list(ctx, query, guestID, now)
}

// GetConfirmedFuture получает подтверждённые брони с началом в будущем.
// Из них при старте процесса восстанавливаются напоминания.
func (r *ReservationRepository) GetConfirmedFuture(ctx context.Context, now time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1
		  AND starts_at > $2
		ORDER BY starts_at ASC
	`

	return r.list(ctx, query, model.ReservationStatusConfirmed, now)
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Reservation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}
