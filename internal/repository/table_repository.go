package repository

import (
	"context"
	"fmt"

	"github.com/BadSnail11/Bookingbot/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TableRepository struct {
	pool *pgxpool.Pool
}

func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

// ListByMinCapacity получает столы, вмещающие компанию указанного размера.
// Порядок - вместимость по возрастанию, при равной вместимости по id:
// подбор стола начинается с самого тесного подходящего.
func (r *TableRepository) ListByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error) {
	query := `
		SELECT id, name, capacity
		FROM tables
		WHERE capacity >= $1
		ORDER BY capacity ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("list tables by capacity: %w", err)
	}
	defer rows.Close()

	var tables []*model.Table
	for rows.Next() {
		var table model.Table
		err := rows.Scan(&table.ID, &table.Name, &table.Capacity)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, &table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// GetNames получает отображаемые имена столов по списку ID
func (r *TableRepository) GetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	if len(ids) == 0 {
		return names, nil
	}

	query := `
		SELECT id, name
		FROM tables
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get table names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table names: %w", err)
	}

	return names, nil
}
