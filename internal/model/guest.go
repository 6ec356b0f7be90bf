package model

import "time"

// Guest гость, однажды написавший боту. Запись создаётся при первом
// обращении и дальше не изменяется.
type Guest struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
