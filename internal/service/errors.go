package service

import "errors"

// Исходы, которые контроллер должен отличать от инфраструктурных сбоев.
var (
	// ErrDailyLimitReached дневной лимит заявок исчерпан, бронь не создана.
	ErrDailyLimitReached = errors.New("daily reservation limit reached")

	// ErrNoTableAvailable нет свободного стола подходящей вместимости.
	ErrNoTableAvailable = errors.New("no suitable table available")

	// ErrNotFound бронь с таким ID не существует.
	ErrNotFound = errors.New("reservation not found")

	// ErrAlreadyConfirmed повторное подтверждение, состояние не менялось.
	ErrAlreadyConfirmed = errors.New("reservation already confirmed")

	// ErrAlreadyCanceled повторная отмена, состояние не менялось.
	ErrAlreadyCanceled = errors.New("reservation already canceled")

	// ErrTerminalStatus из canceled и stopped переходов нет.
	ErrTerminalStatus = errors.New("reservation is in terminal status")
)
