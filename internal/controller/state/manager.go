package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DraftTTL время, после которого незавершённая анкета считается брошенной
const DraftTTL = 30 * time.Minute

// Manager управляет диалогами гостей в памяти процесса.
// После рестарта бота анкета начинается заново.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // telegramID -> Session
	now      func() time.Time
}

// NewManager создаёт новый менеджер диалогов
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Begin начинает новый диалог с чистым черновиком
func (sm *Manager) Begin(telegramID int64) BookingDraft {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	draft := BookingDraft{ID: uuid.New()}
	sm.sessions[telegramID] = &Session{
		Step:      StepDate,
		Draft:     draft,
		UpdatedAt: sm.now(),
	}
	return draft
}

// Step получает текущий шаг диалога
func (sm *Manager) Step(telegramID int64) Step {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[telegramID]; exists {
		return session.Step
	}
	return StepNone
}

// SetStep переводит диалог на указанный шаг
func (sm *Manager) SetStep(telegramID int64, step Step) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if step == StepNone {
		// Пустой шаг завершает диалог
		delete(sm.sessions, telegramID)
		return
	}

	if session, exists := sm.sessions[telegramID]; exists {
		session.Step = step
		session.UpdatedAt = sm.now()
		return
	}
	sm.sessions[telegramID] = &Session{
		Step:      step,
		UpdatedAt: sm.now(),
	}
}

// Draft возвращает копию черновика текущего диалога
func (sm *Manager) Draft(telegramID int64) (BookingDraft, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if session, exists := sm.sessions[telegramID]; exists {
		return session.Draft, true
	}
	return BookingDraft{}, false
}

// Update изменяет черновик под блокировкой
func (sm *Manager) Update(telegramID int64, fn func(*BookingDraft)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[telegramID]
	if !exists {
		return
	}
	fn(&session.Draft)
	session.UpdatedAt = sm.now()
}

// Clear завершает диалог и выбрасывает черновик
func (sm *Manager) Clear(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.sessions, telegramID)
}

// ExpireStale удаляет диалоги без активности дольше maxAge.
// Возвращает количество удалённых.
func (sm *Manager) ExpireStale(maxAge time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-maxAge)
	removed := 0
	for telegramID, session := range sm.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(sm.sessions, telegramID)
			removed++
		}
	}
	return removed
}
