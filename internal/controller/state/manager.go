package state

import (
	"sync"
	"time"
)

// Manager управляет состояниями пользователей
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
	now    func() time.Time
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
		now:    time.Now,
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState устанавливает состояние пользователя
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		// Если состояние None, удаляем запись
		delete(sm.states, telegramID)
		return
	}

	userData := sm.entry(telegramID)
	userData.State = state
}

// GetData получает временные данные пользователя
func (sm *Manager) GetData(telegramID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return nil, false
}

// SetData устанавливает временные данные пользователя
func (sm *Manager) SetData(telegramID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.entry(telegramID).Data[key] = value
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// GetAllData получает все временные данные пользователя
func (sm *Manager) GetAllData(telegramID int64) map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		// Возвращаем копию, чтобы избежать race condition
		dataCopy := make(map[string]interface{}, len(userData.Data))
		for k, v := range userData.Data {
			dataCopy[k] = v
		}
		return dataCopy
	}
	return nil
}

// Expire удаляет диалоги, которые не менялись дольше ttl. Возвращает число удалённых
func (sm *Manager) Expire(ttl time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	deadline := sm.now().Add(-ttl)
	removed := 0
	for id, userData := range sm.states {
		if userData.UpdatedAt.Before(deadline) {
			delete(sm.states, id)
			removed++
		}
	}
	return removed
}

// entry возвращает запись пользователя, создавая её при необходимости. Вызывать под mu
func (sm *Manager) entry(telegramID int64) *UserData {
	userData, exists := sm.states[telegramID]
	if !exists {
		userData = &UserData{
			State: StateNone,
			Data:  make(map[string]interface{}),
		}
		sm.states[telegramID] = userData
	}
	userData.UpdatedAt = sm.now()
	return userData
}
