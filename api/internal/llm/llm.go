package llm

import (
	"context"
	"sync"
)

// Provider — один удалённый сервис генерации текста.
type Provider interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Manager хранит выбранный провайдер на пользователя поверх дефолтного.
type Manager struct {
	def Provider
	m   sync.Map // userID -> Provider
}

func NewManager(defaultProvider Provider) *Manager {
	return &Manager{def: defaultProvider}
}

func (m *Manager) Get(userID int64) Provider {
	if v, ok := m.m.Load(userID); ok {
		return v.(Provider)
	}
	return m.def
}

func (m *Manager) Set(userID int64, p Provider) {
	m.m.Store(userID, p)
}
