package session

import (
	"context"
	"sync"
)

// Mode — активный режим пользователя.
type Mode string

const (
	ModeNone          Mode = ""
	ModeTranslating   Mode = "translating"
	ModeChoosingLevel Mode = "choosing_level"
	ModeQuiz          Mode = "quiz"
	ModeConversation  Mode = "conversation"
)

// Level — выбранный уровень сложности викторины.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Session — состояние одного пользователя. Режим, уровень и флаг
// «ждём тему разговора» живут вместе, чтобы не расползались по
// отдельным словарям.
type Session struct {
	UserID        int64
	Mode          Mode
	Level         Level
	AwaitingTopic bool // режим разговора: следующее сообщение — тема
}

// Store отдаёт и сохраняет сессии. Get для незнакомого пользователя
// возвращает сессию по умолчанию (режим не выбран, уровень beginner).
// Чтение-изменение-запись безопасно: обработка сообщений одного
// пользователя сериализована на транспорте.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Save(ctx context.Context, s Session) error
}

// MemoryStore — сессии в памяти процесса.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	return Session{UserID: userID, Mode: ModeNone, Level: LevelBeginner}, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s
	return nil
}
