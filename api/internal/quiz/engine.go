package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"english-bot/api/internal/session"
)

const questionCount = 5

// Базовый словарь викторины. Уровень сложности пока не влияет на
// подбор слов — список один на все уровни.
var baseWords = []string{"яблоко", "дом", "мир", "открывать", "красивый"}

var (
	// ErrNoSession — ответ пришёл без активной викторины.
	ErrNoSession = errors.New("quiz: no active session")
	// ErrOutOfRange — все вопросы уже отвечены.
	ErrOutOfRange = errors.New("quiz: no more questions")
)

// Question — пара «показываем Source, ждём Target».
type Question struct {
	Source string // слово на русском, показывается пользователю
	Target string // ожидаемый перевод на английский
}

// Session — ход одной викторины: пять вопросов, счёт, сколько отвечено.
type Session struct {
	Questions []Question
	Answered  int
	Score     int
}

// Result — исход одного ответа.
type Result struct {
	Correct  bool
	Expected string
}

// Generator — способность сгенерировать текст (перевод слова).
type Generator interface {
	Generate(ctx context.Context, userID int64, prompt string) string
}

// Engine строит викторины и считает очки. Состояние викторин держит
// у себя, отдельно от общих сессий.
type Engine struct {
	llm   Generator
	words []string

	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewEngine(llm Generator) *Engine {
	return &Engine{
		llm:      llm,
		words:    baseWords,
		sessions: make(map[int64]*Session),
	}
}

// buildQuestions переводит каждое слово списка через шлюз генерации.
// Пустой перевод (сбой провайдера) не отбрасывается: викторина
// продолжает работать в деградированном виде.
func (e *Engine) buildQuestions(ctx context.Context, userID int64, _ session.Level) []Question {
	questions := make([]Question, 0, len(e.words))
	for _, w := range e.words {
		translation := e.llm.Generate(ctx, userID, fmt.Sprintf("Translate the word '%s' to English.", w))
		questions = append(questions, Question{
			Source: w,
			Target: strings.TrimSpace(translation),
		})
	}
	return questions
}

// Start создаёт свежую викторину, затирая прошлую, если была.
func (e *Engine) Start(ctx context.Context, userID int64, level session.Level) {
	s := &Session{Questions: e.buildQuestions(ctx, userID, level)}
	e.mu.Lock()
	e.sessions[userID] = s
	e.mu.Unlock()
}

// Current — вопрос, который сейчас ждёт ответа.
func (e *Engine) Current(userID int64) (Question, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[userID]
	if !ok {
		return Question{}, ErrNoSession
	}
	if s.Answered >= len(s.Questions) {
		return Question{}, ErrOutOfRange
	}
	return s.Questions[s.Answered], nil
}

// Submit сверяет ответ с ожидаемым переводом: без учёта регистра,
// пробелы по краям игнорируются. Счётчик отвеченных растёт всегда,
// очки — только при совпадении.
func (e *Engine) Submit(userID int64, answer string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[userID]
	if !ok {
		return Result{}, ErrNoSession
	}
	if s.Answered >= len(s.Questions) {
		return Result{}, ErrOutOfRange
	}
	expected := s.Questions[s.Answered].Target
	correct := strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(expected))
	if correct {
		s.Score++
	}
	s.Answered++
	return Result{Correct: correct, Expected: expected}, nil
}

// IsComplete — отвечены ли все пять вопросов.
func (e *Engine) IsComplete(userID int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[userID]
	return ok && s.Answered >= len(s.Questions)
}

// FinalScore валиден после завершения викторины.
func (e *Engine) FinalScore(userID int64) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[userID]
	if !ok {
		return 0, ErrNoSession
	}
	return s.Score, nil
}

// Total — сколько вопросов в викторине пользователя.
func (e *Engine) Total(userID int64) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if s, ok := e.sessions[userID]; ok {
		return len(s.Questions)
	}
	return questionCount
}

// Reset снимает викторину пользователя (выход через меню).
func (e *Engine) Reset(userID int64) {
	e.mu.Lock()
	delete(e.sessions, userID)
	e.mu.Unlock()
}
