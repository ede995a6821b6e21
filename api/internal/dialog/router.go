package dialog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"english-bot/api/internal/quiz"
	"english-bot/api/internal/session"
	"english-bot/api/internal/store"
)

// Свежесть кэша переводов.
const translationMaxAge = 30 * 24 * time.Hour

// Reply — исходящее сообщение. Клавиатура, если задана, рендерится
// транспортом как reply-кнопки.
type Reply struct {
	Text     string
	Keyboard [][]string
}

// Generator — способность получить текст от языковой модели.
// Пустая строка означает, что пригодного ответа нет.
type Generator interface {
	Generate(ctx context.Context, userID int64, prompt string) string
}

// Router — конечный автомат диалога. Каждое входящее сообщение
// диспетчеризуется по текущему режиму сессии; на выходе — ноль или
// несколько ответов и, возможно, обновлённая сессия.
type Router struct {
	Sessions session.Store
	Quiz     *quiz.Engine
	LLM      Generator

	// Необязательные репозитории (nil без Postgres).
	Translations *store.TranslationRepo
	Results      *store.QuizResultRepo
}

// Start — приветствие по /start: показывает меню и сбрасывает режим.
func (r *Router) Start(ctx context.Context, userID int64) []Reply {
	r.resetToMenu(ctx, userID)
	return []Reply{{Text: msgGreeting, Keyboard: menuKeyboard()}}
}

// Menu — возврат в главное меню по команде.
func (r *Router) Menu(ctx context.Context, userID int64) []Reply {
	r.resetToMenu(ctx, userID)
	return []Reply{{Text: msgMenu, Keyboard: menuKeyboard()}}
}

// HandleMessage обрабатывает одно текстовое сообщение пользователя.
// Сообщения одного пользователя должны приходить сюда строго по
// очереди — это обеспечивает транспорт.
func (r *Router) HandleMessage(ctx context.Context, userID int64, text string) []Reply {
	norm := strings.ToLower(strings.TrimSpace(text))

	// Выход в меню работает из любого режима и прерывает обработку.
	if norm == kwMenu || norm == cmdMenu {
		return r.Menu(ctx, userID)
	}

	s := r.getSession(ctx, userID)
	switch s.Mode {
	case session.ModeTranslating:
		return r.translate(ctx, s, text)
	case session.ModeQuiz:
		return r.checkQuizAnswer(ctx, s, text)
	case session.ModeConversation:
		return r.converse(ctx, s, text)
	case session.ModeChoosingLevel:
		return r.chooseLevel(ctx, s, norm)
	default:
		return r.guide(ctx, s, norm)
	}
}

// guide — режим не выбран: ждём одну из кнопок меню.
func (r *Router) guide(ctx context.Context, s session.Session, norm string) []Reply {
	switch norm {
	case labelTranslate:
		s.Mode = session.ModeTranslating
		r.saveSession(ctx, s)
		return []Reply{{Text: msgSendText}}
	case labelQuiz:
		s.Mode = session.ModeChoosingLevel
		r.saveSession(ctx, s)
		return []Reply{{Text: msgChooseLevel, Keyboard: levelKeyboard()}}
	case labelConversation:
		s.Mode = session.ModeConversation
		s.AwaitingTopic = true
		r.saveSession(ctx, s)
		return []Reply{{Text: msgAskTopic}}
	default:
		return []Reply{{Text: msgChooseOption}}
	}
}

func levelFromLabel(norm string) (session.Level, bool) {
	switch norm {
	case labelBeginner:
		return session.LevelBeginner, true
	case labelIntermediate:
		return session.LevelIntermediate, true
	case labelAdvanced:
		return session.LevelAdvanced, true
	}
	return "", false
}

// chooseLevel — выбран уровень: запоминаем его, собираем викторину и
// задаём первый вопрос.
func (r *Router) chooseLevel(ctx context.Context, s session.Session, norm string) []Reply {
	level, ok := levelFromLabel(norm)
	if !ok {
		return []Reply{{Text: msgBadLevel}}
	}

	s.Level = level
	s.Mode = session.ModeQuiz
	r.saveSession(ctx, s)

	r.Quiz.Start(ctx, s.UserID, level)
	return r.askNextQuestion(ctx, s)
}

// checkQuizAnswer сверяет ответ и двигает викторину дальше.
func (r *Router) checkQuizAnswer(ctx context.Context, s session.Session, text string) []Reply {
	res, err := r.Quiz.Submit(s.UserID, text)
	if err != nil {
		// Ответ без активной викторины — нарушение контракта роутера.
		log.Printf("quiz submit user=%d: %v", s.UserID, err)
		r.resetToMenu(ctx, s.UserID)
		return []Reply{
			{Text: msgSomethingWrong},
			{Text: msgMenu, Keyboard: menuKeyboard()},
		}
	}

	var replies []Reply
	if res.Correct {
		replies = append(replies, Reply{Text: msgCorrect})
	} else {
		replies = append(replies, Reply{Text: fmt.Sprintf(msgIncorrect, res.Expected)})
	}
	return append(replies, r.askNextQuestion(ctx, s)...)
}

// askNextQuestion — следующий вопрос или итог с возвратом в меню.
func (r *Router) askNextQuestion(ctx context.Context, s session.Session) []Reply {
	if r.Quiz.IsComplete(s.UserID) {
		score, err := r.Quiz.FinalScore(s.UserID)
		if err != nil {
			log.Printf("quiz final score user=%d: %v", s.UserID, err)
		}
		total := r.Quiz.Total(s.UserID)
		r.recordResult(ctx, s, score, total)
		r.resetToMenu(ctx, s.UserID)
		return []Reply{
			{Text: fmt.Sprintf(msgQuizFinished, score, total)},
			{Text: msgMenu, Keyboard: menuKeyboard()},
		}
	}

	q, err := r.Quiz.Current(s.UserID)
	if err != nil {
		log.Printf("quiz current question user=%d: %v", s.UserID, err)
		r.resetToMenu(ctx, s.UserID)
		return []Reply{
			{Text: msgSomethingWrong},
			{Text: msgMenu, Keyboard: menuKeyboard()},
		}
	}
	return []Reply{{Text: fmt.Sprintf(msgQuestion, q.Source)}}
}

// translate переводит текст пользователя на английский. Исходный
// регистр сообщения сохраняется при отправке в модель.
func (r *Router) translate(ctx context.Context, s session.Session, text string) []Reply {
	if r.Translations != nil {
		if cached, err := r.Translations.Find(ctx, text, translationMaxAge); err == nil {
			return []Reply{{Text: fmt.Sprintf(msgTranslation, cached)}}
		} else if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("translation cache find: %v", err)
		}
	}

	out := r.LLM.Generate(ctx, s.UserID, fmt.Sprintf("Translate '%s' to English.", text))
	if out == "" {
		return []Reply{{Text: msgCantTranslate}}
	}

	if r.Translations != nil {
		if err := r.Translations.Upsert(ctx, text, out); err != nil {
			log.Printf("translation cache upsert: %v", err)
		}
	}
	return []Reply{{Text: fmt.Sprintf(msgTranslation, out)}}
}

// converse — практика разговора: первое сообщение задаёт тему,
// дальнейшие просто продолжают беседу.
func (r *Router) converse(ctx context.Context, s session.Session, text string) []Reply {
	var prompt string
	if s.AwaitingTopic {
		prompt = fmt.Sprintf("Let's practice conversation in English about the topic '%s'.", text)
		s.AwaitingTopic = false
		r.saveSession(ctx, s)
	} else {
		prompt = fmt.Sprintf("Continue the conversation: %s", text)
	}

	out := r.LLM.Generate(ctx, s.UserID, prompt)
	if out == "" {
		return []Reply{{Text: msgCantReply}}
	}
	return []Reply{{Text: out}}
}

func (r *Router) recordResult(ctx context.Context, s session.Session, score, total int) {
	if r.Results == nil {
		return
	}
	err := r.Results.Insert(ctx, store.QuizResult{
		UserID: s.UserID,
		Level:  string(s.Level),
		Score:  score,
		Total:  total,
	})
	if err != nil {
		log.Printf("quiz result insert user=%d: %v", s.UserID, err)
	}
}

func (r *Router) resetToMenu(ctx context.Context, userID int64) {
	r.Quiz.Reset(userID)
	s := r.getSession(ctx, userID)
	s.Mode = session.ModeNone
	s.AwaitingTopic = false
	r.saveSession(ctx, s)
}

func (r *Router) getSession(ctx context.Context, userID int64) session.Session {
	s, err := r.Sessions.Get(ctx, userID)
	if err != nil {
		log.Printf("session get user=%d: %v", userID, err)
		return session.Session{UserID: userID, Mode: session.ModeNone, Level: session.LevelBeginner}
	}
	return s
}

func (r *Router) saveSession(ctx context.Context, s session.Session) {
	if err := r.Sessions.Save(ctx, s); err != nil {
		log.Printf("session save user=%d: %v", s.UserID, err)
	}
}
