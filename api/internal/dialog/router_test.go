package dialog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"english-bot/api/internal/quiz"
	"english-bot/api/internal/session"
)

// fakeLLM запоминает промпты и отвечает по словарю.
type fakeLLM struct {
	replies map[string]string
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, _ int64, prompt string) string {
	f.prompts = append(f.prompts, prompt)
	return f.replies[prompt]
}

func newTestRouter() (*Router, *fakeLLM, session.Store) {
	words := map[string]string{
		"яблоко":    "apple",
		"дом":       "house",
		"мир":       "world",
		"открывать": "discover",
		"красивый":  "beautiful",
	}
	replies := make(map[string]string, len(words))
	for ru, en := range words {
		replies[fmt.Sprintf("Translate the word '%s' to English.", ru)] = en
	}
	replies["Translate 'привет' to English."] = "hello"

	llm := &fakeLLM{replies: replies}
	sessions := session.NewMemoryStore()
	r := &Router{
		Sessions: sessions,
		Quiz:     quiz.NewEngine(llm),
		LLM:      llm,
	}
	return r, llm, sessions
}

func mode(t *testing.T, s session.Store, userID int64) session.Mode {
	t.Helper()
	sess, err := s.Get(context.Background(), userID)
	require.NoError(t, err)
	return sess.Mode
}

func TestUnknownInputInMenu(t *testing.T) {
	r, _, sessions := newTestRouter()

	replies := r.HandleMessage(context.Background(), 1, "что-то непонятное")

	require.Len(t, replies, 1)
	assert.Equal(t, msgChooseOption, replies[0].Text)
	assert.Equal(t, session.ModeNone, mode(t, sessions, 1))
}

func TestEnterTranslatingAndTranslate(t *testing.T) {
	r, llm, sessions := newTestRouter()
	ctx := context.Background()

	replies := r.HandleMessage(ctx, 1, "Перевод")
	require.Len(t, replies, 1)
	assert.Equal(t, msgSendText, replies[0].Text)
	assert.Equal(t, session.ModeTranslating, mode(t, sessions, 1))

	replies = r.HandleMessage(ctx, 1, "привет")
	require.Len(t, replies, 1)
	assert.Equal(t, "Перевод: hello", replies[0].Text)
	// исходный регистр уходит в модель как есть
	assert.Equal(t, []string{"Translate 'привет' to English."}, llm.prompts)
	// режим перевода не сбрасывается после ответа
	assert.Equal(t, session.ModeTranslating, mode(t, sessions, 1))
}

func TestTranslateDegraded(t *testing.T) {
	r, _, _ := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "перевод")
	replies := r.HandleMessage(ctx, 1, "неизвестный текст")

	require.Len(t, replies, 1)
	assert.Equal(t, msgCantTranslate, replies[0].Text)
}

func TestMenuFromTranslatingSkipsGateway(t *testing.T) {
	r, llm, sessions := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "перевод")
	replies := r.HandleMessage(ctx, 1, "МЕНЮ")

	require.Len(t, replies, 1)
	assert.Equal(t, msgMenu, replies[0].Text)
	assert.NotEmpty(t, replies[0].Keyboard)
	assert.Equal(t, session.ModeNone, mode(t, sessions, 1))
	// слово «меню» не ушло на перевод
	assert.Empty(t, llm.prompts)
}

func TestQuizFullScenario(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	replies := r.HandleMessage(ctx, 1, "Викторина по словарному запасу")
	require.Len(t, replies, 1)
	assert.Equal(t, msgChooseLevel, replies[0].Text)
	assert.Equal(t, session.ModeChoosingLevel, mode(t, sessions, 1))

	replies = r.HandleMessage(ctx, 1, "Начальный")
	require.Len(t, replies, 1)
	assert.Equal(t, "Как будет на английском: 'яблоко'?", replies[0].Text)
	assert.Equal(t, session.ModeQuiz, mode(t, sessions, 1))

	sess, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.LevelBeginner, sess.Level)

	// первый ответ неверный
	replies = r.HandleMessage(ctx, 1, "banana")
	require.Len(t, replies, 2)
	assert.Equal(t, "Неверно. Правильный ответ был: apple.", replies[0].Text)
	assert.Equal(t, "Как будет на английском: 'дом'?", replies[1].Text)

	// дальше четыре верных
	for _, answer := range []string{"house", "world", "discover"} {
		replies = r.HandleMessage(ctx, 1, answer)
		require.Len(t, replies, 2)
		assert.Equal(t, msgCorrect, replies[0].Text)
		assert.True(t, strings.HasPrefix(replies[1].Text, "Как будет на английском:"))
	}

	replies = r.HandleMessage(ctx, 1, "beautiful")
	require.Len(t, replies, 3)
	assert.Equal(t, msgCorrect, replies[0].Text)
	assert.Equal(t, "Викторина окончена! Ты правильно ответил на 4 из 5 слов.", replies[1].Text)
	assert.Equal(t, msgMenu, replies[2].Text)
	assert.Equal(t, session.ModeNone, mode(t, sessions, 1))
}

func TestMenuFromQuizClearsProgress(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "викторина по словарному запасу")
	r.HandleMessage(ctx, 1, "начальный")
	r.HandleMessage(ctx, 1, "apple") // 1 из 1

	r.HandleMessage(ctx, 1, "меню")
	assert.Equal(t, session.ModeNone, mode(t, sessions, 1))

	// повторный заход — свежая викторина с первого вопроса
	r.HandleMessage(ctx, 1, "викторина по словарному запасу")
	replies := r.HandleMessage(ctx, 1, "средний")
	require.Len(t, replies, 1)
	assert.Equal(t, "Как будет на английском: 'яблоко'?", replies[0].Text)

	sess, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.LevelIntermediate, sess.Level)
}

func TestBadLevelReprompts(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "викторина по словарному запасу")
	replies := r.HandleMessage(ctx, 1, "экспертный")

	require.Len(t, replies, 1)
	assert.Equal(t, msgBadLevel, replies[0].Text)
	assert.Equal(t, session.ModeChoosingLevel, mode(t, sessions, 1))
}

func TestConversationTopicThenContinue(t *testing.T) {
	r, llm, sessions := newTestRouter()
	ctx := context.Background()
	llm.replies["Let's practice conversation in English about the topic 'Travel'."] = "Great, let's talk about travel!"
	llm.replies["Continue the conversation: I like trains"] = "Trains are wonderful."

	replies := r.HandleMessage(ctx, 1, "Практика разговора")
	require.Len(t, replies, 1)
	assert.Equal(t, msgAskTopic, replies[0].Text)
	assert.Equal(t, session.ModeConversation, mode(t, sessions, 1))
	assert.Empty(t, llm.prompts)

	replies = r.HandleMessage(ctx, 1, "Travel")
	require.Len(t, replies, 1)
	assert.Equal(t, "Great, let's talk about travel!", replies[0].Text)

	replies = r.HandleMessage(ctx, 1, "I like trains")
	require.Len(t, replies, 1)
	assert.Equal(t, "Trains are wonderful.", replies[0].Text)

	require.Equal(t, []string{
		"Let's practice conversation in English about the topic 'Travel'.",
		"Continue the conversation: I like trains",
	}, llm.prompts)
	assert.Equal(t, session.ModeConversation, mode(t, sessions, 1))
}

func TestQuizAnswerWithoutSessionApologizes(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	// Сессия говорит «викторина», а движок про неё не знает.
	require.NoError(t, sessions.Save(ctx, session.Session{UserID: 7, Mode: session.ModeQuiz}))

	replies := r.HandleMessage(ctx, 7, "apple")
	require.Len(t, replies, 2)
	assert.Equal(t, msgSomethingWrong, replies[0].Text)
	assert.Equal(t, msgMenu, replies[1].Text)
	assert.Equal(t, session.ModeNone, mode(t, sessions, 7))
}

func TestStartGreetsAndResets(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "перевод")
	replies := r.Start(ctx, 1)

	require.Len(t, replies, 1)
	assert.Equal(t, msgGreeting, replies[0].Text)
	assert.NotEmpty(t, replies[0].Keyboard)
	assert.Equal(t, session.ModeNone, mode(t, sessions, 1))
}

func TestUsersAreIndependent(t *testing.T) {
	r, _, sessions := newTestRouter()
	ctx := context.Background()

	r.HandleMessage(ctx, 1, "перевод")
	r.HandleMessage(ctx, 2, "викторина по словарному запасу")

	assert.Equal(t, session.ModeTranslating, mode(t, sessions, 1))
	assert.Equal(t, session.ModeChoosingLevel, mode(t, sessions, 2))
}
