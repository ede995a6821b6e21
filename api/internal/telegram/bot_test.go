package telegram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"english-bot/api/internal/llm"
	"english-bot/api/internal/llm/openai"
)

func newEngineTestBot(shared *openai.Provider) *Bot {
	return NewBot(nil, nil, llm.NewManager(shared), Providers{OpenAI: shared}, nil)
}

func TestSwitchEngineOverrideIsPerChat(t *testing.T) {
	shared := openai.New("key", "gpt-3.5-turbo")
	b := newEngineTestBot(shared)

	out := b.switchEngine(1, "openai", "gpt-4o")
	assert.Equal(t, "✅ Движок: openai (gpt-4o)", out)

	// общий экземпляр не тронут, другие чаты остаются на своей модели
	assert.Equal(t, "gpt-3.5-turbo", shared.Model)
	assert.Equal(t, "gpt-4o", b.Manager.Get(1).GetModel())
	assert.Equal(t, "gpt-3.5-turbo", b.Manager.Get(2).GetModel())
}

func TestSwitchEngineWithoutModelKeepsShared(t *testing.T) {
	shared := openai.New("key", "gpt-3.5-turbo")
	b := newEngineTestBot(shared)

	out := b.switchEngine(1, "openai", "")

	assert.Equal(t, "✅ Движок: openai (gpt-3.5-turbo)", out)
	require.Same(t, shared, b.Manager.Get(1).(*openai.Provider))
}

func TestSwitchEngineUnknownAndUnconfigured(t *testing.T) {
	b := newEngineTestBot(openai.New("key", "gpt-3.5-turbo"))

	assert.Equal(t, "Неизвестный движок. Доступны: openai | gemini | deepseek",
		b.switchEngine(1, "yandex", ""))
	assert.Equal(t, "❌ Gemini не настроен.", b.switchEngine(1, "gemini", ""))
	assert.Equal(t, "❌ DeepSeek не настроен.", b.switchEngine(1, "deepseek", ""))
}

// Смена модели в чате одного пользователя идёт параллельно с работой
// другого пользователя на том же провайдере; под -race здесь не должно
// быть ни записи в общий экземпляр, ни гонки с его чтением.
func TestSwitchEngineConcurrentWithOtherChats(t *testing.T) {
	shared := openai.New("key", "gpt-3.5-turbo")
	b := newEngineTestBot(shared)

	var wg sync.WaitGroup
	wg.Add(2)
	b.disp.submit(1, func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			b.switchEngine(1, "openai", "gpt-4o")
		}
	})
	b.disp.submit(2, func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = b.Manager.Get(2).GetModel()
		}
	})
	wg.Wait()

	assert.Equal(t, "gpt-3.5-turbo", shared.Model)
	assert.Equal(t, "gpt-4o", b.Manager.Get(1).GetModel())
}
