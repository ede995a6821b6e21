package telegram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"english-bot/api/internal/dialog"
	"english-bot/api/internal/llm"
	"english-bot/api/internal/llm/deepseek"
	"english-bot/api/internal/llm/gemini"
	"english-bot/api/internal/llm/openai"
	"english-bot/api/internal/store"
	"english-bot/api/internal/util"
)

// Запас до лимита Telegram в 4096 символов.
const maxMessageLen = 3900

// Providers — сконструированные клиенты моделей; переключаются
// командой /engine. Неподключённый провайдер — nil.
type Providers struct {
	OpenAI   *openai.Provider
	Gemini   *gemini.Provider
	Deepseek *deepseek.Provider
}

// Bot связывает Telegram-апдейты с диалоговым роутером. Вся доставка
// сообщений и клавиатур — здесь, роутер про Telegram не знает.
type Bot struct {
	API       *tgbotapi.BotAPI
	Router    *dialog.Router
	Manager   *llm.Manager
	Providers Providers
	Results   *store.QuizResultRepo // nil без Postgres

	disp *dispatcher
}

func NewBot(api *tgbotapi.BotAPI, router *dialog.Router, manager *llm.Manager, providers Providers, results *store.QuizResultRepo) *Bot {
	return &Bot{
		API:       api,
		Router:    router,
		Manager:   manager,
		Providers: providers,
		Results:   results,
		disp:      newDispatcher(),
	}
}

// HandleUpdate ставит апдейт в очередь его пользователя и возвращается.
func (b *Bot) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}
	cid := upd.Message.Chat.ID
	b.disp.submit(cid, func() {
		b.process(cid, upd)
	})
}

func (b *Bot) process(cid int64, upd tgbotapi.Update) {
	ctx := context.Background()
	text := upd.Message.Text

	if upd.Message.IsCommand() {
		b.handleCommand(ctx, cid, upd)
		return
	}

	b.sendReplies(cid, b.Router.HandleMessage(ctx, cid, text))
}

func (b *Bot) handleCommand(ctx context.Context, cid int64, upd tgbotapi.Update) {
	switch upd.Message.Command() {
	case "start":
		b.sendReplies(cid, b.Router.Start(ctx, cid))
	case "menu", "exit":
		b.sendReplies(cid, b.Router.Menu(ctx, cid))
	case "engine":
		b.handleEngineCommand(cid, upd.Message.Text)
	case "stats":
		b.handleStats(ctx, cid)
	case "health":
		b.send(cid, "✅ OK")
	default:
		b.send(cid, "Неизвестная команда")
	}
}

// handleEngineCommand переключает провайдера генерации для чата.
// Форматы:
//
//	/engine openai [model]
//	/engine gemini [model]
//	/engine deepseek [model]
func (b *Bot) handleEngineCommand(cid int64, cmd string) {
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(cmd, "/engine")))
	if len(args) == 0 {
		cur := b.Manager.Get(cid)
		b.send(cid, "Текущий движок: "+cur.Name()+" ("+cur.GetModel()+")"+
			"\nИспользование:\n/engine openai [model]\n/engine gemini [model]\n/engine deepseek [model]")
		return
	}
	name := strings.ToLower(args[0])
	var mdl string
	if len(args) > 1 {
		mdl = strings.TrimSpace(args[1])
	}
	b.send(cid, b.switchEngine(cid, name, mdl))
}

// switchEngine закрепляет провайдера за чатом. Общие экземпляры не
// мутируются: очереди пользователей работают параллельно, а смена
// модели одним чатом не должна задевать остальных — при переопределении
// модели чат получает собственный экземпляр.
func (b *Bot) switchEngine(cid int64, name, mdl string) string {
	switch name {
	case "openai", "gpt":
		if b.Providers.OpenAI == nil {
			return "❌ OpenAI не настроен."
		}
		p := b.Providers.OpenAI
		if mdl != "" {
			p = openai.New(p.APIKey, mdl)
		}
		b.Manager.Set(cid, p)
		return "✅ Движок: openai (" + p.Model + ")"
	case "gemini":
		if b.Providers.Gemini == nil {
			return "❌ Gemini не настроен."
		}
		p := b.Providers.Gemini
		if mdl != "" {
			p = gemini.New(p.APIKey, mdl)
		}
		b.Manager.Set(cid, p)
		return "✅ Движок: gemini (" + p.Model + ")"
	case "deepseek":
		if b.Providers.Deepseek == nil {
			return "❌ DeepSeek не настроен."
		}
		p := b.Providers.Deepseek
		if mdl != "" {
			p = deepseek.New(p.APIKey, mdl)
		}
		b.Manager.Set(cid, p)
		return "✅ Движок: deepseek (" + p.Model + ")"
	default:
		return "Неизвестный движок. Доступны: openai | gemini | deepseek"
	}
}

func (b *Bot) handleStats(ctx context.Context, cid int64) {
	if b.Results == nil {
		b.send(cid, "История викторин не ведётся: база данных не подключена.")
		return
	}

	recent, err := b.Results.Recent(ctx, cid, 5)
	if err != nil {
		log.Printf("quiz results recent user=%d: %v", cid, err)
		b.send(cid, "Не получилось достать статистику, попробуй позже.")
		return
	}
	if len(recent) == 0 {
		b.send(cid, "Ты ещё не проходил викторину. Выбери «Викторина по словарному запасу» в меню!")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Твои последние викторины:\n")
	for _, res := range recent {
		fmt.Fprintf(&sb, "• %s — %d из %d (%s)\n",
			res.CreatedAt.Format("02.01.2006"), res.Score, res.Total, levelRu(res.Level))
	}

	if best, err := b.Results.Best(ctx, cid); err == nil {
		fmt.Fprintf(&sb, "\n🏆 Лучший результат: %d из %d", best.Score, best.Total)
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Printf("quiz results best user=%d: %v", cid, err)
	}
	b.send(cid, sb.String())
}

func levelRu(level string) string {
	switch level {
	case "beginner":
		return "начальный"
	case "intermediate":
		return "средний"
	case "advanced":
		return "продвинутый"
	}
	return level
}

func (b *Bot) sendReplies(cid int64, replies []dialog.Reply) {
	for _, r := range replies {
		msg := tgbotapi.NewMessage(cid, util.Truncate(r.Text, maxMessageLen))
		if len(r.Keyboard) > 0 {
			msg.ReplyMarkup = makeReplyKeyboard(r.Keyboard)
		}
		if _, err := b.API.Send(msg); err != nil {
			log.Printf("send to %d: %v", cid, err)
		}
	}
}

func (b *Bot) send(cid int64, text string) {
	b.sendReplies(cid, []dialog.Reply{{Text: text}})
}

func makeReplyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	var kb [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		var btns []tgbotapi.KeyboardButton
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kb = append(kb, btns)
	}
	markup := tgbotapi.NewReplyKeyboard(kb...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}
