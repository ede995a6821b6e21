package telegram

import (
	"context"
	"errors"
	"log"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return 2 * time.Second
		}
	}
	return 1 * time.Second
}

// RunPolling крутит long polling с backoff, без log.Fatal по транзиентным
// ошибкам.
func (b *Bot) RunPolling(ctx context.Context) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := b.API.GetUpdates(u)
		if err != nil {
			d := retryDelayFromError(err)
			if d < baseDelay {
				d = baseDelay
			}
			if d > maxDelay {
				d = maxDelay
			}
			log.Printf("polling error: %v; retry in %v", err, d)
			time.Sleep(d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.HandleUpdate(upd)
		}

		if len(updates) == 0 {
			time.Sleep(200 * time.Millisecond)
		}
	}
}
