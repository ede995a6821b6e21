package llm

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"english-bot/api/internal/util"
)

// Gateway — точка входа для всей генерации текста в боте.
// Ошибки провайдера не выходят наружу: вызов деградирует до пустой строки,
// сбой считается и логируется. Пустой результат для вызывающего кода
// означает «пригодного ответа нет».
type Gateway struct {
	providers *Manager
	failures  atomic.Int64
}

func NewGateway(providers *Manager) *Gateway {
	return &Gateway{providers: providers}
}

func (g *Gateway) Generate(ctx context.Context, userID int64, prompt string) string {
	p := g.providers.Get(userID)
	out, err := p.Complete(ctx, prompt)
	if err != nil {
		g.failures.Add(1)
		log.Printf("llm %s (%s): %v", p.Name(), p.GetModel(), err)
		return ""
	}
	return strings.TrimSpace(util.StripCodeFences(out))
}

// Failures — счётчик сбоев провайдеров с момента старта процесса.
func (g *Gateway) Failures() int64 {
	return g.failures.Load()
}
