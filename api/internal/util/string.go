package util

import "strings"

// StripCodeFences снимает обрамление ```...```, которое модели любят
// добавлять вокруг ответа.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Truncate обрезает строку до max рун с многоточием (лимит Telegram — 4096).
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
