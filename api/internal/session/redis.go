package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore держит сессии в Redis (hash на пользователя).
type RedisStore struct {
	rdb *redis.Client
}

// ConnectRedis создаёт клиент и проверяет соединение.
func ConnectRedis(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis недоступен: %v", err)
	}
	log.Printf("redis connected: %s", addr)
	return &RedisStore{rdb: rdb}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (Session, error) {
	vals, err := r.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return Session{}, err
	}
	s := Session{UserID: userID, Mode: ModeNone, Level: LevelBeginner}
	if v, ok := vals["mode"]; ok {
		s.Mode = Mode(v)
	}
	if v, ok := vals["level"]; ok && v != "" {
		s.Level = Level(v)
	}
	if v, ok := vals["awaiting_topic"]; ok {
		s.AwaitingTopic = v == "1"
	}
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	topic := "0"
	if s.AwaitingTopic {
		topic = "1"
	}
	return r.rdb.HSet(ctx, sessionKey(s.UserID),
		"mode", string(s.Mode),
		"level", string(s.Level),
		"awaiting_topic", topic,
	).Err()
}
