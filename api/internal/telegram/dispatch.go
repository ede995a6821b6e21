package telegram

import "sync"

// dispatcher раскладывает работу по очередям на пользователя:
// сообщения одного пользователя выполняются строго по порядку
// прихода, разные пользователи — параллельно. Очередь живёт до конца
// процесса, как и сессия.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*userQueue
}

// userQueue — неограниченная FIFO-очередь одного пользователя.
// submit лишь добавляет работу в список, поэтому цикл приёма апдейтов
// никогда не ждёт медленного пользователя.
type userQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64]*userQueue)}
}

func (d *dispatcher) submit(userID int64, fn func()) {
	d.mu.Lock()
	q, ok := d.queues[userID]
	if !ok {
		q = &userQueue{}
		d.queues[userID] = q
	}
	d.mu.Unlock()

	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if !q.running {
		q.running = true
		go q.drain()
	}
	q.mu.Unlock()
}

func (q *userQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		job()
	}
}
