package chat

import "sync"

// Locker serializes work per key. Waiters for the same key are released in
// the order they called Lock; different keys never block each other.
type Locker struct {
	mu     sync.Mutex
	queues map[string][]chan struct{}
}

// NewLocker creates an empty locker.
func NewLocker() *Locker {
	return &Locker{queues: make(map[string][]chan struct{})}
}

// Lock blocks until key is free and returns the matching unlock function.
func (l *Locker) Lock(key string) func() {
	ticket := make(chan struct{})

	l.mu.Lock()
	queue := l.queues[key]
	l.queues[key] = append(queue, ticket)
	if len(queue) == 0 {
		close(ticket)
	}
	l.mu.Unlock()

	<-ticket

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key) })
	}
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	queue := l.queues[key]
	if len(queue) <= 1 {
		delete(l.queues, key)
		return
	}
	queue[0] = nil
	queue = queue[1:]
	l.queues[key] = queue
	close(queue[0])
}
