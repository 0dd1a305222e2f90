package sqlitestore

import (
	"context"
	"sync"
)

// hub fans commit notifications out to live queries. Each subscriber owns a
// goroutine and a one-slot channel, so bursts of writes coalesce into a
// single refresh.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	wake   chan struct{}
	cancel context.CancelFunc
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *hub) subscribe(parent context.Context, path string, refresh func(ctx context.Context)) func() {
	ctx, cancel := context.WithCancel(parent)
	sub := &subscriber{wake: make(chan struct{}, 1), cancel: cancel}
	sub.wake <- struct{}{}

	h.mu.Lock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[*subscriber]struct{})
	}
	h.subs[path][sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
				refresh(ctx)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			h.mu.Lock()
			delete(h.subs[path], sub)
			if len(h.subs[path]) == 0 {
				delete(h.subs, path)
			}
			h.mu.Unlock()
		})
	}
	// A cancelled parent releases the entry even if stop is never called.
	context.AfterFunc(ctx, stop)
	return stop
}

func (h *hub) notify(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[path] {
		select {
		case sub.wake <- struct{}{}:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for path, subs := range h.subs {
		for sub := range subs {
			sub.cancel()
		}
		delete(h.subs, path)
	}
}
