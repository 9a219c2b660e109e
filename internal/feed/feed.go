// Package feed broadcasts the current product list to connected clients
// whenever the catalog or a cart changes.
package feed

import (
	"io"
	"log"
	"sync"

	"storefront/internal/domain"
)

// Hub fans a published product list out to every subscriber. Slow
// subscribers miss intermediate updates rather than blocking the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan []domain.Product]struct{}
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		subs:   make(map[chan []domain.Product]struct{}),
		logger: logger,
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (h *Hub) Subscribe() (<-chan []domain.Product, func()) {
	ch := make(chan []domain.Product, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the product list to every subscriber. A subscriber whose
// buffer is full has its stale update replaced with the fresh one.
func (h *Hub) Publish(products []domain.Product) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- products:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- products
		}
	}
	h.logger.Printf("feed: published %d products to %d subscribers", len(products), len(h.subs))
}

// Subscribers reports the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
