package server

import (
	"encoding/json"
	"sync"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// PointsEvent is published to a job's subscribers when points are added.
type PointsEvent struct {
	Type    string         `json:"type"`
	Source  string         `json:"source"`
	Points  []survey.Point `json:"points"`
	Total   int            `json:"total"`
	Version uint64         `json:"version"`
}

// Broker is an in-process pub/sub for SSE events, keyed by job slug.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the job.
func (b *Broker) Subscribe(job string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[job] == nil {
		b.subs[job] = make(map[chan []byte]struct{})
	}
	b.subs[job][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(job string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[job], ch)
	if len(b.subs[job]) == 0 {
		delete(b.subs, job)
	}
	b.mu.Unlock()
}

// Subscribers reports how many listeners a job has.
func (b *Broker) Subscribers(job string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[job])
}

// Publish sends an event to all subscribers of the job.
func (b *Broker) Publish(job string, event PointsEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[job] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
