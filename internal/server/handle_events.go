package server

import (
	"fmt"
	"net/http"
	"time"
)

const eventPingInterval = 30 * time.Second

// handleEvents streams PointsEvent messages for one job as Server-Sent
// Events. Clients re-fetch derived views when an event arrives.
func handleEvents(broker *Broker, m *metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		job := jobFrom(r).Slug
		version := jobStore(r).Version()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe(job)
		defer broker.Unsubscribe(job, ch)
		m.subscribers.Inc()
		defer m.subscribers.Dec()

		// Tell the client which snapshot it is starting from.
		fmt.Fprintf(w, "event: hello\ndata: {\"version\":%d}\n\n", version)
		flusher.Flush()

		ping := time.NewTicker(eventPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: points\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
