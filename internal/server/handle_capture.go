package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const captureSessionTimeout = 12 * time.Hour

// CaptureMessage is one frame a field device sends over the capture socket.
type CaptureMessage struct {
	Points []survey.Point `json:"points"`
}

// CaptureAck answers every frame.
type CaptureAck struct {
	CaptureResponse
	Error string `json:"error,omitempty"`
}

// handleCaptureSocket keeps a WebSocket open to a data collector. Each JSON
// frame carries a batch of points; each is acknowledged with the running
// totals. An empty or oversized batch gets an error ack and the connection
// stays open; malformed JSON closes it. Browser handshakes must come from
// the server's own origin or one of originHosts.
func handleCaptureSocket(logger *slog.Logger, broker *Broker, m *metrics, originHosts []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, store, collector := jobFrom(r).Slug, jobStore(r), adminFrom(r).Email

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originHosts,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), captureSessionTimeout)
		defer cancel()

		logger.Info("capture socket opened", "job", job, "by", collector)
		for {
			var msg CaptureMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
					logger.Info("capture socket closed", "job", job)
				} else {
					logger.Debug("capture socket read ended", "job", job, "error", err)
				}
				return
			}

			var ack CaptureAck
			switch {
			case len(msg.Points) == 0:
				ack.Error = "frame has no points"
			case len(msg.Points) > maxCaptureBatch:
				ack.Error = "too many points in one frame"
			default:
				batch := normalizeCaptured(msg.Points, collector, time.Now().UTC())
				resp, err := appendPoints(ctx, job, store, batch, "socket", broker, m)
				if err != nil {
					logger.Error("capturing points", "job", job, "error", err)
					ack.Error = "internal error"
				}
				ack.CaptureResponse = resp
			}

			if err := wsjson.Write(ctx, conn, ack); err != nil {
				logger.Debug("capture socket write failed", "job", job, "error", err)
				return
			}
		}
	}
}

// captureOriginPatterns turns allowed CORS origins into the host patterns the
// WebSocket handshake checks. A bare host or "*" passes through unchanged.
func captureOriginPatterns(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		if o != "" {
			hosts = append(hosts, o)
		}
	}
	return hosts
}
