package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const liveIdleTimeout = 120 * time.Second

// liveMessage is sent by the web UI whenever one of its inputs changes.
type liveMessage struct {
	Type    string          `json:"type"` // "estimate", "compare", "ping"
	Payload json.RawMessage `json:"payload,omitempty"`
}

type liveResponse struct {
	Type    string      `json:"type"` // "estimate", "compare", "error", "pong"
	Payload interface{} `json:"payload,omitempty"`
}

type liveError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// checkOrigin accepts same-host requests, clients that send no Origin and
// the configured CORS origins.
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return lo.Contains(allowed, "*") || lo.Contains(allowed, origin)
	}
}

func (h *handler) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("op", "server.handleLive"),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	h.logger.Debug("live connection established",
		zap.String("op", "server.handleLive"),
		zap.String("remote", conn.RemoteAddr().String()),
	)

	conn.SetReadLimit(h.maxBodySize)
	_ = conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))
	})

	for {
		var msg liveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("live connection read failed",
					zap.String("op", "server.handleLive"),
					zap.Error(err),
				)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))

		if err := conn.WriteJSON(h.liveReply(msg)); err != nil {
			h.logger.Warn("live connection write failed",
				zap.String("op", "server.handleLive"),
				zap.Error(err),
			)
			return
		}
	}
}

func (h *handler) liveReply(msg liveMessage) liveResponse {
	if msg.Type == "ping" {
		return liveResponse{Type: "pong"}
	}
	if msg.Type != "estimate" && msg.Type != "compare" {
		return liveResponse{Type: "error", Payload: liveError{Code: "unknown_type", Message: "unknown message type: " + msg.Type}}
	}

	in := h.defaults
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			return liveResponse{Type: "error", Payload: liveError{Code: "invalid_payload", Message: err.Error()}}
		}
	}
	if err := checkFinite(in); err != nil {
		return liveResponse{Type: "error", Payload: liveError{Code: "invalid_payload", Message: err.Error()}}
	}

	var (
		payload interface{}
		err     error
	)
	if msg.Type == "compare" {
		payload, err = buildComparison(in)
	} else {
		payload, err = buildEstimate(in)
	}
	if err != nil {
		return liveResponse{Type: "error", Payload: liveError{Code: "out_of_range", Message: err.Error()}}
	}
	return liveResponse{Type: msg.Type, Payload: payload}
}
