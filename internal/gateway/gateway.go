// Package gateway exposes the voice-conversation service over WebSocket and
// HTTP.
//
// Each WebSocket connection is one conversation session: a fresh session key
// is assigned at accept, the read loop processes one inbound event at a
// time (serialising pipeline executions for that session), and the
// session's history is discarded when the connection closes.
//
// Events travel as JSON envelopes { "event": string, "data": object }.
// Inbound: audio_message, get_chat_history, reset_chat. Outbound: status,
// detected_language, response, chat_history, error. Error payloads carry
// fixed messages only; upstream failure detail stays in the logs.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Kamalllx/evacuate/internal/history"
	"github.com/Kamalllx/evacuate/internal/knowledge"
	"github.com/Kamalllx/evacuate/internal/observe"
	"github.com/Kamalllx/evacuate/internal/pipeline"
)

// Processor runs one voice turn. Implemented by [pipeline.Pipeline].
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Server handles WebSocket sessions and the REST side endpoints.
type Server struct {
	processor Processor
	history   *history.Store
	catalog   *knowledge.Catalog
	metrics   *observe.Metrics
}

// NewServer creates a gateway Server. metrics may be nil.
func NewServer(processor Processor, hist *history.Store, catalog *knowledge.Catalog, metrics *observe.Metrics) *Server {
	return &Server{
		processor: processor,
		history:   hist,
		catalog:   catalog,
		metrics:   metrics,
	}
}

// maxInboundBytes bounds one inbound frame. Voice clips arrive
// base64-encoded inside the JSON envelope and grow fast: a minute of 22 kHz
// 16-bit mono WAV is ~2.6 MiB raw, ~3.5 MiB encoded. The library default of
// 32 KiB would reject any realistic audio_message.
const maxInboundBytes = 16 << 20

// envelope is the wire format for every WebSocket event, both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// audioMessage is the payload of an inbound audio_message event.
type audioMessage struct {
	Audio      string `json:"audio"`
	Language   string `json:"language,omitempty"`
	AutoDetect bool   `json:"auto_detect,omitempty"`
	LocationID string `json:"location_id,omitempty"`
}

// ServeHTTP upgrades the request to a WebSocket session and runs its event
// loop until the client disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Browser clients connect from arbitrary origins in development;
		// deployments front this with their own origin policy.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(maxInboundBytes)

	sessionKey := uuid.NewString()
	ctx := r.Context()

	s.metrics.AddActiveSessions(ctx, 1)
	slog.Info("session connected", "session", sessionKey)

	defer func() {
		s.history.Reset(sessionKey)
		s.metrics.AddActiveSessions(context.WithoutCancel(ctx), -1)
		conn.Close(websocket.StatusNormalClosure, "session closed")
		slog.Info("session closed", "session", sessionKey)
	}()

	s.send(ctx, conn, "status", map[string]string{"status": "connected"})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				slog.Warn("websocket read failed", "session", sessionKey, "error", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(ctx, conn, "malformed event envelope")
			continue
		}
		s.dispatch(ctx, conn, sessionKey, env)
	}
}

// dispatch routes one inbound event. Events are handled sequentially, which
// keeps at most one pipeline execution in flight per session.
func (s *Server) dispatch(ctx context.Context, conn *websocket.Conn, sessionKey string, env envelope) {
	switch env.Event {
	case "audio_message":
		s.handleAudioMessage(ctx, conn, sessionKey, env.Data)

	case "get_chat_history":
		s.send(ctx, conn, "chat_history", s.history.Get(sessionKey))

	case "reset_chat":
		s.history.Reset(sessionKey)
		s.send(ctx, conn, "status", map[string]string{"status": "chat reset"})

	default:
		slog.Warn("unknown event", "session", sessionKey, "event", env.Event)
		s.sendError(ctx, conn, "unknown event")
	}
}

// handleAudioMessage runs the pipeline for one voice turn and emits the
// response, plus a detected_language event when auto-detection resolves.
func (s *Server) handleAudioMessage(ctx context.Context, conn *websocket.Conn, sessionKey string, data json.RawMessage) {
	var msg audioMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(ctx, conn, "malformed audio_message payload")
		return
	}
	if msg.Audio == "" {
		s.sendError(ctx, conn, "audio_message carries no audio")
		return
	}

	resp, err := s.processor.Process(ctx, pipeline.Request{
		SessionKey: sessionKey,
		Audio:      msg.Audio,
		Language:   msg.Language,
		AutoDetect: msg.AutoDetect,
		LocationID: msg.LocationID,
		OnLanguageDetected: func(language string) {
			s.send(ctx, conn, "detected_language", map[string]string{"language": language})
		},
	})
	if err != nil {
		slog.Error("voice turn failed", "session", sessionKey, "error", err)
		s.sendError(ctx, conn, "failed to convert audio to text")
		return
	}

	s.send(ctx, conn, "response", resp)
}

// send writes one outbound event envelope. Write failures are logged, not
// surfaced; the read loop notices a dead connection on its next read.
func (s *Server) send(ctx context.Context, conn *websocket.Conn, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("marshal outbound event", "event", event, "error", err)
		return
	}
	out, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		slog.Error("marshal outbound envelope", "event", event, "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		slog.Warn("websocket write failed", "event", event, "error", err)
	}
}

// sendError emits an error event with a fixed, client-safe message.
func (s *Server) sendError(ctx context.Context, conn *websocket.Conn, message string) {
	s.send(ctx, conn, "error", map[string]string{"message": message})
}

// ─── REST side endpoints ─────────────────────────────────────────────────────

// locationSummary is one entry of the /locations listing.
type locationSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// RegisterHTTP mounts the REST endpoints on mux: /status (service liveness
// with timestamp) and /locations (the knowledge catalogue summary).
func (s *Server) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /locations", s.handleLocations)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "online",
		"message":   "Travel Guide voice service is available",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	topics := s.catalog.Topics()
	out := make([]locationSummary, len(topics))
	for i, t := range topics {
		out[i] = locationSummary{
			ID:          t.ID,
			Name:        t.Name,
			Location:    t.Location,
			Description: t.Description,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "error", err)
	}
}
