package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Kamalllx/evacuate/internal/gateway"
	"github.com/Kamalllx/evacuate/internal/history"
	"github.com/Kamalllx/evacuate/internal/knowledge"
	"github.com/Kamalllx/evacuate/internal/pipeline"
)

// stubProcessor fabricates pipeline responses without any providers.
type stubProcessor struct {
	err      error
	detected string
	lastReq  pipeline.Request
}

func (p *stubProcessor) Process(ctx context.Context, req pipeline.Request) (*pipeline.Response, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	if p.detected != "" && req.AutoDetect && req.OnLanguageDetected != nil {
		req.OnLanguageDetected(p.detected)
	}
	return &pipeline.Response{
		OriginalText: "hello",
		Text:         "hello back",
		Language:     "en-IN",
		Timestamp:    time.Now().UTC(),
	}, nil
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// dial connects a test client to a fresh gateway server.
func dial(t *testing.T, proc gateway.Processor, hist *history.Store) (*websocket.Conn, func()) {
	t.Helper()
	srv := gateway.NewServer(proc, hist, knowledge.BuiltinCatalog(), nil)
	ts := httptest.NewServer(srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		cancel()
		ts.Close()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		conn.Close(websocket.StatusNormalClosure, "test done")
		cancel()
		ts.Close()
	}
}

// readEvent reads and decodes the next outbound envelope.
func readEvent(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode envelope %q: %v", data, err)
	}
	return env
}

// writeEvent sends one inbound envelope.
func writeEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	out, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// TestConnect_EmitsStatus verifies the connected greeting.
func TestConnect_EmitsStatus(t *testing.T) {
	conn, done := dial(t, &stubProcessor{}, history.NewStore())
	defer done()

	env := readEvent(t, conn)
	if env.Event != "status" {
		t.Fatalf("first event = %q, want status", env.Event)
	}
	if !strings.Contains(string(env.Data), "connected") {
		t.Errorf("status payload = %s", env.Data)
	}
}

// TestAudioMessage_RoundTrip verifies a full request/response exchange,
// including the mid-turn detected_language event.
func TestAudioMessage_RoundTrip(t *testing.T) {
	proc := &stubProcessor{detected: "hi-IN"}
	conn, done := dial(t, proc, history.NewStore())
	defer done()

	readEvent(t, conn) // status

	writeEvent(t, conn, "audio_message", map[string]any{
		"audio":       "UklGRg==",
		"auto_detect": true,
		"location_id": "taj_mahal",
	})

	env := readEvent(t, conn)
	if env.Event != "detected_language" {
		t.Fatalf("event = %q, want detected_language", env.Event)
	}
	if !strings.Contains(string(env.Data), "hi-IN") {
		t.Errorf("detected_language payload = %s", env.Data)
	}

	env = readEvent(t, conn)
	if env.Event != "response" {
		t.Fatalf("event = %q, want response", env.Event)
	}
	var resp pipeline.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "hello back" {
		t.Errorf("response text = %q", resp.Text)
	}

	if proc.lastReq.LocationID != "taj_mahal" || !proc.lastReq.AutoDetect {
		t.Errorf("processor request = %+v, want location and auto-detect forwarded", proc.lastReq)
	}
	if proc.lastReq.SessionKey == "" {
		t.Error("processor request has no session key")
	}
}

// TestAudioMessage_PipelineFailure verifies that a hard pipeline failure
// becomes a fixed error event without connection teardown.
func TestAudioMessage_PipelineFailure(t *testing.T) {
	proc := &stubProcessor{err: pipeline.ErrTranscription}
	conn, done := dial(t, proc, history.NewStore())
	defer done()

	readEvent(t, conn) // status

	writeEvent(t, conn, "audio_message", map[string]any{"audio": "UklGRg=="})

	env := readEvent(t, conn)
	if env.Event != "error" {
		t.Fatalf("event = %q, want error", env.Event)
	}
	if !strings.Contains(string(env.Data), "failed to convert audio to text") {
		t.Errorf("error payload = %s", env.Data)
	}

	// The connection stays usable.
	writeEvent(t, conn, "get_chat_history", map[string]any{})
	if env := readEvent(t, conn); env.Event != "chat_history" {
		t.Errorf("event after error = %q, want chat_history", env.Event)
	}
}

// TestAudioMessage_LargePayload verifies that a realistically sized audio
// clip, far past coder/websocket's 32 KiB default frame limit, still reaches
// the processor instead of tearing the connection down.
func TestAudioMessage_LargePayload(t *testing.T) {
	proc := &stubProcessor{}
	conn, done := dial(t, proc, history.NewStore())
	defer done()

	readEvent(t, conn) // status

	// ~512 KiB of base64 characters, the order of a 5-second WAV clip.
	bigAudio := strings.Repeat("UklGRg==", 64<<10)
	writeEvent(t, conn, "audio_message", map[string]any{"audio": bigAudio})

	env := readEvent(t, conn)
	if env.Event != "response" {
		t.Fatalf("event = %q, want response", env.Event)
	}
	if len(proc.lastReq.Audio) != len(bigAudio) {
		t.Errorf("processor received %d audio bytes, want %d", len(proc.lastReq.Audio), len(bigAudio))
	}
}

// TestAudioMessage_MissingAudio verifies payload validation.
func TestAudioMessage_MissingAudio(t *testing.T) {
	conn, done := dial(t, &stubProcessor{}, history.NewStore())
	defer done()

	readEvent(t, conn) // status

	writeEvent(t, conn, "audio_message", map[string]any{"language": "en-IN"})
	if env := readEvent(t, conn); env.Event != "error" {
		t.Errorf("event = %q, want error for missing audio", env.Event)
	}
}

// TestUnknownEvent verifies that unrecognised events yield an error event.
func TestUnknownEvent(t *testing.T) {
	conn, done := dial(t, &stubProcessor{}, history.NewStore())
	defer done()

	readEvent(t, conn) // status

	writeEvent(t, conn, "play_music", map[string]any{})
	if env := readEvent(t, conn); env.Event != "error" {
		t.Errorf("event = %q, want error for unknown event", env.Event)
	}
}

// TestStatusAndLocationsEndpoints verifies the REST side endpoints.
func TestStatusAndLocationsEndpoints(t *testing.T) {
	srv := gateway.NewServer(&stubProcessor{}, history.NewStore(), knowledge.BuiltinCatalog(), nil)
	mux := http.NewServeMux()
	srv.RegisterHTTP(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/status returned %d", resp.StatusCode)
	}
	var status map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode /status: %v", err)
	}
	if status["status"] != "online" {
		t.Errorf("status = %q, want online", status["status"])
	}

	resp2, err := http.Get(ts.URL + "/locations")
	if err != nil {
		t.Fatalf("GET /locations: %v", err)
	}
	defer resp2.Body.Close()
	var locations []map[string]string
	if err := json.NewDecoder(resp2.Body).Decode(&locations); err != nil {
		t.Fatalf("decode /locations: %v", err)
	}
	if len(locations) != 5 {
		t.Fatalf("/locations returned %d entries, want 5", len(locations))
	}
	if locations[0]["id"] != "taj_mahal" {
		t.Errorf("first location id = %q, want taj_mahal", locations[0]["id"])
	}
}
