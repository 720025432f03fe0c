package server

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/hub"
	"github.com/soar/padremap/internal/remap"
)

const padID gamepad.ID = "0-03000000-5e04-0000-8e02-000000007200"

type fakeService struct {
	controls map[assign.Mode]string
	block    bool
}

func (svc *fakeService) Devices() []gamepad.ID {
	return []gamepad.ID{padID}
}

func (svc *fakeService) Assign(ctx context.Context, id gamepad.ID, mode assign.Mode) (string, error) {
	if id != padID {
		return "", &gamepad.E{C: gamepad.ErrDeviceUnavailable, Op: "resolve"}
	}
	if svc.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return svc.controls[mode], nil
}

func (svc *fakeService) Subscribe(l gamepad.Listener) func() {
	return func() {}
}

var _ remap.Service = (*fakeService)(nil)

func newTestServer(t *testing.T, svc remap.Service, frontend fstest.MapFS) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := hub.NewHub(nil)
	go h.Run(ctx)

	b := hub.NewBroadcaster(h, svc)

	var fsys fs.FS
	if frontend != nil {
		fsys = frontend
	}

	srv := New(h, b, svc, fsys, "", time.Second, nil)
	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) hub.WSMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg hub.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketAssign(t *testing.T) {
	assert := assert.New(t)

	svc := &fakeService{controls: map[assign.Mode]string{
		assign.ModeButton: "B",
		assign.ModeStick:  "Left",
	}}
	ts := newTestServer(t, svc, nil)
	conn := dial(t, ts)

	msg := readMessage(t, conn)
	assert.Equal("devices", msg.Type)
	assert.Equal([]gamepad.ID{padID}, msg.Devices)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "assign", ID: padID, Mode: "stick"}))

	msg = readMessage(t, conn)
	assert.Equal("assigned", msg.Type)
	assert.Equal("Left", msg.Control)
	assert.Equal("stick", msg.Mode)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "assign", ID: "1-bogus", Mode: "button"}))

	msg = readMessage(t, conn)
	assert.Equal("error", msg.Type)
	assert.Equal(string(gamepad.ErrDeviceUnavailable), msg.Error)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "assign", ID: padID, Mode: "keyboard"}))

	msg = readMessage(t, conn)
	assert.Equal("error", msg.Type)
	assert.Equal("invalid_mode", msg.Error)
}

func TestWebSocketCancel(t *testing.T) {
	assert := assert.New(t)

	ts := newTestServer(t, &fakeService{block: true}, nil)
	conn := dial(t, ts)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "assign", ID: padID}))
	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "assign", ID: padID}))

	msg := readMessage(t, conn)
	assert.Equal("error", msg.Type)
	assert.Equal(string(hub.ErrBusy), msg.Error)

	require.NoError(t, conn.WriteJSON(hub.ClientMessage{Type: "cancel"}))

	msg = readMessage(t, conn)
	assert.Equal("cancelled", msg.Type)
	assert.Equal(padID, msg.ID)
}

func TestDevicesEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeService{}, nil)

	resp, err := http.Get(ts.URL + "/api/devices")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Devices []gamepad.ID `json:"devices"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []gamepad.ID{padID}, body.Devices)
}

func TestFrontendIsMinified(t *testing.T) {
	assert := assert.New(t)

	frontend := fstest.MapFS{
		"index.html": {Data: []byte("<html>\n  <body>\n    <p>  remap  </p>\n  </body>\n</html>\n")},
		"app.js":     {Data: []byte("function add ( a, b ) {\n  return a + b ;\n}\n")},
	}
	ts := newTestServer(t, &fakeService{}, frontend)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Contains(resp.Header.Get("Content-Type"), "text/html")
	assert.NotContains(string(body), "\n  ")
	assert.Contains(string(body), "remap")

	resp, err = http.Get(ts.URL + "/app.js")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Less(len(body), len(frontend["app.js"].Data))

	resp, err = http.Get(ts.URL + "/missing.css")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestBroadcastEvents(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &fakeService{}
	h := hub.NewHub(nil)
	go h.Run(ctx)

	b := hub.NewBroadcaster(h, svc)
	go b.Run(ctx)

	handler, err := New(h, b, svc, nil, "", time.Second, nil).Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	conn := dial(t, ts)
	readMessage(t, conn)

	// Registration goes through the hub loop; wait until the client is in.
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)

	b.Listen(gamepad.Event{Type: gamepad.Disconnected, ID: padID})

	msg := readMessage(t, conn)
	assert.Equal("event", msg.Type)
	assert.Equal("disconnected", msg.Event)
	assert.Equal(padID, msg.ID)
	assert.Positive(msg.Seq)
}
