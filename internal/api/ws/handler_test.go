package ws

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

const testInstallation = "9a0b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d"

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setupServer(t *testing.T, allowOrigin func(string) bool) (*httptest.Server, *monitoring.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStore(nil)
	store.Replace([]types.SubApplication{
		{ID: "settings:settings:sys", Label: "Settings", LaunchPath: "/settings/"},
	}, catalog.SourceSeed)
	pool := shell.NewPool(shell.Options{Catalog: store})

	metrics := monitoring.NewMetrics()
	router := gin.New()
	router.GET("/shells/:id/stream", NewHandler(pool, allowOrigin, nil).WithMetrics(metrics).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, metrics
}

func dial(t *testing.T, srv *httptest.Server, installation string, header http.Header) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/shells/" + installation + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) inbound {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg inbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestStreamSendsInitialState(t *testing.T) {
	srv, metrics := setupServer(t, nil)
	conn := dial(t, srv, testInstallation, nil)

	msg := read(t, conn)
	require.Equal(t, TypeState, msg.Type)

	var snap shell.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.Equal(t, testInstallation, snap.Installation)
	assert.True(t, snap.Layout.Initialized)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.WSConnections) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStreamDispatchesEvents(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, testInstallation, nil)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(shell.Event{Type: shell.EventOpen, AppID: "settings:settings:sys"}))

	msg := read(t, conn)
	require.Equal(t, TypeHistoryPush, msg.Type)
	var entry types.HistoryEntry
	require.NoError(t, json.Unmarshal(msg.Data, &entry))
	assert.Equal(t, types.HistoryApp, entry.Type)
	assert.Equal(t, "settings:settings:sys", entry.AppID)

	msg = read(t, conn)
	require.Equal(t, TypeState, msg.Type)
	var snap shell.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	require.NotNil(t, snap.Navigation.ForegroundID)
	assert.Equal(t, "settings:settings:sys", *snap.Navigation.ForegroundID)
}

func TestStreamBroadcastsToEveryConnection(t *testing.T) {
	srv, _ := setupServer(t, nil)
	first := dial(t, srv, testInstallation, nil)
	second := dial(t, srv, testInstallation, nil)
	read(t, first)
	read(t, second)

	require.NoError(t, first.WriteJSON(shell.Event{Type: shell.EventDrawer}))

	msg := read(t, second)
	require.Equal(t, TypeState, msg.Type)
	var snap shell.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	assert.True(t, snap.Navigation.DrawerOpen)
}

func TestStreamPingAndErrors(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, testInstallation, nil)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, TypePong, read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(shell.Event{Type: shell.EventOpen, AppID: "nothing"}))
	msg := read(t, conn)
	require.Equal(t, TypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, shell.EventOpen, data.Event)
	assert.Contains(t, data.Error, "nothing")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, TypeError, read(t, conn).Type)
}

func TestStreamRejectsInvalidInstallation(t *testing.T) {
	srv, _ := setupServer(t, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/shells/bogus/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStreamChecksOrigin(t *testing.T) {
	srv, _ := setupServer(t, func(origin string) bool { return origin == "https://os.example.com" })

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/shells/" + testInstallation + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, testInstallation, http.Header{"Origin": []string{"https://os.example.com"}})
	assert.Equal(t, TypeState, read(t, conn).Type)
}

func TestStreamEventSizeLimits(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, testInstallation, nil)
	read(t, conn)

	img := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 80*1024)...)
	bg := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
	require.NoError(t, conn.WriteJSON(shell.Event{Type: shell.EventBackgroundImage, URL: &bg}))

	msg := read(t, conn)
	require.Equal(t, TypeState, msg.Type)
	var snap shell.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	require.NotNil(t, snap.Layout.BackgroundImageURL)
	assert.Equal(t, bg, *snap.Layout.BackgroundImageURL)

	oversized := map[string]any{"type": "drawer", "pad": strings.Repeat("x", 70*1024)}
	require.NoError(t, conn.WriteJSON(oversized))
	msg = read(t, conn)
	require.Equal(t, TypeError, msg.Type)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, shell.EventDrawer, data.Event)
}
