package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

const testInstallation = "6f1d7a0e-3b7c-4f5e-9a61-1c2d3e4f5a6b"

// MockRefresher is a mock implementation of Refresher
type MockRefresher struct {
	mock.Mock
}

// Refresh mocks the Refresh method
func (m *MockRefresher) Refresh(ctx context.Context, store *catalog.Store) error {
	args := m.Called(ctx, store)
	return args.Error(0)
}

func setupTestRouter(t *testing.T, refresher Refresher) (*gin.Engine, *shell.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStore(nil)
	store.Replace([]types.SubApplication{
		{ID: "settings:settings:sys", Label: "Settings", LaunchPath: "/settings/", Favorite: true},
		{ID: "clock:clock:sys", Label: "Clock", WidgetContent: "<i>12:00</i>"},
	}, catalog.SourceSeed)

	policy, err := message.NewOriginPolicy("https://os.example.com", "apps", nil)
	require.NoError(t, err)

	pool := shell.NewPool(shell.Options{
		Catalog: store,
		KV:      storage.NewMemory(),
		Policy:  policy,
		Random:  geometry.Fixed(0.5),
	})

	router := gin.New()
	NewHandlers(pool, refresher, nil).WithMetrics(monitoring.NewMetrics()).Register(router)
	return router, pool
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["catalog_apps"])
	assert.Contains(t, body, "metrics")
}

func TestListCatalog(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Apps  []types.SubApplication `json:"apps"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "settings:settings:sys", body.Apps[0].ID)
}

func TestRefreshCatalog(t *testing.T) {
	t.Run("without remote source", func(t *testing.T) {
		router, _ := setupTestRouter(t, nil)
		w := doJSON(router, http.MethodPost, "/catalog/refresh", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		refresher := new(MockRefresher)
		refresher.On("Refresh", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

		router, _ := setupTestRouter(t, refresher)
		w := doJSON(router, http.MethodPost, "/catalog/refresh", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		refresher.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		refresher := new(MockRefresher)
		refresher.On("Refresh", mock.Anything, mock.Anything).Return(nil).Once()

		router, _ := setupTestRouter(t, refresher)
		w := doJSON(router, http.MethodPost, "/catalog/refresh", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		refresher.AssertExpectations(t)
	})
}

func TestCreateShell(t *testing.T) {
	router, pool := setupTestRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/shells", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Installation string         `json:"installation"`
		State        shell.Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Installation)
	assert.True(t, body.State.Layout.Initialized)
	assert.Equal(t, []string{"settings:settings:sys"}, body.State.Layout.DockItemIDs)
	assert.Equal(t, 1, pool.Len())
}

func TestGetStateRejectsInvalidID(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/shells/nope/state", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid installation id")
}

func TestDispatchEvent(t *testing.T) {
	router, _ := setupTestRouter(t, nil)
	path := "/shells/" + testInstallation + "/events"

	w := doJSON(router, http.MethodPost, path, shell.Event{Type: shell.EventOpen, AppID: "settings:settings:sys"})
	require.Equal(t, http.StatusOK, w.Code)

	var res shell.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Open)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Snapshot.Navigation.ForegroundID)
	assert.Equal(t, "settings:settings:sys", *res.Snapshot.Navigation.ForegroundID)

	w = doJSON(router, http.MethodGet, "/shells/"+testInstallation+"/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap shell.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Navigation.RunningApplications, 1)
}

func TestDispatchEventErrors(t *testing.T) {
	router, _ := setupTestRouter(t, nil)
	path := "/shells/" + testInstallation + "/events"

	tests := []struct {
		name       string
		event      any
		wantStatus int
	}{
		{"missing type", map[string]any{"appId": "x"}, http.StatusBadRequest},
		{"unknown type", shell.Event{Type: "teleport"}, http.StatusBadRequest},
		{"unknown app", shell.Event{Type: shell.EventOpen, AppID: "nothing"}, http.StatusNotFound},
		{"no launch target", shell.Event{Type: shell.EventOpen, AppID: "clock:clock:sys"}, http.StatusUnprocessableEntity},
		{"switch to closed app", shell.Event{Type: shell.EventSwitch, AppID: "settings:settings:sys"}, http.StatusNotFound},
		{
			"untrusted message",
			shell.Event{Type: shell.EventMessage, Origin: "https://evil.example", Data: json.RawMessage(`{"type":"open_app","appId":"sys"}`)},
			http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, path, tt.event)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestDispatchEventMalformedBody(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/shells/"+testInstallation+"/events", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(message.ErrAmbiguousApp))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestDispatchEventValidation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)
	path := "/shells/" + testInstallation + "/events"

	w := doJSON(router, http.MethodPost, path, shell.Event{Type: shell.EventOpen, AppID: "../etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	huge := shell.Event{Type: shell.EventOpen, AppID: "settings:settings:sys", Suffix: strings.Repeat("x", 70*1024)}
	w = doJSON(router, http.MethodPost, path, huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func pngDataURI(size int) string {
	img := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, size)...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

func TestDispatchLargeBackground(t *testing.T) {
	router, pool := setupTestRouter(t, nil)
	path := "/shells/" + testInstallation + "/events"

	bg := pngDataURI(80 * 1024)
	w := doJSON(router, http.MethodPost, path, shell.Event{Type: shell.EventBackgroundImage, URL: &bg})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s, err := pool.Get(context.Background(), testInstallation)
	require.NoError(t, err)
	record := s.Layout().Record()
	require.NotNil(t, record.BackgroundImageURL)
	assert.Equal(t, bg, *record.BackgroundImageURL)
}

func TestDispatchBodyLimits(t *testing.T) {
	router, _ := setupTestRouter(t, nil)
	path := "/shells/" + testInstallation + "/events"

	// Only background events may exceed the regular event limit.
	move := map[string]any{"type": "move_item", "itemId": "settings:settings:sys", "pad": strings.Repeat("x", 70*1024)}
	w := doJSON(router, http.MethodPost, path, move)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	tooBig := pngDataURI(utils.MaxBackgroundSize)
	w = doJSON(router, http.MethodPost, path, shell.Event{Type: shell.EventBackgroundImage, URL: &tooBig})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestListAndResetShells(t *testing.T) {
	router, pool := setupTestRouter(t, nil)
	ctx := context.Background()

	s, err := pool.Get(ctx, testInstallation)
	require.NoError(t, err)
	s.Layout().RemoveFromDock("settings:settings:sys")

	w := doJSON(router, http.MethodGet, "/shells", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Installations []string `json:"installations"`
		Live          int      `json:"live"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{testInstallation}, list.Installations)
	assert.Equal(t, 1, list.Live)

	w = doJSON(router, http.MethodDelete, "/shells/"+testInstallation+"/layout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"settings:settings:sys"}, s.Layout().Record().DockItemIDs)

	w = doJSON(router, http.MethodDelete, "/shells/nope/layout", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
