package shell

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/drag"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/keyboard"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/infrastructure/storage"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/geometry"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

const testInstallation = "0b5c8a56-6c43-4a57-9d0e-2f1c9c0d7e11"

// recordingSink captures everything a shell sends out
type recordingSink struct {
	mu      sync.Mutex
	history []types.HistoryEntry
	windows []string
	states  []Snapshot
}

func (r *recordingSink) PushHistory(entry types.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, entry)
}

func (r *recordingSink) OpenWindow(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows = append(r.windows, url)
}

func (r *recordingSink) StateChanged(snapshot Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, snapshot)
}

type probeFunc func(ctx context.Context, path string) bool

func (f probeFunc) NeedsTopLevel(ctx context.Context, path string) bool { return f(ctx, path) }

func testCatalog() *catalog.Store {
	store := catalog.NewStore(nil)
	store.Replace([]types.SubApplication{
		{ID: "settings:settings:sys", Label: "Settings", LaunchPath: "/settings/", Favorite: true, Order: 1},
		{ID: "notes:notes:acme", Label: "Notes", ProcessName: "notes", PublisherName: "acme", Order: 2},
		{ID: "store:store:market", Label: "Store", LaunchPath: "/store/", Order: 3},
		{ID: "clock:clock:sys", Label: "Clock", WidgetContent: "<b>12:00</b>", Order: 4},
	}, catalog.SourceSeed)
	return store
}

func testOptions(t *testing.T) Options {
	t.Helper()

	policy, err := message.NewOriginPolicy("https://os.example.com", "apps", []string{"localhost"})
	require.NoError(t, err)
	origin, err := url.Parse("https://os.example.com")
	require.NoError(t, err)

	return Options{
		Catalog:  testCatalog(),
		KV:       storage.NewMemory(),
		Origin:   origin,
		Policy:   policy,
		StoreApp: "market",
		Random:   geometry.Fixed(0),
	}
}

func newTestShell(t *testing.T, opts Options) (*Shell, *recordingSink) {
	t.Helper()

	s, err := NewPool(opts).Get(context.Background(), testInstallation)
	require.NoError(t, err)
	sink := &recordingSink{}
	s.Attach(sink)
	return s, sink
}

func TestDispatchOpenPushesHistory(t *testing.T) {
	s, sink := newTestShell(t, testOptions(t))

	res, err := s.Dispatch(context.Background(), Event{Type: EventOpen, AppID: "settings:settings:sys"})
	require.NoError(t, err)

	require.NotNil(t, res.Open)
	assert.False(t, res.Open.External)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Snapshot.Navigation.ForegroundID)
	assert.Equal(t, "settings:settings:sys", *res.Snapshot.Navigation.ForegroundID)

	require.Len(t, sink.history, 1)
	assert.Equal(t, types.HistoryApp, sink.history[0].Type)
	assert.Equal(t, "settings:settings:sys", sink.history[0].AppID)
	require.Len(t, sink.states, 1)
	assert.Equal(t, 1, res.Snapshot.Stats.HistoryDepth)
}

func TestDispatchOpenByRequestedID(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))

	res, err := s.Dispatch(context.Background(), Event{Type: EventOpen, AppID: "notes:acme", Suffix: "?doc=1"})
	require.NoError(t, err)

	require.Len(t, res.Snapshot.Navigation.RunningApplications, 1)
	assert.Equal(t, "/app/acme/notes/?doc=1", res.Snapshot.Navigation.RunningApplications[0].LaunchPath)
}

func TestDispatchOpenUnknownApp(t *testing.T) {
	s, sink := newTestShell(t, testOptions(t))

	res, err := s.Dispatch(context.Background(), Event{Type: EventOpen, AppID: "nothing"})
	assert.ErrorIs(t, err, message.ErrUnknownApp)
	assert.False(t, res.Changed)
	assert.Empty(t, sink.states)
}

func TestDispatchOpenWithoutLaunchTarget(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))

	_, err := s.Dispatch(context.Background(), Event{Type: EventOpen, AppID: "clock:clock:sys"})
	assert.ErrorIs(t, err, navigation.ErrNoLaunchTarget)
}

func TestDispatchTopLevelOpen(t *testing.T) {
	opts := testOptions(t)
	opts.Prober = probeFunc(func(context.Context, string) bool { return true })
	s, sink := newTestShell(t, opts)

	res, err := s.Dispatch(context.Background(), Event{Type: EventOpen, AppID: "notes:notes:acme"})
	require.NoError(t, err)

	require.NotNil(t, res.Open)
	assert.True(t, res.Open.External)
	assert.Equal(t, []string{"https://notes-acme.os.example.com/app/acme/notes/"}, sink.windows)
	assert.Empty(t, res.Snapshot.Navigation.RunningApplications)
	assert.Empty(t, sink.history)
}

func TestDispatchBackReplaysHistory(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: EventOpen, AppID: "settings:settings:sys"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, Event{Type: EventOpen, AppID: "notes:notes:acme"})
	require.NoError(t, err)

	res, err := s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err)
	assert.Equal(t, navigation.BackSwitched, res.Back)
	assert.Equal(t, "settings:settings:sys", *res.Snapshot.Navigation.ForegroundID)

	res, err = s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err)
	assert.Equal(t, navigation.BackHome, res.Back)
	assert.Nil(t, res.Snapshot.Navigation.ForegroundID)
	assert.Len(t, res.Snapshot.Navigation.RunningApplications, 2)

	res, err = s.Dispatch(ctx, Event{Type: EventBack})
	require.NoError(t, err)
	assert.Equal(t, navigation.BackNoop, res.Back)
	assert.False(t, res.Changed)
}

func TestDispatchBackWithPlatformEntry(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: EventOpen, AppID: "settings:settings:sys"})
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, Event{Type: EventDrawer})
	require.NoError(t, err)

	res, err := s.Dispatch(ctx, Event{Type: EventBack, History: &types.HistoryEntry{Type: types.HistoryHome}})
	require.NoError(t, err)
	assert.Equal(t, navigation.BackOverlay, res.Back)
	assert.False(t, res.Snapshot.Navigation.DrawerOpen)
	assert.NotNil(t, res.Snapshot.Navigation.ForegroundID)
}

func TestDispatchKeyShortcuts(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	res, err := s.Dispatch(ctx, Event{Type: EventKey, Key: &keyboard.Event{Key: "A"}})
	require.NoError(t, err)
	assert.Equal(t, keyboard.ActionDrawer, res.Action)
	assert.True(t, res.Snapshot.Navigation.DrawerOpen)

	res, err = s.Dispatch(ctx, Event{Type: EventKey, Key: &keyboard.Event{Key: "s", Target: "input"}})
	require.NoError(t, err)
	assert.Equal(t, keyboard.ActionNone, res.Action)
	assert.False(t, res.Changed)

	_, err = s.Dispatch(ctx, Event{Type: EventKey, Key: &keyboard.Event{Key: "3"}})
	assert.ErrorIs(t, err, navigation.ErrNotRunning)
}

func TestDispatchMessage(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	data := json.RawMessage(`{"type":"link_clicked","href":"/apps/notes?ref=home"}`)
	res, err := s.Dispatch(ctx, Event{Type: EventMessage, Origin: "https://apps.os.example.com", Data: data})
	require.NoError(t, err)
	require.Len(t, res.Snapshot.Navigation.RunningApplications, 1)
	assert.Equal(t, "store:store:market", res.Snapshot.Navigation.RunningApplications[0].ID)
	assert.Equal(t, "/store/apps/notes?ref=home", res.Snapshot.Navigation.RunningApplications[0].LaunchPath)

	_, err = s.Dispatch(ctx, Event{Type: EventMessage, Origin: "https://evil.example", Data: data})
	assert.ErrorIs(t, err, message.ErrOriginRejected)
}

func TestDispatchSwipeDismissesCard(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: EventOpen, AppID: "settings:settings:sys"})
	require.NoError(t, err)

	_, err = s.Dispatch(ctx, Event{Type: EventSwipeStart, AppID: "settings:settings:sys", Point: &geometry.Point{X: 100, Y: 500}})
	require.NoError(t, err)
	res, err := s.Dispatch(ctx, Event{Type: EventSwipeMove, AppID: "settings:settings:sys", Point: &geometry.Point{X: 100, Y: 320}})
	require.NoError(t, err)
	require.NotNil(t, res.Offset)
	assert.Equal(t, -180.0, *res.Offset)

	res, err = s.Dispatch(ctx, Event{Type: EventSwipeEnd, AppID: "settings:settings:sys"})
	require.NoError(t, err)
	require.NotNil(t, res.Swipe)
	assert.True(t, res.Swipe.Dismissed)
	assert.Equal(t, -800.0, res.Swipe.Offset)
	assert.Empty(t, res.Snapshot.Navigation.RunningApplications)
}

func TestDispatchSwipeBelowThresholdKeepsCard(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: EventOpen, AppID: "settings:settings:sys"})
	require.NoError(t, err)
	_, _ = s.Dispatch(ctx, Event{Type: EventSwipeStart, AppID: "settings:settings:sys", Point: &geometry.Point{Y: 500}})
	_, _ = s.Dispatch(ctx, Event{Type: EventSwipeMove, AppID: "settings:settings:sys", Point: &geometry.Point{Y: 450}})

	res, err := s.Dispatch(ctx, Event{Type: EventSwipeEnd, AppID: "settings:settings:sys"})
	require.NoError(t, err)
	assert.False(t, res.Swipe.Dismissed)
	assert.Len(t, res.Snapshot.Navigation.RunningApplications, 1)
}

func TestDispatchFreeDrag(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()
	item := "notes:notes:acme"

	_, err := s.Dispatch(ctx, Event{Type: EventMoveItem, ItemID: item, Point: &geometry.Point{X: 200, Y: 200}})
	require.NoError(t, err)

	// Outside edit mode the press is ignored
	res, err := s.Dispatch(ctx, Event{Type: EventDragDown, Input: &drag.Input{ItemID: item, Point: geometry.Point{X: 210, Y: 210}}})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	enabled := true
	_, err = s.Dispatch(ctx, Event{Type: EventEditMode, Enabled: &enabled})
	require.NoError(t, err)

	res, err = s.Dispatch(ctx, Event{Type: EventDragDown, Input: &drag.Input{ItemID: item, Point: geometry.Point{X: 210, Y: 210}}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Snapshot.EditMode)

	res, err = s.Dispatch(ctx, Event{Type: EventDragMove, Input: &drag.Input{Point: geometry.Point{X: 260, Y: 250}}})
	require.NoError(t, err)
	require.NotNil(t, res.Position)
	assert.Equal(t, geometry.Point{X: 250, Y: 240}, *res.Position)

	res, err = s.Dispatch(ctx, Event{Type: EventDragUp, Input: &drag.Input{Point: geometry.Point{X: 260, Y: 250}}})
	require.NoError(t, err)
	require.NotNil(t, res.Release)
	assert.True(t, res.Release.Dragged)
	assert.Equal(t, geometry.Point{X: 250, Y: 240}, res.Snapshot.Layout.Positions[item])
}

func TestDispatchDockDrop(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()
	item := "notes:notes:acme"

	res, err := s.Dispatch(ctx, Event{Type: EventDockDragStart, ItemID: item})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	enabled := true
	_, err = s.Dispatch(ctx, Event{Type: EventEditMode, Enabled: &enabled})
	require.NoError(t, err)

	res, err = s.Dispatch(ctx, Event{Type: EventDockDragStart, ItemID: item})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	slot := 0
	res, err = s.Dispatch(ctx, Event{Type: EventDockDrop, Index: &slot})
	require.NoError(t, err)
	require.NotNil(t, res.Drop)
	assert.True(t, res.Drop.Docked)
	assert.Equal(t, []string{item, "settings:settings:sys"}, res.Snapshot.Layout.DockItemIDs)
	assert.NotContains(t, res.Snapshot.FloatingItems, item)
}

func TestDispatchLayoutMutations(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	ctx := context.Background()

	res, err := s.Dispatch(ctx, Event{Type: EventRemoveFromHome, ItemID: "notes:notes:acme"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.NotContains(t, res.Snapshot.Layout.HomeItemIDs, "notes:notes:acme")

	bad := "javascript:alert(1)"
	_, err = s.Dispatch(ctx, Event{Type: EventBackgroundImage, URL: &bad})
	assert.Error(t, err)

	good := "https://cdn.example.com/bg.png"
	res, err = s.Dispatch(ctx, Event{Type: EventBackgroundImage, URL: &good})
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot.Layout.BackgroundImageURL)
	assert.Equal(t, good, *res.Snapshot.Layout.BackgroundImageURL)

	res, err = s.Dispatch(ctx, Event{Type: EventResize, Viewport: &geometry.Size{Width: 400, Height: 300}})
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{Width: 400, Height: 300}, res.Snapshot.Viewport)
}

func TestSnapshotWidgetSizes(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))

	snap := s.Snapshot()
	require.Contains(t, snap.WidgetSizes, "clock:clock:sys")
	assert.Equal(t, s.Layout().WidgetSize(1), snap.WidgetSizes["clock:clock:sys"])

	res, err := s.Dispatch(context.Background(), Event{Type: EventToggleWidget, ItemID: "clock:clock:sys"})
	require.NoError(t, err)
	assert.NotContains(t, res.Snapshot.WidgetSizes, "clock:clock:sys")

	size := geometry.Size{Width: 120, Height: 90}
	_, err = s.Dispatch(context.Background(), Event{Type: EventToggleWidget, ItemID: "clock:clock:sys"})
	require.NoError(t, err)
	res, err = s.Dispatch(context.Background(), Event{Type: EventWidgetSize, ItemID: "clock:clock:sys", Size: &size})
	require.NoError(t, err)
	assert.Equal(t, size, res.Snapshot.WidgetSizes["clock:clock:sys"])
}

func TestDispatchRejectsMalformedEvents(t *testing.T) {
	s, sink := newTestShell(t, testOptions(t))
	ctx := context.Background()

	_, err := s.Dispatch(ctx, Event{Type: "teleport"})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	for _, ev := range []Event{
		{Type: EventOpen},
		{Type: EventKey},
		{Type: EventEditMode},
		{Type: EventDragDown},
		{Type: EventResize},
		{Type: EventMoveItem, ItemID: "x"},
		{Type: EventAddToHome},
		{Type: EventSwipeStart},
		{Type: EventDockTouchEnd, Point: &geometry.Point{}},
	} {
		_, err := s.Dispatch(ctx, ev)
		assert.ErrorIs(t, err, ErrMissingField, string(ev.Type))
	}
	assert.Empty(t, sink.states)
}

func TestDetachStopsNotifications(t *testing.T) {
	s, _ := newTestShell(t, testOptions(t))
	sink := &recordingSink{}
	conn := s.Attach(sink)
	assert.Equal(t, 2, s.Sinks())

	s.Detach(conn)
	_, err := s.Dispatch(context.Background(), Event{Type: EventDrawer})
	require.NoError(t, err)

	assert.Empty(t, sink.states)
	assert.Equal(t, 1, s.Sinks())
}

func TestEventValidate(t *testing.T) {
	assert.NoError(t, Event{Type: EventOpen, AppID: "notes:acme"}.Validate())
	assert.ErrorIs(t, Event{Type: EventOpen, AppID: "a b"}.Validate(), utils.ErrInvalid)
	assert.ErrorIs(t, Event{Type: EventDragDown, Input: &drag.Input{ItemID: "x\x00"}}.Validate(), utils.ErrInvalid)

	deep := json.RawMessage(strings.Repeat("[", 40) + strings.Repeat("]", 40))
	assert.ErrorIs(t, Event{Type: EventMessage, Data: deep}.Validate(), utils.ErrInvalid)
}
