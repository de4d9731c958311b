package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/gamestore"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/models"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/notify"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/status"
)

const testTimeout = 2 * time.Second

// roomServer is a minimal stand-in for the game backend's socket endpoint.
// Every accepted connection is handed to the test through a channel.
type roomServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
}

func newRoomServer(t *testing.T) *roomServer {
	t.Helper()
	rs := &roomServer{conns: make(chan *websocket.Conn, 8)}
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/game-ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		rs.conns <- conn
	})
	rs.srv = httptest.NewServer(mux)
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *roomServer) wsURL() string {
	return "ws" + strings.TrimPrefix(rs.srv.URL, "http")
}

// accept waits for the next client connection.
func (rs *roomServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-rs.conns:
		return conn
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for connection")
		return nil
	}
}

// noConnection asserts no client dials in within the grace window.
func (rs *roomServer) noConnection(t *testing.T) {
	t.Helper()
	select {
	case <-rs.conns:
		t.Fatal("unexpected connection")
	case <-time.After(200 * time.Millisecond):
	}
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(testTimeout)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// noMessage asserts nothing arrives on the server side within the grace
// window. The connection is unusable for reads afterwards.
func noMessage(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var msg map[string]interface{}
	err := conn.ReadJSON(&msg)
	require.Error(t, err, "expected no message, got %v", msg)
}

func newTestStore(t *testing.T) *gamestore.Store {
	t.Helper()
	queue := notify.NewQueue(clockwork.NewFakeClock())
	t.Cleanup(queue.Close)
	s := gamestore.New(queue)
	s.SetUser(models.Player{UID: "self", Name: "Bia"})
	return s
}

func testRoom(selfIsHost bool) *models.Room {
	host := models.Player{UID: "host", Name: "Ana"}
	self := models.Player{UID: "self", Name: "Bia"}
	room := &models.Room{Code: "ABC123", Status: models.RoomStatusWaiting, Players: []models.Player{host, self}, HostID: "host"}
	if selfIsHost {
		room.HostID = "self"
	}
	return room
}

func TestFirstConnectJoinsWithoutSync(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)

	join := readMsg(t, conn)
	assert.Equal(t, "join-room", join["type"])
	assert.Equal(t, "ABC123", join["roomCode"])
	assert.Equal(t, "self", join["playerId"])

	// join-room already returned the snapshot over HTTP; no sync on the
	// first connection of a membership.
	noMessage(t, conn)
}

func TestPingAnsweredWithPong(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	pong := readMsg(t, conn)
	assert.Equal(t, "pong", pong["type"])
}

func TestReconnectAfterLossRequestsSync(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	clock := clockwork.NewFakeClock()
	sup := NewSupervisor(store, rs.wsURL(), WithClock(clock))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn1 := rs.accept(t)
	readMsg(t, conn1) // join-room

	// Abrupt transport loss, no close handshake.
	require.NoError(t, conn1.UnderlyingConn().Close())

	require.Eventually(t, store.IsDisconnected, testTimeout, 10*time.Millisecond,
		"loss should mark the session disconnected")

	clock.BlockUntil(1)
	clock.Advance(1500 * time.Millisecond)

	conn2 := rs.accept(t)
	join := readMsg(t, conn2)
	assert.Equal(t, "join-room", join["type"])
	sync := readMsg(t, conn2)
	assert.Equal(t, "sync_request", sync["type"], "a reconnection must request a sync")

	require.Eventually(t, func() bool { return !store.IsDisconnected() },
		testTimeout, 10*time.Millisecond, "successful reopen should clear the indicator")
}

func TestLeaveNeverReconnects(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	clock := clockwork.NewFakeClock()
	sup := NewSupervisor(store, rs.wsURL(), WithClock(clock))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	sup.Leave()

	leave := readMsg(t, conn)
	assert.Equal(t, "leave", leave["type"])

	assert.False(t, store.InRoom())
	assert.Equal(t, status.Home, store.Status())
	rs.noConnection(t)
}

func TestGiveUpAfterMaxAttempts(t *testing.T) {
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	clock := clockwork.NewFakeClock()

	var dials atomic.Int32
	failingDial := func(ctx context.Context, url string) (Conn, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	}

	policy := DefaultReconnectPolicy()
	sup := NewSupervisor(store, "ws://unreachable",
		WithClock(clock), WithDialFunc(failingDial), WithPolicy(policy))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	require.True(t, store.IsDisconnected())

	for i := 0; i < policy.MaxAttempts; i++ {
		clock.BlockUntil(1)
		clock.Advance(policy.Delay(i))
		attempt := int32(i + 2) // initial dial plus retries so far
		require.Eventually(t, func() bool { return dials.Load() == attempt },
			testTimeout, time.Millisecond, "retry %d should have dialed", i+1)
	}

	require.Eventually(t, func() bool {
		return len(store.Notifications().List()) == 1
	}, testTimeout, 10*time.Millisecond, "exactly one terminal notification")
	n := store.Notifications().List()[0]
	assert.Equal(t, notify.CategoryDisconnected, n.Category)

	// No further attempts are ever scheduled.
	dialed := dials.Load()
	clock.Advance(5 * time.Minute)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, dialed, dials.Load())
	assert.Len(t, store.Notifications().List(), 1)
}

// serialConn fails the invariant that only one goroutine may be inside a
// write method at a time, the contract the underlying connection enforces by
// panicking.
type serialConn struct {
	closed    chan struct{}
	closeOnce sync.Once
	inWrite   atomic.Int32
	overlap   atomic.Bool
}

func newSerialConn() *serialConn {
	return &serialConn{closed: make(chan struct{})}
}

func (c *serialConn) enterWrite() {
	if c.inWrite.Add(1) > 1 {
		c.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	c.inWrite.Add(-1)
}

func (c *serialConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("use of closed connection")
}

func (c *serialConn) WriteJSON(v interface{}) error {
	c.enterWrite()
	return nil
}

func (c *serialConn) WriteMessage(messageType int, data []byte) error {
	c.enterWrite()
	return nil
}

func (c *serialConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func TestLeaveWritesAreSerialized(t *testing.T) {
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	conn := newSerialConn()
	dial := func(ctx context.Context, url string) (Conn, error) { return conn, nil }
	sup := NewSupervisor(store, "ws://test",
		WithDialFunc(dial), WithClock(clockwork.NewFakeClock()))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")

	// Race background sync writes against the leave notice and close frame.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			sup.ResumeFromBackground()
		}
	}()
	sup.Leave()
	wg.Wait()

	assert.False(t, conn.overlap.Load(), "connection writes overlapped")
}

func TestLeaveDuringBackoffCancelsRetry(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	clock := clockwork.NewFakeClock()
	sup := NewSupervisor(store, rs.wsURL(), WithClock(clock))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	require.NoError(t, conn.UnderlyingConn().Close())
	require.Eventually(t, store.IsDisconnected, testTimeout, 10*time.Millisecond)

	clock.BlockUntil(1)
	sup.Leave()
	clock.Advance(1500 * time.Millisecond)

	rs.noConnection(t)
}

func TestConnectRefusedWithoutMembership(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	// A retry firing after an intentional leave finds the membership gone
	// and must not rejoin.
	store.LeaveRoom()
	sup.Connect(context.Background(), "ABC123")
	rs.noConnection(t)
}

func TestSelfReconnectNotificationSuppressedOnFirstConnect(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	// The server treats HTTP join + socket handshake as a reconnect and
	// broadcasts it; the local participant must not be notified about
	// itself.
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "player-reconnected", "playerId": "self", "playerName": "Bia",
	}))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, store.Notifications().List())

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "player-reconnected", "playerId": "host", "playerName": "Ana",
	}))
	require.Eventually(t, func() bool {
		list := store.Notifications().List()
		return len(list) == 1 && strings.Contains(list[0].Message, "Ana")
	}, testTimeout, 10*time.Millisecond)
}

func TestFirstSnapshotDoesNotDriveTransition(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	playing := testRoom(false)
	playing.Status = models.RoomStatusPlaying
	playing.GameData = &models.GameData{Word: "abacaxi"}

	// First room-update after the HTTP join refreshes the reference only.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "room-update", "room": playing}))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, status.Lobby, store.Status())

	// A subsequent update is reconciled normally.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "room-update", "room": playing}))
	require.Eventually(t, func() bool {
		return store.Status() == status.Playing
	}, testTimeout, 10*time.Millisecond)
}

func TestMalformedMessageDoesNotStallPump(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json at all")))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	pong := readMsg(t, conn)
	assert.Equal(t, "pong", pong["type"])
}

func TestKickedIsTerminal(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	clock := clockwork.NewFakeClock()
	sup := NewSupervisor(store, rs.wsURL(), WithClock(clock))
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "kicked"}))

	require.Eventually(t, func() bool { return !store.InRoom() },
		testTimeout, 10*time.Millisecond)
	assert.Equal(t, status.Home, store.Status())
	require.Len(t, store.Notifications().List(), 1)

	// Membership is gone, so the close that follows must not reconnect.
	rs.noConnection(t)
}

func TestResumeFromBackgroundRequestsSync(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	sup.ResumeFromBackground()
	msg := readMsg(t, conn)
	assert.Equal(t, "sync_request", msg["type"])
}

func TestHostFlowBroadcast(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(true))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	sup.GoToGameConfig()
	assert.Equal(t, status.GameConfig, store.Status())
	msg := readMsg(t, conn)
	assert.Equal(t, "host-game-config", msg["type"])
	assert.Equal(t, "ABC123", msg["roomCode"])

	sup.BackToModeSelect()
	msg = readMsg(t, conn)
	assert.Equal(t, "host-back-to-mode-select", msg["type"])

	sup.BackToLobby()
	msg = readMsg(t, conn)
	assert.Equal(t, "host-back-to-lobby", msg["type"])
}

func TestNonHostFlowStaysLocal(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	sup.GoToGameConfig()
	assert.Equal(t, status.GameConfig, store.Status())
	noMessage(t, conn)
}

func TestKickPlayerGuards(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(true))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	// Kicking yourself is refused locally.
	sup.KickPlayer("self")

	sup.KickPlayer("host")
	msg := readMsg(t, conn)
	assert.Equal(t, "kick-player", msg["type"])
	assert.Equal(t, "host", msg["targetPlayerId"])
	assert.Equal(t, "self", msg["requesterId"])
}

func TestLobbyChatTrimmedAndGuarded(t *testing.T) {
	rs := newRoomServer(t)
	store := newTestStore(t)
	store.EnterRoom(testRoom(false))
	sup := NewSupervisor(store, rs.wsURL())
	defer sup.Close()

	sup.Connect(context.Background(), "ABC123")
	conn := rs.accept(t)
	readMsg(t, conn) // join-room

	sup.SendLobbyChat("   ")
	sup.SendLobbyChat("  oi pessoal  ")

	msg := readMsg(t, conn)
	assert.Equal(t, "lobby-chat", msg["type"])
	assert.Equal(t, "oi pessoal", msg["message"])
}
