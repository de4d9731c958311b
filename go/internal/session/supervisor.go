package session

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/gamestore"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/notify"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/protocol"
)

const disconnectedMessage = "Conexão perdida. Reabra o app para reconectar."

// Conn is the subset of *websocket.Conn the supervisor uses. Narrowed so
// tests can substitute their own endpoint.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens a connection to the room endpoint.
type DialFunc func(ctx context.Context, url string) (Conn, error)

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Supervisor owns the persistent room connection: connect, authenticate by
// joining, answer heartbeats, detect loss, back off and retry, and tear down
// cleanly on intentional leave.
//
// Every connection carries a generation tag. Events from a connection whose
// generation no longer matches the supervisor's are dropped, so a superseded
// connection can never fire a handler after its replacement is installed.
type Supervisor struct {
	store  *gamestore.Store
	wsURL  string
	dial   DialFunc
	clock  clockwork.Clock
	policy ReconnectPolicy

	mu             sync.Mutex
	conn           Conn
	generation     uint64
	roomCode       string
	attempts       int
	gaveUp         bool
	reconnectTimer clockwork.Timer

	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// connState tracks per-connection reconciliation flags: whether this is the
// first connection of the current room membership, and whether the
// immediate post-join room-update has been seen.
type connState struct {
	firstConnect   bool
	gotFirstUpdate bool
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithDialFunc overrides how connections are opened.
func WithDialFunc(dial DialFunc) Option {
	return func(s *Supervisor) { s.dial = dial }
}

// WithClock overrides the clock used for backoff timers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Supervisor) { s.clock = clock }
}

// WithPolicy overrides the reconnect policy.
func WithPolicy(policy ReconnectPolicy) Option {
	return func(s *Supervisor) { s.policy = policy }
}

// NewSupervisor creates a supervisor for the given room endpoint base URL
// (e.g. "ws://host:port"); the game socket lives at /game-ws.
func NewSupervisor(store *gamestore.Store, wsBaseURL string, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:  store,
		wsURL:  wsBaseURL + "/game-ws",
		dial:   gorillaDial,
		clock:  clockwork.NewRealClock(),
		policy: DefaultReconnectPolicy(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a connection for the given room code, superseding any
// existing one. Whether this counts as the first connection of the current
// room membership is latched here: a connect issued while the session is not
// in the disconnected state is a fresh membership, anything else is a
// reconnection.
func (s *Supervisor) Connect(ctx context.Context, code string) {
	// Membership can be cleared between a retry firing and this call; a
	// connect without it would rejoin a room the user already left.
	if !s.store.InRoom() {
		log.Debug().Str("room_code", code).Msg("not connecting, no room membership")
		return
	}

	firstConnect := !s.store.IsDisconnected()

	s.mu.Lock()
	s.roomCode = code
	s.generation++
	gen := s.generation
	old := s.conn
	s.conn = nil
	s.mu.Unlock()

	// The old connection's generation is already stale; closing it cannot
	// schedule a duplicate reconnect cycle.
	if old != nil {
		s.closeNormal(old)
	}

	log.Info().
		Str("room_code", code).
		Uint64("generation", gen).
		Bool("first_connect", firstConnect).
		Msg("connecting to room")

	conn, err := s.dial(ctx, s.wsURL)
	if err != nil {
		log.Warn().Err(err).Str("room_code", code).Msg("dial failed")
		s.onConnectionLost(gen)
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.closeNormal(conn)
		return
	}
	s.conn = conn
	s.attempts = 0
	s.gaveUp = false
	s.mu.Unlock()

	s.store.SetDisconnected(false)

	user := s.store.User()
	playerID := ""
	if user != nil {
		playerID = user.UID
	}
	s.write(conn, protocol.JoinRoom{Type: protocol.TypeJoinRoom, RoomCode: code, PlayerID: playerID})

	// The create/join response already carried a full snapshot, so only a
	// reconnection needs to ask the server to push the current one.
	if !firstConnect {
		s.write(conn, protocol.SyncRequest{Type: protocol.TypeSyncRequest})
	}

	go s.readPump(conn, gen, &connState{firstConnect: firstConnect})
}

func (s *Supervisor) readPump(conn Conn, gen uint64, cs *connState) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.handleClose(conn, gen, err)
			return
		}
		s.handleMessage(conn, gen, cs, raw)
	}
}

// handleClose runs when a connection's read loop ends. Only the currently
// registered connection with a held room membership triggers the loss path;
// a retired generation or a cleared membership means this close was expected.
func (s *Supervisor) handleClose(conn Conn, gen uint64, err error) {
	s.mu.Lock()
	current := gen == s.generation && s.conn == conn
	if current {
		s.conn = nil
	}
	s.mu.Unlock()

	if !current || !s.store.InRoom() {
		return
	}

	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		log.Debug().Uint64("generation", gen).Msg("connection closed normally by server")
		return
	}

	log.Warn().Err(err).Uint64("generation", gen).Msg("connection lost")
	s.onConnectionLost(gen)
}

// onConnectionLost marks the session disconnected and schedules the next
// retry, or gives up after the policy's attempt budget is spent.
func (s *Supervisor) onConnectionLost(gen uint64) {
	if !s.store.InRoom() {
		return
	}
	s.store.SetDisconnected(true)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if s.gaveUp {
		s.mu.Unlock()
		return
	}
	if s.attempts >= s.policy.MaxAttempts {
		s.gaveUp = true
		s.mu.Unlock()
		log.Error().Int("attempts", s.policy.MaxAttempts).Msg("reconnect budget exhausted, giving up")
		s.store.Notifications().Add(notify.CategoryDisconnected, disconnectedMessage)
		return
	}
	s.attempts++
	attempt := s.attempts
	code := s.roomCode
	delay := s.policy.Delay(attempt - 1)

	if s.reconnectTimer != nil {
		stopAndDrainTimer(s.reconnectTimer)
	}
	timer := s.clock.NewTimer(delay)
	s.reconnectTimer = timer
	s.mu.Unlock()

	log.Info().
		Int("attempt", attempt).
		Dur("delay", delay).
		Str("room_code", code).
		Msg("scheduling reconnect")

	go func() {
		select {
		case <-timer.Chan():
			s.mu.Lock()
			stale := gen != s.generation
			s.mu.Unlock()
			if stale || !s.store.InRoom() {
				return
			}
			s.Connect(context.Background(), code)
		case <-s.done:
			stopAndDrainTimer(timer)
		}
	}()
}

// ResumeFromBackground requests a fresh snapshot when the app regains
// foreground visibility, defending against messages silently missed while
// backgrounded.
func (s *Supervisor) ResumeFromBackground() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		s.write(conn, protocol.SyncRequest{Type: protocol.TypeSyncRequest})
	}
}

// Leave tears the session down intentionally. Room membership is cleared and
// the connection's generation retired before the socket is closed, so the
// close can never be mistaken for a loss, whatever its close code.
func (s *Supervisor) Leave() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.generation++
	s.roomCode = ""
	s.attempts = 0
	s.gaveUp = false
	if s.reconnectTimer != nil {
		stopAndDrainTimer(s.reconnectTimer)
		s.reconnectTimer = nil
	}
	s.mu.Unlock()

	s.store.LeaveRoom()

	if conn != nil {
		s.write(conn, protocol.Leave{Type: protocol.TypeLeave})
		s.closeNormal(conn)
	}

	log.Info().Msg("left room")
}

// Close releases the supervisor's timers. The supervisor accepts no further
// scheduling afterwards.
func (s *Supervisor) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	if s.reconnectTimer != nil {
		stopAndDrainTimer(s.reconnectTimer)
		s.reconnectTimer = nil
	}
	conn := s.conn
	s.conn = nil
	s.generation++
	s.mu.Unlock()
	if conn != nil {
		s.closeNormal(conn)
	}
}

// write serializes outbound messages; the underlying connection permits only
// one concurrent writer.
func (s *Supervisor) write(conn Conn, v interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		log.Warn().Err(err).Msg("failed to write message")
	}
}

// currentConn returns the active connection, or nil.
func (s *Supervisor) currentConn() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// closeNormal sends the close handshake and releases the socket. The close
// frame goes through writeMu like every other frame; the connection permits
// only one writer at a time.
func (s *Supervisor) closeNormal(conn Conn) {
	s.writeMu.Lock()
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	_ = conn.Close()
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
