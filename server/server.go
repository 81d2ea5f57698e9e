package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/coopgaem/server/broadcast"
	"github.com/coopgaem/server/logger"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/monitor"
	"github.com/coopgaem/server/network"
	"github.com/coopgaem/server/physics"
	"github.com/coopgaem/server/room"
	"github.com/coopgaem/server/session"
	"github.com/coopgaem/server/state"
	"github.com/coopgaem/server/timer"
)

// GameServer owns the HTTP/WebSocket edge: accepting connections, decoding
// packets, and routing them into the room registry.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	monitor        *monitor.Monitor
	timers         *timer.Manager
	idleWindow     time.Duration
	shutdownChan   chan struct{}
}

func NewGameServer(addr string, rooms *room.Manager, sessions *session.Manager, bc broadcast.Broadcaster, mon *monitor.Monitor, idleWindow time.Duration) *GameServer {
	return &GameServer{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Game clients connect from arbitrary origins.
				return true
			},
		},
		roomManager:    rooms,
		sessionManager: sessions,
		broadcaster:    bc,
		monitor:        mon,
		timers:         timer.NewManager(),
		idleWindow:     idleWindow,
		shutdownChan:   make(chan struct{}),
	}
}

// Start blocks serving HTTP until the listener fails.
func (s *GameServer) Start() error {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebSocket)
	router.HandleFunc("/rooms", s.handleRoomList).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// Idle connections are swept off the tick path.
	s.timers.Schedule(30*time.Second, 30*time.Second, s.sweepIdleSessions)

	logger.Log.Infof("game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, router)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
}

func (s *GameServer) handleRoomList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.roomManager.List())
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.monitor != nil {
		s.monitor.IncOnlinePlayers()
	}

	logger.Log.Infof("new connection from %s, session %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("connection closed from %s, session %s", wsConn.RemoteAddr(), sess.GetID())
		s.leaveCurrentRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		if s.monitor != nil {
			s.monitor.DecOnlinePlayers()
		}
		wsConn.Close()
	}()

	wsConn.SetReadDeadlineWindow(s.idleWindow)
	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			wsConn.SetReadDeadlineWindow(s.idleWindow)
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	sess.Touch()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch above is the whole effect.
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.leaveCurrentRoom(sess)
	case network.MsgTypePlayerInput:
		s.handlePlayerInput(sess, packet)
	case network.MsgTypeRoomList:
		s.handleRoomListRequest(sess)
	default:
		logger.Log.Infof("unknown message type %d from session %s", packet.MsgID, sess.GetID())
	}
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req map[string]string
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	roomID := req["room_id"]
	if roomID == "" {
		return
	}

	// A device holds one room at a time.
	s.leaveCurrentRoom(sess)

	r := s.roomManager.GetOrCreate(roomID)
	p := r.AddPlayer(sess.GetID())
	if p == nil {
		_ = sess.Send(network.MsgTypeRoomFull, nil)
		return
	}
	sess.RoomID = roomID

	logger.Log.Infof("session %s joined room %s as %s", sess.GetID(), roomID, p.Name)

	joined, _ := json.Marshal(p.Snapshot())
	_ = sess.Send(network.MsgTypePlayerJoined, joined)

	snapshot, _ := json.Marshal(r.Snapshot())
	_ = sess.Send(network.MsgTypeGameState, snapshot)

	_ = s.broadcaster.BroadcastToRoomExcept(roomID, sess.GetID(), network.MsgTypePlayerConnected, joined)
}

func (s *GameServer) handlePlayerInput(sess *session.Session, packet *network.Packet) {
	if sess.RoomID == "" {
		return
	}
	r, exists := s.roomManager.Get(sess.RoomID)
	if !exists {
		return
	}

	var keys physics.Keys
	if err := json.Unmarshal(packet.Data, &keys); err != nil {
		return
	}
	if s.monitor != nil {
		s.monitor.IncInputsReceived()
	}
	r.ApplyInput(sess.GetID(), keys)
}

func (s *GameServer) handleRoomListRequest(sess *session.Session) {
	data, _ := json.Marshal(s.roomManager.List())
	_ = sess.Send(network.MsgTypeRoomListResult, data)
}

// leaveCurrentRoom removes the session's player from its room, tells the
// peers, and drops the room once empty. Safe to call for sessions that are
// not in a room.
func (s *GameServer) leaveCurrentRoom(sess *session.Session) {
	if sess.RoomID == "" {
		return
	}
	roomID := sess.RoomID
	sess.RoomID = ""

	r, exists := s.roomManager.Get(roomID)
	if !exists {
		return
	}
	removed := r.RemovePlayer(sess.GetID())
	if removed == nil {
		return
	}

	left, _ := json.Marshal(models.PlayerDisconnected{ID: removed.ID})
	_ = s.broadcaster.BroadcastToRoomExcept(roomID, sess.GetID(), network.MsgTypePlayerDisconnected, left)

	if r.Phase() == state.PhaseEmpty {
		s.roomManager.Remove(roomID)
		logger.Log.Infof("room %s empty, removed", roomID)
	}
}

func (s *GameServer) sweepIdleSessions() {
	deadline := time.Now().Add(-s.idleWindow)
	for _, idle := range s.sessionManager.IdleSince(deadline) {
		logger.Log.Infof("closing idle session %s", idle.GetID())
		_ = idle.Close()
	}
}
