package rpc

import (
	"fmt"
	"net"
	"net/rpc"

	"github.com/coopgaem/server/logger"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/room"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Register publishes a service's methods to connecting clients.
func (s *Server) Register(rcvr interface{}) error {
	return rpc.Register(rcvr)
}

// Start begins serving RPC requests. Blocks; run it on its own goroutine.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
}

// AdminService exposes read-only registry inspection over net/rpc.
type AdminService struct {
	rooms *room.Manager
}

func NewAdminService(rooms *room.Manager) *AdminService {
	return &AdminService{rooms: rooms}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []models.RoomInfo
}

// ListRooms returns every live room, full ones included.
func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, r := range a.rooms.Rooms() {
		reply.Rooms = append(reply.Rooms, r.Info())
	}
	return nil
}

type GetRoomArgs struct {
	ID string
}

type GetRoomReply struct {
	Info models.RoomInfo
}

// GetRoom returns one room's listing entry.
func (a *AdminService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, ok := a.rooms.Get(args.ID)
	if !ok {
		return fmt.Errorf("room %s not found", args.ID)
	}
	reply.Info = r.Info()
	return nil
}
