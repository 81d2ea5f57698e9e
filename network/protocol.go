package network

// Message IDs for the uint16-framed packets exchanged over a connection.
const (
	MsgTypeHeartbeat = 1

	// Inbound
	MsgTypeJoinRoom    = 101
	MsgTypeLeaveRoom   = 102
	MsgTypePlayerInput = 103
	MsgTypeRoomList    = 104

	// Outbound
	MsgTypePlayerJoined       = 201
	MsgTypeRoomFull           = 202
	MsgTypeGameState          = 203
	MsgTypePlayerConnected    = 204
	MsgTypePlayerDisconnected = 205
	MsgTypeLevelCompleted     = 206
	MsgTypeGameCompleted      = 207
	MsgTypeRoomListResult     = 208
)
