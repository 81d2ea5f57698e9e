package models

import (
	"time"

	"github.com/coopgaem/server/level"
	"github.com/coopgaem/server/puzzle"
)

// PlayerSnapshot is the per-player slice of the tick snapshot.
type PlayerSnapshot struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// ElevatorSnapshot is an elevator descriptor plus its runtime position.
type ElevatorSnapshot struct {
	level.Elevator
	CurrentY float64 `json:"currentY"`
	Moving   bool    `json:"moving"`
}

// PlatformSnapshot is a moving-platform descriptor plus its runtime
// position.
type PlatformSnapshot struct {
	level.MovingPlatform
	CurrentX float64 `json:"currentX"`
	CurrentY float64 `json:"currentY"`
}

// GameState is the full room snapshot pushed to every player each tick
// while the room is playing.
type GameState struct {
	RoomID           string                `json:"roomId"`
	CurrentLevel     int                   `json:"currentLevel"`
	LevelName        string                `json:"levelName"`
	LevelDescription string                `json:"levelDescription"`
	Players          []PlayerSnapshot      `json:"players"`
	Switches         []puzzle.SwitchState  `json:"switches"`
	Doors            []puzzle.DoorState    `json:"doors"`
	Elevators        []ElevatorSnapshot    `json:"elevators"`
	Platforms        []PlatformSnapshot    `json:"movingPlatforms"`
	Level            *level.Level          `json:"level"`
	GameState        string                `json:"gameState"`
}

// RoomInfo is one entry of the joinable-room listing.
type RoomInfo struct {
	ID           string `json:"id"`
	PlayerCount  int    `json:"playerCount"`
	MaxPlayers   int    `json:"maxPlayers"`
	CurrentLevel int    `json:"currentLevel"`
	GameState    string `json:"gameState"`
}

// LevelCompleted announces a level advance.
type LevelCompleted struct {
	Level     int    `json:"level"`
	NextLevel int    `json:"nextLevel"`
	Message   string `json:"message"`
}

// GameCompleted announces that the room finished the last level.
type GameCompleted struct {
	Message     string `json:"message"`
	TotalTimeMs int64  `json:"totalTime"`
}

// PlayerDisconnected tells room peers that a player left.
type PlayerDisconnected struct {
	ID int `json:"id"`
}

// CompletionRecord is what gets persisted when a room finishes the game.
type CompletionRecord struct {
	RoomID      string        `json:"room_id"`
	Levels      int           `json:"levels"`
	TotalTime   time.Duration `json:"total_time"`
	Players     []string      `json:"players"`
	CompletedAt time.Time     `json:"completed_at"`
}
