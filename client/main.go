package main

import (
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeHeartbeat   = 1
	MsgTypeJoinRoom    = 101
	MsgTypePlayerInput = 103
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// randomKeys walks mostly right with occasional jumps, enough to exercise
// movement and switch plates on a running server.
func randomKeys() map[string]bool {
	return map[string]bool{
		"left":  rand.Intn(10) < 2,
		"right": rand.Intn(10) < 6,
		"jump":  rand.Intn(10) < 3,
	}
}

func main() {
	addr := flag.String("addr", "localhost:3000", "server address")
	roomID := flag.String("room", "bot-room", "room to join")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Printf("Joining room %s...", *roomID)
	joinData, _ := json.Marshal(map[string]string{"room_id": *roomID})
	if err := send(c, MsgTypeJoinRoom, joinData); err != nil {
		log.Println("Write error:", err)
		return
	}

	inputTicker := time.NewTicker(100 * time.Millisecond)
	defer inputTicker.Stop()
	heartbeatTicker := time.NewTicker(30 * time.Second)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case <-heartbeatTicker.C:
			if err := send(c, MsgTypeHeartbeat, []byte{}); err != nil {
				log.Println("Write error:", err)
				return
			}
		case <-inputTicker.C:
			keys, _ := json.Marshal(randomKeys())
			if err := send(c, MsgTypePlayerInput, keys); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
