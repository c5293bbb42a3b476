package websocket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/ephemera/infrastructure/events"
)

var (
	ErrRoomNotFound = errors.New("no local clients for room")

	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
)

type localRoom struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// RoomManager tracks the clients connected to this node, grouped by room.
// It is a delivery index only; membership lives in the store.
type RoomManager struct {
	rooms map[string]*localRoom
	mu    sync.RWMutex
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*localRoom),
	}
}

func (rm *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

func (rm *RoomManager) AddClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[cl.RoomID]
	if !ok {
		room = &localRoom{clients: make(map[string]*Client)}
		rm.rooms[cl.RoomID] = room
	}

	room.mu.Lock()
	room.clients[cl.ID] = cl
	room.mu.Unlock()
}

func (rm *RoomManager) RemoveClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, ok := rm.rooms[cl.RoomID]
	if !ok {
		return
	}

	room.mu.Lock()
	delete(room.clients, cl.ID)
	empty := len(room.clients) == 0
	room.mu.Unlock()

	if empty {
		delete(rm.rooms, cl.RoomID)
	}
}

func (rm *RoomManager) snapshot(roomID string) ([]*Client, bool) {
	rm.mu.RLock()
	room, ok := rm.rooms[roomID]
	rm.mu.RUnlock()

	if !ok {
		return nil, false
	}

	room.mu.RLock()
	defer room.mu.RUnlock()

	clients := make([]*Client, 0, len(room.clients))
	for _, cl := range room.clients {
		clients = append(clients, cl)
	}
	return clients, true
}

// BroadcastToRoom returns the number of clients that did not accept env.
func (rm *RoomManager) BroadcastToRoom(env events.Envelope) (int, error) {
	clients, ok := rm.snapshot(env.RoomID)
	if !ok {
		return 0, ErrRoomNotFound
	}

	dropped := 0
	for _, cl := range clients {
		if !cl.Send(env) {
			dropped++
		}
	}
	return dropped, nil
}

// CloseRoom asks every local client of roomID to disconnect once its queue is flushed.
func (rm *RoomManager) CloseRoom(roomID string) {
	rm.mu.Lock()
	room, ok := rm.rooms[roomID]
	delete(rm.rooms, roomID)
	rm.mu.Unlock()

	if !ok {
		return
	}

	room.mu.RLock()
	defer room.mu.RUnlock()
	for _, cl := range room.clients {
		cl.CloseAfterDrain()
	}
}

func (rm *RoomManager) DisconnectAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, room := range rm.rooms {
		room.mu.Lock()
		for _, cl := range room.clients {
			cl.Close()
		}
		room.mu.Unlock()
	}

	rm.rooms = make(map[string]*localRoom)
}

func (rm *RoomManager) ClientCount(roomID string) int {
	clients, _ := rm.snapshot(roomID)
	return len(clients)
}
