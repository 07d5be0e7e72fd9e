package ws

import (
	"hash/fnv"
	"sync"
)

// Receiver is anything that can take a best-effort delivery. In production
// this is a *Client; tests substitute fakes.
type Receiver interface {
	ConnectionID() string
	Deliver(msg *WSMessage) error
}

const registryShards = 32

// Registry tracks which live connections belong to which room. Membership
// is sharded by key so joins against different rooms never contend. It
// holds opaque connection handles only, never user identity.
type Registry struct {
	rooms [registryShards]*roomShard
	conns [registryShards]*connShard
}

type roomShard struct {
	mu      sync.RWMutex
	members map[string]map[string]Receiver // roomKey -> connID -> receiver
}

type connShard struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{} // connID -> roomKeys
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.rooms {
		r.rooms[i] = &roomShard{members: make(map[string]map[string]Receiver)}
		r.conns[i] = &connShard{rooms: make(map[string]map[string]struct{})}
	}
	return r
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % registryShards)
}

func (r *Registry) roomShardFor(roomKey string) *roomShard {
	return r.rooms[shardIndex(roomKey)]
}

func (r *Registry) connShardFor(connID string) *connShard {
	return r.conns[shardIndex(connID)]
}

// Join is idempotent: joining a room the connection is already in is a
// no-op. No upper bound on memberships per connection.
func (r *Registry) Join(receiver Receiver, roomKey string) {
	connID := receiver.ConnectionID()

	rs := r.roomShardFor(roomKey)
	rs.mu.Lock()
	room, ok := rs.members[roomKey]
	if !ok {
		room = make(map[string]Receiver)
		rs.members[roomKey] = room
	}
	room[connID] = receiver
	rs.mu.Unlock()

	cs := r.connShardFor(connID)
	cs.mu.Lock()
	keys, ok := cs.rooms[connID]
	if !ok {
		keys = make(map[string]struct{})
		cs.rooms[connID] = keys
	}
	keys[roomKey] = struct{}{}
	cs.mu.Unlock()
}

// Leave is idempotent: leaving a room the connection is not in is a no-op.
func (r *Registry) Leave(connID, roomKey string) {
	rs := r.roomShardFor(roomKey)
	rs.mu.Lock()
	if room, ok := rs.members[roomKey]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(rs.members, roomKey)
		}
	}
	rs.mu.Unlock()

	cs := r.connShardFor(connID)
	cs.mu.Lock()
	if keys, ok := cs.rooms[connID]; ok {
		delete(keys, roomKey)
		if len(keys) == 0 {
			delete(cs.rooms, connID)
		}
	}
	cs.mu.Unlock()
}

// DropConnection removes the connection from every room it belongs to.
// Safe to call for connections that never joined anything.
func (r *Registry) DropConnection(connID string) {
	cs := r.connShardFor(connID)
	cs.mu.Lock()
	keys := cs.rooms[connID]
	delete(cs.rooms, connID)
	cs.mu.Unlock()

	for roomKey := range keys {
		rs := r.roomShardFor(roomKey)
		rs.mu.Lock()
		if room, ok := rs.members[roomKey]; ok {
			delete(room, connID)
			if len(room) == 0 {
				delete(rs.members, roomKey)
			}
		}
		rs.mu.Unlock()
	}
}

// MembersOf returns a snapshot of the current members of a room.
func (r *Registry) MembersOf(roomKey string) []Receiver {
	rs := r.roomShardFor(roomKey)
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room := rs.members[roomKey]
	members := make([]Receiver, 0, len(room))
	for _, receiver := range room {
		members = append(members, receiver)
	}
	return members
}

// RoomsOf reports the rooms a connection currently belongs to.
func (r *Registry) RoomsOf(connID string) []string {
	cs := r.connShardFor(connID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	keys := make([]string, 0, len(cs.rooms[connID]))
	for roomKey := range cs.rooms[connID] {
		keys = append(keys, roomKey)
	}
	return keys
}
