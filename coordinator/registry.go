/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package coordinator

// Registry records which room, if any, each live connection belongs to.
type Registry struct {
	rooms map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]string)}
}

// Bind seats a connection in a room.
func (r *Registry) Bind(connectionID, roomID string) {
	r.rooms[connectionID] = roomID
}

// Unbind forgets a connection's room.
func (r *Registry) Unbind(connectionID string) {
	delete(r.rooms, connectionID)
}

// Lookup returns the room code a connection is seated in.
func (r *Registry) Lookup(connectionID string) (string, bool) {
	id, ok := r.rooms[connectionID]

	return id, ok
}

// Len reports how many connections are seated in a room.
func (r *Registry) Len() int {
	return len(r.rooms)
}
