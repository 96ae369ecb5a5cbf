package ws

// sender is what the room needs from a transport: queue a frame without
// blocking the actor loop, and tear the connection down.
type sender interface {
	enqueue(data []byte) bool
	close()
}

// session ties a live connection to a player name. The id keys the room
// registry so two tabs for the same player stay distinct.
type session struct {
	id   string
	name string
	conn sender
	quit bool
}
