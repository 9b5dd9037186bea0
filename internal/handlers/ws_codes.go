package handlers

// Custom WebSocket close codes used by the room coordinator. These provide
// more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	RoomGoneError       = 3001 // Target room no longer exists.
)
