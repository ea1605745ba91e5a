package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketChat  = "chat"
	TypeWebsocketDone  = "done"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketChatPayload struct {
	Message string `json:"message"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketChatResponse struct {
	Fragment string `json:"fragment"`
}

type WebSocketDoneResponse struct {
	Answer string `json:"answer"`
}

// TokenStream is a pull-based, finite, non-restartable stream of text
// fragments from a generation model. Recv returns io.EOF after the last
// fragment; any other error terminates the stream.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// StreamHandler receives each visible answer fragment as it is produced.
type StreamHandler func(fragment string)
