package core

// ResponseBase is the JSON envelope for admin and booking API responses.
type ResponseBase[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ack is the body returned to the webhook sender. Always delivered with
// HTTP 200; Success only reflects whether internal handling went through.
type Ack struct {
	Success bool `json:"success"`
}
