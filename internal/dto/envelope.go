package dto

// Envelope is the response wrapper every endpoint uses:
// {"success": bool, "data": value-or-null, "error": message-or-null}.
type Envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// OK wraps a successful payload.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Err wraps an error message.
func Err(msg string) Envelope {
	return Envelope{Success: false, Error: &msg}
}
