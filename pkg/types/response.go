package types

// Envelope carries the fields shared by every REST response. Success
// responses merge the resource payload beside these fields.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorBody extends the envelope with machine-readable error context.
type ErrorBody struct {
	Envelope
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
