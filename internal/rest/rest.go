package rest

// ErrorResponse is the JSON error payload returned by the HTTP API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
