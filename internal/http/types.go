package http

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ServerConfig struct {
	AllowedOrigins []string
	// EnableAdmin exposes DELETE /api/cache.
	EnableAdmin bool
}
