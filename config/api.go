package config

// APIConfig protects the run status endpoints served next to /metrics.
type APIConfig struct {
	// Token, when set, is required as a bearer token.
	Token string `json:"token"`
}
