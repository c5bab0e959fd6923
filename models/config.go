package models

// Config holds the process configuration loaded from config.json. Redis
// settings come from environment variables instead.
type Config struct {
	ListenAddr string `json:"listen_addr"`

	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	// Secret for signing access tokens.
	JWTSecret string `json:"jwt_secret"`
	// Access token lifetime in hours, 0 means the default of 30 days.
	TokenTTLHours int `json:"token_ttl_hours"`

	// Reconnection grace window in seconds, 0 means the default of 600.
	GraceSeconds int `json:"grace_seconds"`
}
