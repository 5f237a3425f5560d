package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	Rating        RatingConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RatingConfig tunes the MMR model. KFactor bounds the per-match rating
// swing; InitialMMR is the rating assigned to newly registered players.
type RatingConfig struct {
	KFactor    float64
	InitialMMR int
}
