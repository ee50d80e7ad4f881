// Package config provides YAML-based configuration loading for the arcade,
// with environment and flag overrides layered on top through viper.
package config

// Config is the complete arcade configuration.
type Config struct {
	Pong        PongConfig        `yaml:"pong" mapstructure:"pong"`
	ConnectFour ConnectFourConfig `yaml:"connect_four" mapstructure:"connect_four"`
	Match       MatchConfig       `yaml:"match" mapstructure:"match"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	SSH         SSHConfig         `yaml:"ssh" mapstructure:"ssh"`
}

// PongConfig contains all configuration for the paddle game.
type PongConfig struct {
	Physics  PongPhysics   `yaml:"physics" mapstructure:"physics"`
	Paddles  PongPaddles   `yaml:"paddles" mapstructure:"paddles"`
	Gameplay PongGameplay  `yaml:"gameplay" mapstructure:"gameplay"`
	AI       PongAI        `yaml:"ai" mapstructure:"ai"`
	PowerUps PowerUpConfig `yaml:"power_ups" mapstructure:"power_ups"`
}

// PongPhysics defines ball speeds as fractions of the field size per tick.
type PongPhysics struct {
	ResetSpeed  float64 `yaml:"reset_speed" mapstructure:"reset_speed"`
	HitSpeed    float64 `yaml:"hit_speed" mapstructure:"hit_speed"`
	MinVelX     float64 `yaml:"min_vel_x" mapstructure:"min_vel_x"`           // Floor for |vx| after a paddle hit
	ResizeSpeed float64 `yaml:"resize_speed" mapstructure:"resize_speed"`     // Speed applied after a viewport change
	MaxBounce   float64 `yaml:"max_bounce_deg" mapstructure:"max_bounce_deg"` // Maximum rebound angle in degrees
}

// PongPaddles defines paddle movement.
type PongPaddles struct {
	Speed  float64 `yaml:"speed" mapstructure:"speed"`   // Fraction of field height per tick
	Margin float64 `yaml:"margin" mapstructure:"margin"` // Fraction of field height kept free at the edges
}

// PongGameplay defines match rules and timing.
type PongGameplay struct {
	WinScore int `yaml:"win_score" mapstructure:"win_score"`
	TickMs   int `yaml:"tick_ms" mapstructure:"tick_ms"`
}

// PongAI defines the predictive paddle opponent.
type PongAI struct {
	TickMs      int     `yaml:"tick_ms" mapstructure:"tick_ms"`
	ErrorChance float64 `yaml:"error_chance" mapstructure:"error_chance"`
}

// PowerUpConfig defines the chaos variant pickups.
type PowerUpConfig struct {
	SpawnEveryMs    int     `yaml:"spawn_every_ms" mapstructure:"spawn_every_ms"`
	LifetimeMs      int     `yaml:"lifetime_ms" mapstructure:"lifetime_ms"`
	DurationMs      int     `yaml:"duration_ms" mapstructure:"duration_ms"`
	BallSpeedFactor float64 `yaml:"ball_speed_factor" mapstructure:"ball_speed_factor"`
	PaddleSpeed     float64 `yaml:"paddle_speed" mapstructure:"paddle_speed"`
	PaddleMargin    float64 `yaml:"paddle_margin" mapstructure:"paddle_margin"`
	EdgeMargin      float64 `yaml:"edge_margin" mapstructure:"edge_margin"` // Fraction of the field where pickups never spawn
}

// ConnectFourConfig contains all configuration for the column-drop game.
type ConnectFourConfig struct {
	Depth           int     `yaml:"depth" mapstructure:"depth"`
	BlunderRate     float64 `yaml:"blunder_rate" mapstructure:"blunder_rate"`
	AIDelayMs       int     `yaml:"ai_delay_ms" mapstructure:"ai_delay_ms"`
	SearchTimeoutMs int     `yaml:"search_timeout_ms" mapstructure:"search_timeout_ms"`
	TokenCharges    int     `yaml:"token_charges" mapstructure:"token_charges"`
}

// MatchConfig defines lifecycle timing shared by all games.
type MatchConfig struct {
	CountdownStepMs   int `yaml:"countdown_step_ms" mapstructure:"countdown_step_ms"`
	PersistEveryTicks int `yaml:"persist_every_ticks" mapstructure:"persist_every_ticks"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "memory", "sqlite" or "postgres"
	Path   string `yaml:"path" mapstructure:"path"`     // SQLite database file
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // Postgres connection string
}

// LogConfig defines log output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// SSHConfig defines the wish server.
type SSHConfig struct {
	Address     string `yaml:"address" mapstructure:"address"`
	HostKey     string `yaml:"host_key" mapstructure:"host_key"`
	IdleTimeout int    `yaml:"idle_timeout_min" mapstructure:"idle_timeout_min"`
}
