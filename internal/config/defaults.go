package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arcade.yaml
var defaultArcadeYAML []byte

// Default returns the hardcoded arcade configuration. It matches the
// embedded defaults/arcade.yaml and is used when that file cannot be parsed.
func Default() Config {
	return Config{
		Pong: PongConfig{
			Physics: PongPhysics{
				ResetSpeed:  0.01,
				HitSpeed:    0.02,
				MinVelX:     2,
				ResizeSpeed: 0.01,
				MaxBounce:   45,
			},
			Paddles: PongPaddles{
				Speed:  0.04,
				Margin: 0.03,
			},
			Gameplay: PongGameplay{
				WinScore: 10,
				TickMs:   30,
			},
			AI: PongAI{
				TickMs:      1000,
				ErrorChance: 0.03,
			},
			PowerUps: PowerUpConfig{
				SpawnEveryMs:    5000,
				LifetimeMs:      6000,
				DurationMs:      5000,
				BallSpeedFactor: 1.5,
				PaddleSpeed:     0.06,
				PaddleMargin:    0.05,
				EdgeMargin:      0.1,
			},
		},
		ConnectFour: ConnectFourConfig{
			Depth:           5,
			BlunderRate:     0.2,
			AIDelayMs:       1000,
			SearchTimeoutMs: 5000,
			TokenCharges:    3,
		},
		Match: MatchConfig{
			CountdownStepMs:   1000,
			PersistEveryTicks: 1,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
		SSH: SSHConfig{
			Address:     ":23234",
			IdleTimeout: 30,
		},
	}
}

// Millis converts a millisecond config value to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
