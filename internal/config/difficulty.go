package config

import "fmt"

// DifficultyPreset represents a named opponent strength.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch DifficultyPreset(s) {
	case "", DifficultyNormal:
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyHard:
		return DifficultyPreset(s), nil
	}
	return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", s)
}

// ApplyPreset adjusts AI parameters for a difficulty preset.
// Normal leaves the loaded configuration untouched.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.ConnectFour.Depth = 2
		cfg.ConnectFour.BlunderRate = 0.4
		cfg.Pong.AI.ErrorChance = 0.15
		cfg.Pong.AI.TickMs = 1500
	case DifficultyHard:
		cfg.ConnectFour.Depth = 7
		cfg.ConnectFour.BlunderRate = 0.05
		cfg.Pong.AI.ErrorChance = 0.01
		cfg.Pong.AI.TickMs = 700
	}
}
