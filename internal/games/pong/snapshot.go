package pong

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/duel-arcade/internal/core"
)

// SnapshotKey is the persistence key for an in-progress paddle match.
const SnapshotKey = "gameState"

// ErrInvalidSnapshot is returned when a persisted blob is malformed or
// incomplete. Callers discard it and start fresh.
var ErrInvalidSnapshot = errors.New("pong: invalid snapshot")

// Snapshot is the persisted form of a match. Field names follow the stored
// JSON shape, which older saves rely on.
type Snapshot struct {
	Player1     PlayerSnapshot  `json:"player1"`
	Player2     PlayerSnapshot  `json:"player2"`
	Ball        BallSnapshot    `json:"ball"`
	GeneralData GeneralSnapshot `json:"generalData"`
	AIData      AISnapshot      `json:"AIData"`
}

// PlayerSnapshot is one player's persisted state.
type PlayerSnapshot struct {
	Counter     int     `json:"counter"`
	PaddleTop   float64 `json:"paddleTop"`
	PaddleSpeed float64 `json:"paddleSpeed"`
}

// BallSnapshot is the persisted ball.
type BallSnapshot struct {
	PosX  float64 `json:"posX"`
	PosY  float64 `json:"posY"`
	VelX  float64 `json:"velX"`
	VelY  float64 `json:"velY"`
	Angle float64 `json:"angle"`
}

// GeneralSnapshot holds the tick interval in milliseconds and the base speed.
type GeneralSnapshot struct {
	Time  float64 `json:"time"`
	Speed float64 `json:"speed"`
}

// AISnapshot holds whether player 2 is computer controlled and its target.
type AISnapshot struct {
	Activate bool    `json:"activate"`
	TargetY  float64 `json:"targetY"`
}

// wire mirrors Snapshot with pointer fields so missing keys are detectable.
type wire struct {
	Player1 *struct {
		Counter     *int     `json:"counter"`
		PaddleTop   *float64 `json:"paddleTop"`
		PaddleSpeed *float64 `json:"paddleSpeed"`
	} `json:"player1"`
	Player2 *struct {
		Counter     *int     `json:"counter"`
		PaddleTop   *float64 `json:"paddleTop"`
		PaddleSpeed *float64 `json:"paddleSpeed"`
	} `json:"player2"`
	Ball *struct {
		PosX  *float64 `json:"posX"`
		PosY  *float64 `json:"posY"`
		VelX  *float64 `json:"velX"`
		VelY  *float64 `json:"velY"`
		Angle *float64 `json:"angle"`
	} `json:"ball"`
	GeneralData *struct {
		Time  *float64 `json:"time"`
		Speed *float64 `json:"speed"`
	} `json:"generalData"`
	AIData *struct {
		Activate *bool    `json:"activate"`
		TargetY  *float64 `json:"targetY"`
	} `json:"AIData"`
}

// Encode serializes a snapshot.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses and validates a persisted blob. Every field must be
// present and finite, counters must be within 0..maxScore and the tick
// interval must be positive.
func DecodeSnapshot(data []byte, maxScore int) (Snapshot, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if w.Player1 == nil || w.Player2 == nil || w.Ball == nil || w.GeneralData == nil || w.AIData == nil {
		return Snapshot{}, fmt.Errorf("%w: missing section", ErrInvalidSnapshot)
	}
	p1, p2, b, g, ai := w.Player1, w.Player2, w.Ball, w.GeneralData, w.AIData
	if p1.Counter == nil || p1.PaddleTop == nil || p1.PaddleSpeed == nil ||
		p2.Counter == nil || p2.PaddleTop == nil || p2.PaddleSpeed == nil ||
		b.PosX == nil || b.PosY == nil || b.VelX == nil || b.VelY == nil || b.Angle == nil ||
		g.Time == nil || g.Speed == nil ||
		ai.Activate == nil || ai.TargetY == nil {
		return Snapshot{}, fmt.Errorf("%w: missing field", ErrInvalidSnapshot)
	}

	s := Snapshot{
		Player1:     PlayerSnapshot{Counter: *p1.Counter, PaddleTop: *p1.PaddleTop, PaddleSpeed: *p1.PaddleSpeed},
		Player2:     PlayerSnapshot{Counter: *p2.Counter, PaddleTop: *p2.PaddleTop, PaddleSpeed: *p2.PaddleSpeed},
		Ball:        BallSnapshot{PosX: *b.PosX, PosY: *b.PosY, VelX: *b.VelX, VelY: *b.VelY, Angle: *b.Angle},
		GeneralData: GeneralSnapshot{Time: *g.Time, Speed: *g.Speed},
		AIData:      AISnapshot{Activate: *ai.Activate, TargetY: *ai.TargetY},
	}
	if err := s.validate(maxScore); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

func (s Snapshot) validate(maxScore int) error {
	if !core.Finite(
		s.Player1.PaddleTop, s.Player1.PaddleSpeed,
		s.Player2.PaddleTop, s.Player2.PaddleSpeed,
		s.Ball.PosX, s.Ball.PosY, s.Ball.VelX, s.Ball.VelY, s.Ball.Angle,
		s.GeneralData.Time, s.GeneralData.Speed, s.AIData.TargetY,
	) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidSnapshot)
	}
	for _, c := range []int{s.Player1.Counter, s.Player2.Counter} {
		if c < 0 || c > maxScore {
			return fmt.Errorf("%w: counter %d out of range", ErrInvalidSnapshot, c)
		}
	}
	if s.GeneralData.Time <= 0 {
		return fmt.Errorf("%w: tick interval %v", ErrInvalidSnapshot, s.GeneralData.Time)
	}
	return nil
}
