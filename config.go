package bitwalk

import (
	"fmt"
	"math"
	"time"
)

// CompactionPolicy decides when the consumed prefix of the input buffer is
// released.
type CompactionPolicy uint8

const (
	// CompactOnIdle drops consumed bytes whenever a pass drains the buffer.
	CompactOnIdle CompactionPolicy = iota

	// CompactNever keeps every appended byte for the engine's lifetime.
	// Call Engine.Compact to release memory manually.
	CompactNever
)

// String returns the policy name as used in configuration files.
func (p CompactionPolicy) String() string {
	switch p {
	case CompactOnIdle:
		return "idle"
	case CompactNever:
		return "never"
	default:
		return fmt.Sprintf("CompactionPolicy(%d)", p)
	}
}

// Config holds the engine constants. All values are fixed at construction.
type Config struct {
	// TileSize is the side length of a tile in plane units.
	TileSize float64

	// BorderWidth is the on-screen gap between neighbouring tiles. It only
	// affects Tile.Origin, never the walk geometry.
	BorderWidth float64

	// StepLength is the distance moved per input bit.
	StepLength float64

	// TurnAngle is the heading change per input bit, in radians.
	TurnAngle float64

	// ChunkSize is the number of bytes consumed per scheduler tick.
	ChunkSize int

	// TickInterval is the delay between ticks of one pass.
	TickInterval time.Duration

	// GradientStart and GradientEnd are the stroke colors of byte values
	// 0 and 255. Their alpha is ignored in favour of StrokeAlpha.
	GradientStart RGBA
	GradientEnd   RGBA

	StrokeAlpha float64
	StrokeWidth float64

	// Normals enables the decoration drawn across every segment,
	// perpendicular to the heading.
	Normals bool

	// NormalScale is the decoration's half-length as a multiple of
	// StepLength.
	NormalScale float64
	NormalWidth float64
	NormalAlpha float64

	Compaction CompactionPolicy

	// TileLimit bounds the number of live tiles; 0 means unbounded.
	TileLimit int
}

// DefaultConfig returns the classic bitalizer constants: 256-unit tiles with
// a 1-unit gap, half-unit steps turning by π/8, 1 KiB every 20 ms.
func DefaultConfig() Config {
	return Config{
		TileSize:      256,
		BorderWidth:   1,
		StepLength:    0.5,
		TurnAngle:     math.Pi / 8,
		ChunkSize:     1024,
		TickInterval:  20 * time.Millisecond,
		GradientStart: Hex("#ffc730"),
		GradientEnd:   Hex("#ff3050"),
		StrokeAlpha:   1,
		StrokeWidth:   1,
		NormalScale:   4,
		NormalWidth:   1,
		NormalAlpha:   0.25,
		Compaction:    CompactOnIdle,
	}
}

// Validate reports the first out-of-range value, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !(c.TileSize > 0) || math.IsInf(c.TileSize, 0):
		return fmt.Errorf("%w: tile size %v must be positive", ErrInvalidConfig, c.TileSize)
	case !(c.BorderWidth >= 0) || math.IsInf(c.BorderWidth, 0):
		return fmt.Errorf("%w: border width %v must not be negative", ErrInvalidConfig, c.BorderWidth)
	case !(c.StepLength > 0) || math.IsInf(c.StepLength, 0):
		return fmt.Errorf("%w: step length %v must be positive", ErrInvalidConfig, c.StepLength)
	case math.IsNaN(c.TurnAngle) || math.IsInf(c.TurnAngle, 0):
		return fmt.Errorf("%w: turn angle %v must be finite", ErrInvalidConfig, c.TurnAngle)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidConfig, c.ChunkSize)
	case c.TickInterval < 0:
		return fmt.Errorf("%w: tick interval %v must not be negative", ErrInvalidConfig, c.TickInterval)
	case !(c.StrokeWidth > 0):
		return fmt.Errorf("%w: stroke width %v must be positive", ErrInvalidConfig, c.StrokeWidth)
	case !(c.StrokeAlpha >= 0 && c.StrokeAlpha <= 1):
		return fmt.Errorf("%w: stroke alpha %v must be in [0, 1]", ErrInvalidConfig, c.StrokeAlpha)
	case c.Normals && !(c.NormalScale > 0):
		return fmt.Errorf("%w: normal scale %v must be positive", ErrInvalidConfig, c.NormalScale)
	case c.Normals && !(c.NormalWidth > 0):
		return fmt.Errorf("%w: normal width %v must be positive", ErrInvalidConfig, c.NormalWidth)
	case !(c.NormalAlpha >= 0 && c.NormalAlpha <= 1):
		return fmt.Errorf("%w: normal alpha %v must be in [0, 1]", ErrInvalidConfig, c.NormalAlpha)
	case c.Compaction > CompactNever:
		return fmt.Errorf("%w: unknown compaction policy %v", ErrInvalidConfig, c.Compaction)
	case c.TileLimit < 0 || c.TileLimit == 1:
		return fmt.Errorf("%w: tile limit %d must be 0 or at least 2", ErrInvalidConfig, c.TileLimit)
	}
	return nil
}
