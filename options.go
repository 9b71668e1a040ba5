package bitwalk

import (
	"log/slog"
	"time"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := bitwalk.New(factory,
//	    bitwalk.WithExecutor(loop),
//	    bitwalk.WithNormals(true),
//	)
type Option func(*engineOptions)

// engineOptions holds the configuration and host hooks for New.
type engineOptions struct {
	cfg      Config
	executor Executor
	logger   *slog.Logger
	onError  func(error)
	onEvict  func(*Tile)
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		cfg:    DefaultConfig(),
		logger: nil, // Will be set to Logger() if nil
	}
}

// WithConfig replaces the whole configuration. Options applied after it
// still modify individual fields.
func WithConfig(cfg Config) Option {
	return func(o *engineOptions) {
		o.cfg = cfg
	}
}

// WithTileSize sets the tile side length.
func WithTileSize(size float64) Option {
	return func(o *engineOptions) {
		o.cfg.TileSize = size
	}
}

// WithBorderWidth sets the on-screen gap between tiles.
func WithBorderWidth(w float64) Option {
	return func(o *engineOptions) {
		o.cfg.BorderWidth = w
	}
}

// WithStepLength sets the distance moved per input bit.
func WithStepLength(dx float64) Option {
	return func(o *engineOptions) {
		o.cfg.StepLength = dx
	}
}

// WithTurnAngle sets the heading change per input bit, in radians.
func WithTurnAngle(dTheta float64) Option {
	return func(o *engineOptions) {
		o.cfg.TurnAngle = dTheta
	}
}

// WithChunkSize sets how many bytes a single tick consumes.
func WithChunkSize(n int) Option {
	return func(o *engineOptions) {
		o.cfg.ChunkSize = n
	}
}

// WithTickInterval sets the delay between ticks.
func WithTickInterval(d time.Duration) Option {
	return func(o *engineOptions) {
		o.cfg.TickInterval = d
	}
}

// WithGradient sets the colors for byte values 0 and 255.
func WithGradient(start, end RGBA) Option {
	return func(o *engineOptions) {
		o.cfg.GradientStart = start
		o.cfg.GradientEnd = end
	}
}

// WithStroke sets the width and alpha of walk segments.
func WithStroke(width, alpha float64) Option {
	return func(o *engineOptions) {
		o.cfg.StrokeWidth = width
		o.cfg.StrokeAlpha = alpha
	}
}

// WithNormals enables or disables the perpendicular decoration.
func WithNormals(enabled bool) Option {
	return func(o *engineOptions) {
		o.cfg.Normals = enabled
	}
}

// WithNormalStyle sets the decoration's half-length (in steps), width and
// alpha.
func WithNormalStyle(scale, width, alpha float64) Option {
	return func(o *engineOptions) {
		o.cfg.NormalScale = scale
		o.cfg.NormalWidth = width
		o.cfg.NormalAlpha = alpha
	}
}

// WithCompaction sets the buffer compaction policy.
func WithCompaction(p CompactionPolicy) Option {
	return func(o *engineOptions) {
		o.cfg.Compaction = p
	}
}

// WithTileLimit bounds the number of live tiles. See Registry.
func WithTileLimit(n int) Option {
	return func(o *engineOptions) {
		o.cfg.TileLimit = n
	}
}

// WithEvictHandler registers a callback receiving tiles dropped by the
// tile limit, before their surface is closed.
func WithEvictHandler(fn func(*Tile)) Option {
	return func(o *engineOptions) {
		o.onEvict = fn
	}
}

// WithExecutor runs follow-up ticks through ex instead of synchronously.
func WithExecutor(ex Executor) Option {
	return func(o *engineOptions) {
		o.executor = ex
	}
}

// WithLogger sets the engine's logger, overriding the package default.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithErrorHandler registers a callback for failures of deferred ticks,
// which have no caller to return an error to. The engine is already halted
// when fn runs.
func WithErrorHandler(fn func(error)) Option {
	return func(o *engineOptions) {
		o.onError = fn
	}
}
