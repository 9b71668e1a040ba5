package bitwalk

import "log/slog"

// Stats counts the work an engine has done since construction.
type Stats struct {
	BytesAppended int64
	BytesConsumed int64
	Buffered      int // appended but not yet consumed

	Passes int
	Ticks  int

	Segments  int // walk segments, eight per consumed byte
	DrawCalls int // DrawLine calls, including cross-tile and normal strokes

	TilesCreated int
	TilesEvicted int
}

// Engine turns a byte stream into a random walk drawn across lazily created
// tiles.
//
// Every input bit turns the walk left or right and moves it one step; each
// step is drawn as a segment into the tile it ends in. Input is consumed in
// ticks of at most ChunkSize bytes so that a host event loop is never
// blocked for long.
//
// An Engine has no internal locking. All calls, including the executor's
// callbacks, must come from a single thread of control.
type Engine struct {
	cfg    Config
	grad   *GradientTable
	reg    *Registry
	walk   Walk
	sched  scheduler
	render segmentRenderer
	logger *slog.Logger
	stats  Stats
}

// New creates an engine drawing into surfaces made by factory.
func New(factory SurfaceFactory, opts ...Option) (*Engine, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	e := &Engine{
		cfg:    o.cfg,
		grad:   NewGradientTable(o.cfg.GradientStart, o.cfg.GradientEnd, o.cfg.StrokeAlpha),
		reg:    NewRegistry(o.cfg.TileSize, o.cfg.BorderWidth, factory),
		logger: o.logger,
	}
	e.reg.logger = o.logger
	if o.cfg.TileLimit > 0 {
		e.reg.SetLimit(o.cfg.TileLimit, o.onEvict)
	}

	e.render = segmentRenderer{
		reg:   e.reg,
		grad:  e.grad,
		cfg:   &e.cfg,
		stats: &e.stats,
	}

	onError := o.onError
	if onError == nil {
		onError = func(error) {} // already logged by halt
	}
	e.sched = scheduler{
		chunk:      o.cfg.ChunkSize,
		interval:   o.cfg.TickInterval,
		executor:   o.executor,
		compaction: o.cfg.Compaction,
		consume:    e.consume,
		onError:    onError,
		logger:     o.logger,
		stats:      &e.stats,
	}
	e.sched.tickFunc = e.sched.deferredTick

	return e, nil
}

// consume runs the eight bit steps of b, least-significant bit first.
func (e *Engine) consume(b byte) error {
	for i := range 8 {
		next := Step(e.walk, (b>>i)&1, e.cfg.TurnAngle, e.cfg.StepLength)
		id, err := e.render.segment(e.walk, next, b)
		if err != nil {
			return err
		}
		next.Last, next.HasLast = id, true
		e.walk = next
	}
	return nil
}

// Append queues p for drawing. If no pass is running, one starts and its
// first tick runs before Append returns; otherwise the running pass picks
// the bytes up in order. Append may be called from inside a Surface
// callback.
//
// The returned error is non-nil only if this call's tick failed, or if the
// engine halted earlier, in which case it matches ErrHalted. Failures of
// later ticks go to the WithErrorHandler callback.
func (e *Engine) Append(p []byte) error {
	return e.sched.append(p)
}

// AppendText appends the low 8 bits of every rune of s.
func (e *Engine) AppendText(s string) error {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		buf = append(buf, byte(r&0xff))
	}
	return e.Append(buf)
}

// Write implements io.Writer on top of Append.
func (e *Engine) Write(p []byte) (int, error) {
	if e.sched.state == StateHalted {
		return 0, e.Append(p)
	}
	if err := e.Append(p); err != nil {
		return len(p), err
	}
	return len(p), nil
}

// Compact releases the consumed prefix of the input buffer. It is a no-op
// while a pass is in progress.
func (e *Engine) Compact() {
	e.sched.compact()
}

// State reports whether the engine is idle, draining or halted.
func (e *Engine) State() State {
	return e.sched.state
}

// Idle reports whether all appended input has been drawn.
func (e *Engine) Idle() bool {
	return e.sched.state == StateIdle
}

// Err returns the failure that halted the engine, or nil.
func (e *Engine) Err() error {
	return e.sched.err
}

// Walk returns the current walk state.
func (e *Engine) Walk() Walk {
	return e.walk
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Gradient returns the engine's stroke color table.
func (e *Engine) Gradient() *GradientTable {
	return e.grad
}

// Tiles returns the live tiles ordered by row, then column.
func (e *Engine) Tiles() []*Tile {
	return e.reg.Tiles()
}

// TileIDs returns the ids of the live tiles in the order of Tiles.
func (e *Engine) TileIDs() []TileID {
	return e.reg.IDs()
}

// Tile returns the live tile with the given id.
func (e *Engine) Tile(id TileID) (*Tile, bool) {
	return e.reg.Lookup(id)
}

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Buffered = e.sched.buffered()
	s.TilesCreated = e.reg.created
	s.TilesEvicted = e.reg.evicted
	return s
}
