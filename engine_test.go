package bitwalk

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func newTestEngine(t *testing.T, f SurfaceFactory, opts ...Option) *Engine {
	t.Helper()
	e, err := New(f, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// testInput returns n bytes of a fixed pseudo-random sequence.
func testInput(n int) []byte {
	p := make([]byte, n)
	x := uint32(2463534242)
	for i := range p {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		p[i] = byte(x)
	}
	return p
}

func TestEngineSingleZeroByte(t *testing.T) {
	f := newRecordingFactory()
	e := newTestEngine(t, f, WithStepLength(1))
	if err := e.Append([]byte{0x00}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	w := e.Walk()
	if !near(w.Heading, -math.Pi) || !near(w.X, -1) {
		t.Errorf("walk = %+v, want heading -π at x = -1", w)
	}
	if !w.HasLast || w.Last != (TileID{}) {
		t.Errorf("Last = %v (HasLast %v), want (0,0)", w.Last, w.HasLast)
	}
	if ids := e.TileIDs(); len(ids) != 1 || ids[0] != (TileID{}) {
		t.Errorf("tiles = %v, want [(0,0)]", ids)
	}

	lines := f.surfaces[TileID{}].lines
	if len(lines) != 8 {
		t.Fatalf("tile (0,0) got %d lines, want 8", len(lines))
	}
	// The first segment starts at the origin, which is the tile center.
	if lines[0].p0 != Pt(128, 128) {
		t.Errorf("first segment starts at %v, want (128,128)", lines[0].p0)
	}
	want := e.Gradient().Shade(0)
	for i, l := range lines {
		if l.style.Color != want || l.style.Width != 1 {
			t.Errorf("line %d style = %+v, want %+v width 1", i, l.style, want)
		}
	}
}

func TestEngineEmptyAppend(t *testing.T) {
	f := newRecordingFactory()
	e := newTestEngine(t, f)
	for _, p := range [][]byte{nil, {}} {
		if err := e.Append(p); err != nil {
			t.Fatalf("Append(%v): %v", p, err)
		}
	}
	if e.Walk() != (Walk{}) {
		t.Errorf("walk moved: %+v", e.Walk())
	}
	if s := e.Stats(); s.Passes != 0 || s.Ticks != 0 || s.TilesCreated != 0 {
		t.Errorf("stats after empty appends = %+v", s)
	}
	if len(f.created) != 0 {
		t.Errorf("tiles created: %v", f.created)
	}
}

func TestEngineDeterministic(t *testing.T) {
	input := testInput(2000)
	run := func() (Walk, map[TileID][]recordedLine) {
		f := newRecordingFactory()
		e := newTestEngine(t, f, WithTileSize(16), WithNormals(true))
		if err := e.Append(input); err != nil {
			t.Fatalf("Append: %v", err)
		}
		return e.Walk(), f.lines()
	}
	w1, l1 := run()
	w2, l2 := run()
	if w1 != w2 || !reflect.DeepEqual(l1, l2) {
		t.Error("two runs over the same input differ")
	}
}

// TestEngineChunkingInvariant tests that the drawing depends only on the
// concatenated input, not on how it was split or scheduled.
func TestEngineChunkingInvariant(t *testing.T) {
	input := testInput(777)

	ref := newRecordingFactory()
	refEngine := newTestEngine(t, ref, WithTileSize(16))
	if err := refEngine.Append(input); err != nil {
		t.Fatalf("Append: %v", err)
	}

	tests := []struct {
		name  string
		chunk int
		split []int
		exec  bool
	}{
		{"byte by byte", 1024, []int{1}, false},
		{"small chunks", 7, []int{100, 3, 250}, false},
		{"chunk of one", 1, []int{777}, false},
		{"executor", 16, []int{50, 1, 300}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRecordingFactory()
			opts := []Option{WithTileSize(16), WithChunkSize(tt.chunk)}
			var x *fakeExecutor
			if tt.exec {
				x = &fakeExecutor{}
				opts = append(opts, WithExecutor(x))
			}
			e := newTestEngine(t, f, opts...)

			rest, k := input, 0
			for len(rest) > 0 {
				n := min(tt.split[k%len(tt.split)], len(rest))
				if err := e.Append(rest[:n]); err != nil {
					t.Fatalf("Append: %v", err)
				}
				rest, k = rest[n:], k+1
			}
			if x != nil {
				x.run()
			}

			if !e.Idle() {
				t.Fatalf("state = %v after draining, want idle", e.State())
			}
			if e.Walk() != refEngine.Walk() {
				t.Errorf("walk = %+v, want %+v", e.Walk(), refEngine.Walk())
			}
			if !reflect.DeepEqual(f.lines(), ref.lines()) {
				t.Error("recorded lines differ from a single append")
			}
			if !reflect.DeepEqual(f.created, ref.created) {
				t.Errorf("tile creation order %v, want %v", f.created, ref.created)
			}
		})
	}
}

// TestEngineTileCrossing checks every draw against an independent
// computation: each segment goes to the tile of its end point, and also to
// the tile of its start point when that differs.
func TestEngineTileCrossing(t *testing.T) {
	const size = 4.0
	input := testInput(200)

	f := newRecordingFactory()
	e := newTestEngine(t, f, WithTileSize(size), WithStepLength(1))
	if err := e.Append(input); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reg := NewRegistry(size, 0, newRecordingFactory())
	type seg struct{ p0, p1 Point }
	want := make(map[TileID][]seg)
	w := Walk{}
	first := true
	for _, b := range input {
		for i := range 8 {
			next := Step(w, (b>>i)&1, math.Pi/8, 1)
			s := seg{w.Pos(), next.Pos()}
			t1 := reg.IDFor(s.p1.X, s.p1.Y)
			want[t1] = append(want[t1], s)
			if !first {
				if t0 := reg.IDFor(s.p0.X, s.p0.Y); t0 != t1 {
					want[t0] = append(want[t0], s)
				}
			}
			first = false
			w = next
		}
	}

	if len(want) < 3 {
		t.Fatalf("walk visited only %d tiles; test input too tame", len(want))
	}
	if len(f.surfaces) != len(want) {
		t.Errorf("engine created %d tiles, want %d", len(f.surfaces), len(want))
	}

	crossings := 0
	for id, segs := range want {
		s, ok := f.surfaces[id]
		if !ok {
			t.Errorf("tile %v never created", id)
			continue
		}
		if len(s.lines) != len(segs) {
			t.Errorf("tile %v got %d lines, want %d", id, len(s.lines), len(segs))
			continue
		}
		// Map local coordinates back to global ones.
		off := Pt(float64(id.I-1)*size+size/2, float64(id.J-1)*size+size/2)
		for k, l := range s.lines {
			g0, g1 := l.p0.Add(off), l.p1.Add(off)
			if g0.Distance(segs[k].p0) > 1e-9 || g1.Distance(segs[k].p1) > 1e-9 {
				t.Errorf("tile %v line %d = %v→%v, want %v→%v", id, k, g0, g1, segs[k].p0, segs[k].p1)
			}
			if reg.IDFor(segs[k].p1.X, segs[k].p1.Y) != id {
				crossings++
			}
		}
	}
	if crossings == 0 {
		t.Error("no segment was drawn into its start tile")
	}
	if got := e.Stats().DrawCalls; got != 200*8+crossings {
		t.Errorf("DrawCalls = %d, want %d", got, 200*8+crossings)
	}
}

func TestEngineNormals(t *testing.T) {
	f := newRecordingFactory()
	e := newTestEngine(t, f, WithStepLength(1), WithNormals(true), WithNormalStyle(2, 0.5, 0.3))
	if err := e.Append([]byte{0x5A}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	lines := f.surfaces[TileID{}].lines
	if len(lines) != 16 {
		t.Fatalf("got %d lines, want 8 segments and 8 normals", len(lines))
	}

	wantStyle := Style{Color: e.Gradient().Complement(0x5A).WithAlpha(0.3), Width: 0.5}
	w := Walk{}
	for i := range 8 {
		next := Step(w, (0x5A>>i)&1, math.Pi/8, 1)
		segment, normal := lines[2*i], lines[2*i+1]

		if normal.style != wantStyle {
			t.Errorf("normal %d style = %+v, want %+v", i, normal.style, wantStyle)
		}
		// Centered on the segment, four units long, across the heading.
		mid := segment.p0.Lerp(segment.p1, 0.5)
		if normal.p0.Lerp(normal.p1, 0.5).Distance(mid) > 1e-9 {
			t.Errorf("normal %d not centered on its segment", i)
		}
		if d := normal.p0.Distance(normal.p1); math.Abs(d-4) > 1e-9 {
			t.Errorf("normal %d length = %v, want 4", i, d)
		}
		dir := normal.p1.Sub(normal.p0)
		if dot := dir.X*math.Cos(next.Heading) + dir.Y*math.Sin(next.Heading); math.Abs(dot) > 1e-9 {
			t.Errorf("normal %d not perpendicular to heading (dot %v)", i, dot)
		}
		w = next
	}
}

func TestEngineDrawFailureHalts(t *testing.T) {
	f := newRecordingFactory()
	f.drawErr = errBoom
	f.failAfter = 3
	e := newTestEngine(t, f)

	err := e.Append([]byte{1, 2, 3})
	var te *TileError
	if !errors.As(err, &te) || te.Op != "draw" {
		t.Fatalf("Append = %v, want draw TileError", err)
	}
	if !errors.Is(err, errBoom) {
		t.Error("error does not wrap the surface failure")
	}
	if e.State() != StateHalted || e.Err() != err {
		t.Errorf("state = %v, Err() = %v", e.State(), e.Err())
	}
	if s := e.Stats(); s.Segments != 3 || s.BytesConsumed != 0 || s.Buffered != 3 {
		t.Errorf("stats = %+v, want 3 segments and nothing consumed", s)
	}

	walk := e.Walk()
	err = e.Append([]byte{4})
	if !errors.Is(err, ErrHalted) || !errors.Is(err, errBoom) {
		t.Errorf("Append after halt = %v, want ErrHalted wrapping the cause", err)
	}
	if e.Walk() != walk {
		t.Error("halted engine kept walking")
	}

	n, err := e.Write([]byte{5})
	if n != 0 || !errors.Is(err, ErrHalted) {
		t.Errorf("Write after halt = %d, %v", n, err)
	}
}

func TestEngineCreateFailureHalts(t *testing.T) {
	f := newRecordingFactory()
	f.createErr = errBoom
	e := newTestEngine(t, f)

	err := e.Append([]byte{0})
	var te *TileError
	if !errors.As(err, &te) || te.Op != "create" || te.ID != (TileID{}) {
		t.Fatalf("Append = %v, want create TileError for (0,0)", err)
	}
	if e.State() != StateHalted {
		t.Errorf("state = %v, want halted", e.State())
	}
}

func TestEngineAppendFromSurface(t *testing.T) {
	f := newRecordingFactory()
	e := newTestEngine(t, f, WithTileSize(16))
	appended := false
	f.onDraw = func(TileID) {
		if !appended {
			appended = true
			if err := e.Append([]byte{0x42, 0x43}); err != nil {
				t.Errorf("nested Append: %v", err)
			}
		}
	}
	if err := e.Append([]byte{0x10}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	ref := newRecordingFactory()
	refEngine := newTestEngine(t, ref, WithTileSize(16))
	if err := refEngine.Append([]byte{0x10, 0x42, 0x43}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !e.Idle() {
		t.Errorf("state = %v, want idle", e.State())
	}
	if !reflect.DeepEqual(f.lines(), ref.lines()) {
		t.Error("bytes appended during a draw were not consumed in order")
	}
	if s := e.Stats(); s.Passes != 1 || s.BytesConsumed != 3 {
		t.Errorf("stats = %+v, want one pass over 3 bytes", s)
	}
}

func TestEngineAppendText(t *testing.T) {
	run := func(appendFn func(*Engine) error) Walk {
		e := newTestEngine(t, newRecordingFactory())
		if err := appendFn(e); err != nil {
			t.Fatal(err)
		}
		return e.Walk()
	}

	got := run(func(e *Engine) error { return e.AppendText("aéĀ") })
	want := run(func(e *Engine) error { return e.Append([]byte{'a', 0xe9, 0x00}) })
	if got != want {
		t.Errorf("AppendText walk = %+v, want %+v", got, want)
	}
}

func TestEngineWrite(t *testing.T) {
	e := newTestEngine(t, newRecordingFactory())
	n, err := e.Write([]byte("hello"))
	if n != 5 || err != nil {
		t.Errorf("Write = %d, %v", n, err)
	}
	if s := e.Stats(); s.BytesAppended != 5 || s.BytesConsumed != 5 {
		t.Errorf("stats = %+v", s)
	}
}

func TestEngineStats(t *testing.T) {
	e := newTestEngine(t, newRecordingFactory())
	if err := e.Append([]byte{0xff}); err != nil {
		t.Fatal(err)
	}
	want := Stats{
		BytesAppended: 1,
		BytesConsumed: 1,
		Passes:        1,
		Ticks:         1,
		Segments:      8,
		DrawCalls:     8,
		TilesCreated:  1,
	}
	if got := e.Stats(); got != want {
		t.Errorf("Stats() = %+v\nwant %+v", got, want)
	}
}

func TestEngineTileLimit(t *testing.T) {
	f := newRecordingFactory()
	var evicted []TileID
	e := newTestEngine(t, f,
		WithTileSize(4),
		WithStepLength(1),
		WithTileLimit(2),
		WithEvictHandler(func(t *Tile) { evicted = append(evicted, t.ID) }),
	)
	if err := e.Append(testInput(500)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if len(e.Tiles()) > 2 {
		t.Errorf("%d live tiles, limit is 2", len(e.Tiles()))
	}
	if len(evicted) == 0 {
		t.Fatal("nothing was evicted")
	}
	s := e.Stats()
	if s.TilesEvicted != len(evicted) || s.TilesCreated-s.TilesEvicted != len(e.Tiles()) {
		t.Errorf("stats = %+v with %d live tiles", s, len(e.Tiles()))
	}
	if _, ok := e.Tile(e.Walk().Last); !ok {
		t.Error("tile of the walk's position was evicted")
	}
	for _, id := range evicted {
		if _, live := e.Tile(id); !live && !f.surfaces[id].closed {
			t.Errorf("evicted tile %v not closed", id)
		}
	}
}
