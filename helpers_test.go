package bitwalk

import (
	"errors"
	"time"
)

var errBoom = errors.New("boom")

type recordedLine struct {
	p0, p1 Point
	style  Style
}

// fakeSurface records draw calls for its factory.
type fakeSurface struct {
	f      *recordingFactory
	id     TileID
	lines  []recordedLine
	closed bool
}

func (s *fakeSurface) DrawLine(p0, p1 Point, style Style) error {
	s.f.draws++
	if s.f.drawErr != nil && s.f.draws > s.f.failAfter {
		return s.f.drawErr
	}
	s.lines = append(s.lines, recordedLine{p0, p1, style})
	if s.f.onDraw != nil {
		s.f.onDraw(s.id)
	}
	return nil
}

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

// recordingFactory hands out fakeSurfaces and can inject failures.
type recordingFactory struct {
	surfaces map[TileID]*fakeSurface
	created  []TileID
	origins  map[TileID]Point

	createErr error // returned by CreateSurface when set
	drawErr   error // returned by every DrawLine after failAfter calls
	failAfter int
	draws     int

	onDraw func(TileID)
}

func newRecordingFactory() *recordingFactory {
	return &recordingFactory{
		surfaces: make(map[TileID]*fakeSurface),
		origins:  make(map[TileID]Point),
	}
}

func (f *recordingFactory) CreateSurface(id TileID, origin Point) (Surface, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := &fakeSurface{f: f, id: id}
	f.surfaces[id] = s
	f.created = append(f.created, id)
	f.origins[id] = origin
	return s, nil
}

// lines returns the recorded lines of every tile, keyed by tile.
func (f *recordingFactory) lines() map[TileID][]recordedLine {
	out := make(map[TileID][]recordedLine, len(f.surfaces))
	for id, s := range f.surfaces {
		out[id] = s.lines
	}
	return out
}

// fakeExecutor queues callbacks until run is called.
type fakeExecutor struct {
	queue  []func()
	delays []time.Duration
}

func (x *fakeExecutor) AfterFunc(d time.Duration, f func()) {
	x.queue = append(x.queue, f)
	x.delays = append(x.delays, d)
}

// step runs the oldest queued callback, if any.
func (x *fakeExecutor) step() bool {
	if len(x.queue) == 0 {
		return false
	}
	f := x.queue[0]
	x.queue = x.queue[1:]
	f()
	return true
}

// run executes queued callbacks, including ones queued while running, and
// returns how many ran.
func (x *fakeExecutor) run() int {
	n := 0
	for x.step() {
		n++
	}
	return n
}
