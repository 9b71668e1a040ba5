// Command bitwalk draws a file, or random data, as a random walk across
// tiles and writes the result as PNG images.
//
// Usage:
//
//	bitwalk -in data.bin -out walk.png
//	bitwalk -random 10240 -seed 7 -tiles ./tiles -normals
//	bitwalk -in dump.zst -config bitwalk.yaml -journal draws.jsonl.zst
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/bitwalk"
	"github.com/gogpu/bitwalk/internal/config"
	"github.com/gogpu/bitwalk/internal/export"
	"github.com/gogpu/bitwalk/internal/journal"
	"github.com/gogpu/bitwalk/runloop"
	"github.com/gogpu/bitwalk/surface"
)

// readSize is the size of the pieces handed to Engine.Append.
const readSize = 4 << 10

// maxPending bounds the input buffered ahead of the walk.
const maxPending = 1 << 20

type options struct {
	in       string
	random   int
	seed     uint64
	config   string
	backend  string
	out      string
	thumb    int
	tiles    string
	journal  string
	normals  bool
	maxTiles int
	verbose  bool
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", "", "input file, - for stdin; .zst files are decompressed")
	flag.IntVar(&o.random, "random", 0, "draw this many random bytes instead of a file")
	flag.Uint64Var(&o.seed, "seed", 1, "seed for -random")
	flag.StringVar(&o.config, "config", "", "YAML configuration file")
	flag.StringVar(&o.backend, "surface", "", "surface backend (default from config, else "+strings.Join(surface.List(), ", ")+")")
	flag.StringVar(&o.out, "out", "bitwalk.png", "mosaic PNG output, empty to skip")
	flag.IntVar(&o.thumb, "thumb", 0, "shrink the mosaic so no side exceeds this many pixels (0 keeps full size)")
	flag.StringVar(&o.tiles, "tiles", "", "directory for one PNG per tile")
	flag.StringVar(&o.journal, "journal", "", "write every draw call to this .jsonl.zst file")
	flag.BoolVar(&o.normals, "normals", false, "draw the decoration across each segment")
	flag.IntVar(&o.maxTiles, "max-tiles", 0, "keep at most this many tiles in memory (0 = unbounded)")
	flag.BoolVar(&o.verbose, "v", false, "log scheduler and tile activity")
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("bitwalk failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	settings := config.Default()
	if o.config != "" {
		var err error
		if settings, err = config.Load(o.config); err != nil {
			return err
		}
	}
	if o.backend != "" {
		settings.Backend = o.backend
	}
	if o.normals {
		settings.Engine.Normals = true
	}
	if o.maxTiles > 0 {
		settings.Engine.TileLimit = o.maxTiles
	}

	input, closeInput, err := openInput(o)
	if err != nil {
		return err
	}
	defer closeInput()

	factory, err := surface.NewFactory(settings.Backend, surface.Options{
		TileSize:   int(math.Ceil(settings.Engine.TileSize)),
		Background: settings.Background,
	})
	if err != nil {
		return err
	}

	if o.journal != "" {
		f, err := os.Create(o.journal)
		if err != nil {
			return err
		}
		defer f.Close()
		jw, err := journal.NewWriter(f)
		if err != nil {
			return err
		}
		defer func() {
			if err := jw.Close(); err != nil {
				logger.Error("closing journal", "err", err)
				return
			}
			logger.Info("journal written", "path", o.journal, "entries", humanize.Comma(int64(jw.Count())))
		}()
		factory = journal.Wrap(factory, jw)
	}

	if o.tiles != "" {
		if err := os.MkdirAll(o.tiles, 0o755); err != nil {
			return err
		}
	}

	loop := runloop.New()
	go func() { _ = loop.Run(ctx) }()
	defer loop.Stop()

	opts := append(settings.Options(),
		bitwalk.WithExecutor(loop),
		bitwalk.WithLogger(logger),
	)
	if o.tiles != "" {
		opts = append(opts, bitwalk.WithEvictHandler(func(t *bitwalk.Tile) {
			if err := export.Tile(o.tiles, t); err != nil {
				logger.Warn("saving evicted tile", "tile", t.ID, "err", err)
			}
		}))
	}
	e, err := bitwalk.New(factory, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := feed(ctx, loop, e, input, settings.Engine.TickInterval); err != nil {
		return err
	}
	if err := waitUntil(ctx, loop, e, settings.Engine.TickInterval, func(e *bitwalk.Engine) bool {
		return e.State() != bitwalk.StateDraining
	}); err != nil {
		return err
	}

	var stats bitwalk.Stats
	var tiles []*bitwalk.Tile
	if err := loop.Do(ctx, func() {
		stats = e.Stats()
		tiles = e.Tiles()
	}); err != nil {
		return err
	}
	logger.Info("walk finished",
		"input", humanize.Bytes(uint64(stats.BytesConsumed)),
		"segments", humanize.Comma(int64(stats.Segments)),
		"tiles", stats.TilesCreated,
		"evicted", stats.TilesEvicted,
		"ticks", stats.Ticks,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return writeOutputs(o, settings, tiles, logger)
}

// openInput returns the byte source selected by -in or -random.
func openInput(o options) (io.Reader, func(), error) {
	nop := func() {}
	switch {
	case o.in != "" && o.random > 0:
		return nil, nop, errors.New("-in and -random are mutually exclusive")
	case o.random > 0:
		rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))
		buf := make([]byte, o.random)
		for i := range buf {
			buf[i] = byte(rng.Uint32())
		}
		return bytes.NewReader(buf), nop, nil
	case o.in == "":
		return nil, nop, errors.New("no input: use -in or -random")
	}

	var f *os.File
	if o.in == "-" {
		f = os.Stdin
	} else {
		var err error
		if f, err = os.Open(o.in); err != nil {
			return nil, nop, err
		}
	}
	if !strings.HasSuffix(o.in, ".zst") {
		return f, func() { _ = f.Close() }, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nop, err
	}
	return dec, func() {
		dec.Close()
		_ = f.Close()
	}, nil
}

// feed appends r to e on the loop in readSize pieces, pausing while more
// than maxPending bytes wait to be drawn.
func feed(ctx context.Context, loop *runloop.Loop, e *bitwalk.Engine, r io.Reader, poll time.Duration) error {
	buf := make([]byte, readSize)
	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			piece := bytes.Clone(buf[:n])
			var aerr error
			if err := loop.Do(ctx, func() { aerr = e.Append(piece) }); err != nil {
				return err
			}
			if aerr != nil {
				return aerr
			}
			err := waitUntil(ctx, loop, e, poll, func(e *bitwalk.Engine) bool {
				return e.Stats().Buffered < maxPending
			})
			if err != nil {
				return err
			}
		}
		switch {
		case rerr == io.EOF || rerr == io.ErrUnexpectedEOF:
			return nil
		case rerr != nil:
			return fmt.Errorf("reading input: %w", rerr)
		}
	}
}

// waitUntil polls cond on the loop every interval. It fails early if the
// engine has halted.
func waitUntil(ctx context.Context, loop *runloop.Loop, e *bitwalk.Engine, interval time.Duration, cond func(*bitwalk.Engine) bool) error {
	interval = max(interval, time.Millisecond)
	for {
		var ok bool
		var halted error
		if err := loop.Do(ctx, func() {
			if e.State() == bitwalk.StateHalted {
				halted = e.Err()
				return
			}
			ok = cond(e)
		}); err != nil {
			return err
		}
		if halted != nil {
			return halted
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func writeOutputs(o options, settings config.Settings, tiles []*bitwalk.Tile, logger *slog.Logger) error {
	if len(tiles) == 0 {
		logger.Warn("nothing was drawn")
		return nil
	}
	if _, ok := surface.ImageOf(tiles[0].Surface); !ok {
		logger.Info("backend produced no images; skipping PNG output", "backend", settings.Backend)
		return nil
	}

	if o.tiles != "" {
		pool := export.NewPool(0)
		err := export.Tiles(pool, o.tiles, tiles)
		pool.Close()
		if err != nil {
			return err
		}
		logger.Info("tiles written", "dir", o.tiles, "count", len(tiles))
	}

	if o.out == "" {
		return nil
	}
	img, err := surface.ComposeScaled(tiles, settings.Background, o.thumb)
	if err != nil {
		return err
	}
	if err := surface.SavePNG(o.out, img); err != nil {
		return err
	}
	b := img.Bounds()
	logger.Info("mosaic written", "path", o.out, "width", b.Dx(), "height", b.Dy())
	return nil
}
