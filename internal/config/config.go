// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads bitwalk settings from YAML files.
//
// A file is checked against an embedded JSON schema before it is decoded,
// so unknown keys and malformed values are reported with their location.
// Keys a file leaves out keep the values of bitwalk.DefaultConfig.
//
//	tile:
//	  size: 256
//	  background: "#101010"
//	walk:
//	  turn_degrees: 22.5
//	schedule:
//	  interval: 20ms
//	normals:
//	  enabled: true
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/bitwalk"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://gogpu.dev/bitwalk/config.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// File mirrors the YAML layout.
type File struct {
	Tile     Tile     `yaml:"tile"`
	Walk     Walk     `yaml:"walk"`
	Schedule Schedule `yaml:"schedule"`
	Stroke   Stroke   `yaml:"stroke"`
	Normals  Normals  `yaml:"normals"`
}

type Tile struct {
	Size       float64 `yaml:"size"`
	Border     float64 `yaml:"border"`
	Limit      int     `yaml:"limit"`
	Background string  `yaml:"background"`
	Backend    string  `yaml:"backend"`
}

type Walk struct {
	Step        float64 `yaml:"step"`
	TurnDegrees float64 `yaml:"turn_degrees"`
}

type Schedule struct {
	Chunk      int    `yaml:"chunk"`
	Interval   string `yaml:"interval"`
	Compaction string `yaml:"compaction"`
}

type Stroke struct {
	Width    float64  `yaml:"width"`
	Alpha    float64  `yaml:"alpha"`
	Gradient Gradient `yaml:"gradient"`
}

type Gradient struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type Normals struct {
	Enabled bool    `yaml:"enabled"`
	Scale   float64 `yaml:"scale"`
	Width   float64 `yaml:"width"`
	Alpha   float64 `yaml:"alpha"`
}

// Settings is a decoded configuration file.
type Settings struct {
	Engine bitwalk.Config

	// Backend names the surface backend, see surface.NewFactory. Empty
	// selects the default.
	Backend string

	// Background fills tiles before drawing.
	Background bitwalk.RGBA
}

// Options returns the engine options the settings describe.
func (s Settings) Options() []bitwalk.Option {
	return []bitwalk.Option{bitwalk.WithConfig(s.Engine)}
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{Engine: bitwalk.DefaultConfig(), Background: bitwalk.Black}
}

// defaultFile returns a File holding the default settings, so that keys
// absent from a document keep them.
func defaultFile() File {
	cfg := bitwalk.DefaultConfig()
	return File{
		Tile: Tile{
			Size:       cfg.TileSize,
			Border:     cfg.BorderWidth,
			Limit:      cfg.TileLimit,
			Background: bitwalk.Black.String(),
		},
		Walk: Walk{
			Step:        cfg.StepLength,
			TurnDegrees: cfg.TurnAngle * 180 / math.Pi,
		},
		Schedule: Schedule{
			Chunk:      cfg.ChunkSize,
			Interval:   cfg.TickInterval.String(),
			Compaction: cfg.Compaction.String(),
		},
		Stroke: Stroke{
			Width: cfg.StrokeWidth,
			Alpha: cfg.StrokeAlpha,
			Gradient: Gradient{
				Start: cfg.GradientStart.String(),
				End:   cfg.GradientEnd.String(),
			},
		},
		Normals: Normals{
			Enabled: cfg.Normals,
			Scale:   cfg.NormalScale,
			Width:   cfg.NormalWidth,
			Alpha:   cfg.NormalAlpha,
		},
	}
}

// Load reads and decodes the file at path.
func Load(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := Parse(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse validates and decodes a YAML document. An empty document yields
// Default.
func Parse(raw []byte) (Settings, error) {
	if err := validate(raw); err != nil {
		return Settings{}, err
	}

	f := defaultFile()
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return f.settings()
}

// validate checks raw against the schema. The YAML is converted to the
// JSON data model first, since the validator expects json.Unmarshal output.
func validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("config: schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (f File) settings() (Settings, error) {
	bg, err := bitwalk.ParseHex(f.Tile.Background)
	if err != nil {
		return Settings{}, fmt.Errorf("config: tile.background: %w", err)
	}
	start, err := bitwalk.ParseHex(f.Stroke.Gradient.Start)
	if err != nil {
		return Settings{}, fmt.Errorf("config: stroke.gradient.start: %w", err)
	}
	end, err := bitwalk.ParseHex(f.Stroke.Gradient.End)
	if err != nil {
		return Settings{}, fmt.Errorf("config: stroke.gradient.end: %w", err)
	}
	interval, err := time.ParseDuration(f.Schedule.Interval)
	if err != nil {
		return Settings{}, fmt.Errorf("config: schedule.interval: %w", err)
	}

	var compaction bitwalk.CompactionPolicy
	switch f.Schedule.Compaction {
	case "idle":
		compaction = bitwalk.CompactOnIdle
	case "never":
		compaction = bitwalk.CompactNever
	default:
		return Settings{}, fmt.Errorf("config: schedule.compaction: unknown policy %q", f.Schedule.Compaction)
	}

	cfg := bitwalk.Config{
		TileSize:      f.Tile.Size,
		BorderWidth:   f.Tile.Border,
		StepLength:    f.Walk.Step,
		TurnAngle:     f.Walk.TurnDegrees * math.Pi / 180,
		ChunkSize:     f.Schedule.Chunk,
		TickInterval:  interval,
		GradientStart: start,
		GradientEnd:   end,
		StrokeAlpha:   f.Stroke.Alpha,
		StrokeWidth:   f.Stroke.Width,
		Normals:       f.Normals.Enabled,
		NormalScale:   f.Normals.Scale,
		NormalWidth:   f.Normals.Width,
		NormalAlpha:   f.Normals.Alpha,
		Compaction:    compaction,
		TileLimit:     f.Tile.Limit,
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return Settings{Engine: cfg, Backend: f.Tile.Backend, Background: bg}, nil
}
