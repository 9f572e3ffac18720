// Package engine defines the boundary to the external media extraction engine.
// Everything behind Engine is opaque: it resolves URLs, downloads streams and
// runs post-processing. Callers only see metadata, progress ticks and the
// final output paths.
package engine

import (
	"context"
)

// TickStatus is the phase an engine progress tick reports.
type TickStatus string

const (
	TickDownloading TickStatus = "downloading"
	TickFinished    TickStatus = "finished"
	TickOther       TickStatus = "other"
)

// Tick is one progress report emitted by the engine while a fetch runs.
type Tick struct {
	Status        TickStatus
	Percent       float64
	Speed         string
	ETA           string
	PlaylistIndex *int
	PlaylistCount *int
}

// ProgressHook receives every tick. Returning a non-nil error aborts the fetch
// at that checkpoint; Fetch then returns an error wrapping it.
type ProgressHook func(Tick) error

// SubtitleOptions controls subtitle download and conversion.
type SubtitleOptions struct {
	Enabled   bool
	Languages []string
	ConvertTo string
}

// AudioOptions controls audio extraction post-processing.
type AudioOptions struct {
	Extract bool
	Codec   string
	Quality string
}

// FetchOptions is the configuration bundle handed to the engine for one job.
type FetchOptions struct {
	URL               string
	OutputTemplate    string
	Playlist          bool
	Format            string
	MergeOutputFormat string
	RestrictFilenames bool
	IgnoreErrors      bool
	Subtitles         SubtitleOptions
	Audio             AudioOptions
}

// FetchResult carries the canonical output path of every item the engine produced.
type FetchResult struct {
	Files []string
}

// Metadata is what the engine resolves for a URL without downloading it.
type Metadata struct {
	Title             string
	Thumbnail         string
	DurationSeconds   float64
	Uploader          string
	ViewCount         int64
	SubtitleLanguages []string
	CaptionLanguages  []string
}

// Engine is the opaque media extraction engine.
type Engine interface {
	Probe(ctx context.Context, url string) (*Metadata, error)
	Fetch(ctx context.Context, opts FetchOptions, hook ProgressHook) (*FetchResult, error)
}
