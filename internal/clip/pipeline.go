// Package clip defines the contract with the external clip-generation
// pipeline. Segment selection, captioning and the video filter graph live
// behind this boundary and can be swapped without touching the queue or
// worker design.
package clip

import "context"

// Request carries the per-job parameters handed to the pipeline.
type Request struct {
	// SourcePath is the local path of the downloaded (or resolved) source.
	SourcePath string

	// OutputDir is where the pipeline writes its artifacts.
	OutputDir string

	MaxDurationSeconds int
	WatermarkText      string
	VariantCount       int
}

// Variant describes one alternate rendered clip.
type Variant struct {
	Index           int     `json:"index"`
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Result is the pipeline's report of produced artifacts.
type Result struct {
	ClipPath        string    `json:"clip_path"`
	ClipPaths       []string  `json:"clip_paths"`
	CaptionsPath    string    `json:"captions_path"`
	TimelinePath    string    `json:"timeline_path"`
	DurationSeconds float64   `json:"duration_seconds"`
	Variants        []Variant `json:"variants"`
}

// Pipeline turns a local source file into a short captioned clip.
// Implementations are expected to be safe for concurrent use by multiple
// worker loops.
type Pipeline interface {
	Process(ctx context.Context, req Request) (*Result, error)
}
