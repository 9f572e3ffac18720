package domain

import "time"

// SubmitRequest represents the request body for starting a new fetch.
type SubmitRequest struct {
	URL              string  `json:"url" validate:"required,media_url"`
	Kind             Kind    `json:"format" validate:"omitempty,oneof=video audio"`
	Quality          Quality `json:"quality" validate:"omitempty,oneof=4k 1080p 720p best default"`
	Subtitles        bool    `json:"subtitles"`
	SubtitleLang     string  `json:"subtitle_lang" validate:"omitempty,max=32"`
	DownloadPlaylist bool    `json:"download_playlist"`
}

// Normalize fills in the defaults: video at best quality.
func (r *SubmitRequest) Normalize() {
	if r.Kind == "" {
		r.Kind = KindVideo
	}
	if r.Quality == "" || r.Quality == "default" {
		r.Quality = QualityBest
	}
}

// InfoRequest represents the request body for a metadata lookup.
type InfoRequest struct {
	URL string `json:"url" validate:"required,media_url"`
}

// CancelRequest represents the request body for cancelling a task.
type CancelRequest struct {
	TaskID string `json:"task_id" validate:"required"`
}

// MediaInfo is the metadata preview returned before a fetch is submitted.
type MediaInfo struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  string   `json:"duration"`
	Uploader  string   `json:"uploader"`
	ViewCount int64    `json:"view_count"`
	Subtitles []string `json:"subtitles"`
}

// EntryKind distinguishes single files from playlist directories in the retention root.
type EntryKind string

const (
	EntryKindFile     EntryKind = "file"
	EntryKindPlaylist EntryKind = "playlist"
)

// RetentionEntry describes one top-level entry of the retention root.
type RetentionEntry struct {
	Name       string
	Kind       EntryKind
	SizeBytes  int64
	ModifiedAt time.Time
}

// Age returns how long ago the entry was last modified or touched.
func (e RetentionEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.ModifiedAt)
}

// HistoryItem represents one row of the retained files listing.
type HistoryItem struct {
	Name             string    `json:"name"`
	Type             EntryKind `json:"type"`
	Size             int64     `json:"size"`
	Date             string    `json:"date"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	ExpiresAt        int64     `json:"expires_at"`
}

// HistoryDateLayout is the timestamp format of HistoryItem.Date.
const HistoryDateLayout = "2006-01-02 15:04:05"
