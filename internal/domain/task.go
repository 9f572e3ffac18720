package domain

import (
	"time"
)

// TaskRecord is the observable state of one submitted job.
// Values handed out by the registry are copies; only the registry holds the live record.
type TaskRecord struct {
	ID              string     `json:"task_id"`
	Status          TaskStatus `json:"status"`
	Progress        float64    `json:"progress"`
	Speed           string     `json:"speed,omitempty"`
	ETA             string     `json:"eta,omitempty"`
	PlaylistIndex   *int       `json:"playlist_index,omitempty"`
	PlaylistCount   *int       `json:"playlist_count,omitempty"`
	IsPlaylist      bool       `json:"is_playlist"`
	CancelRequested bool       `json:"cancel_requested"`
	Filename        *string    `json:"filename"`
	ErrorMessage    string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewTaskRecord returns a pending record for a fresh submission.
func NewTaskRecord(id string, isPlaylist bool, now time.Time) *TaskRecord {
	return &TaskRecord{
		ID:         id,
		Status:     TaskStatusPending,
		IsPlaylist: isPlaylist,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy safe to hand to readers.
func (t *TaskRecord) Clone() TaskRecord {
	c := *t
	if t.PlaylistIndex != nil {
		v := *t.PlaylistIndex
		c.PlaylistIndex = &v
	}
	if t.PlaylistCount != nil {
		v := *t.PlaylistCount
		c.PlaylistCount = &v
	}
	if t.Filename != nil {
		v := *t.Filename
		c.Filename = &v
	}
	return c
}
