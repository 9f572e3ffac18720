package domain

// TaskStatus represents the current state of a fetch task.
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusStarting    TaskStatus = "starting"
	TaskStatusDownloading TaskStatus = "downloading"
	TaskStatusProcessing  TaskStatus = "processing"
	TaskStatusCompleted   TaskStatus = "completed"
	TaskStatusCancelled   TaskStatus = "cancelled"
	TaskStatusError       TaskStatus = "error"
)

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled || s == TaskStatusError
}

// IsTransferring reports whether the engine is actively moving or converting bytes.
func (s TaskStatus) IsTransferring() bool {
	return s == TaskStatusDownloading || s == TaskStatusProcessing
}

// Kind selects what the engine produces for a job.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Extension returns the container extension of a finished single-item job.
func (k Kind) Extension() string {
	if k == KindAudio {
		return ".mp3"
	}
	return ".mp4"
}

// Quality is a fixed preset tier mapped to an engine format selector.
type Quality string

const (
	Quality4K    Quality = "4k"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	QualityBest  Quality = "best"
)

// SubtitleLangAll requests every available subtitle track.
const SubtitleLangAll = "all"
