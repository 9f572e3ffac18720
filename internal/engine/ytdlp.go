package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

const defaultProgressInterval = 500 * time.Millisecond

// Ytdlp drives the yt-dlp executable through go-ytdlp.
type Ytdlp struct {
	logger           *slog.Logger
	progressInterval time.Duration
}

// NewYtdlp creates an engine backed by the yt-dlp binary found on PATH or in
// the go-ytdlp cache.
func NewYtdlp(logger *slog.Logger) *Ytdlp {
	return &Ytdlp{
		logger:           logger,
		progressInterval: defaultProgressInterval,
	}
}

// Install downloads a yt-dlp release into the go-ytdlp cache if none is available.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	return nil
}

type probeInfo struct {
	Title             string                     `json:"title"`
	Thumbnail         string                     `json:"thumbnail"`
	Duration          float64                    `json:"duration"`
	Uploader          string                     `json:"uploader"`
	ViewCount         int64                      `json:"view_count"`
	Subtitles         map[string]json.RawMessage `json:"subtitles"`
	AutomaticCaptions map[string]json.RawMessage `json:"automatic_captions"`
}

// Probe resolves metadata for a single item without downloading it.
func (y *Ytdlp) Probe(ctx context.Context, url string) (*Metadata, error) {
	result, err := ytdlp.New().
		NoPlaylist().
		SkipDownload().
		NoWarnings().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, engineError(result, err))
	}

	var info probeInfo
	if err := json.Unmarshal([]byte(strings.TrimSpace(result.Stdout)), &info); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	return &Metadata{
		Title:             info.Title,
		Thumbnail:         info.Thumbnail,
		DurationSeconds:   info.Duration,
		Uploader:          info.Uploader,
		ViewCount:         info.ViewCount,
		SubtitleLanguages: keys(info.Subtitles),
		CaptionLanguages:  keys(info.AutomaticCaptions),
	}, nil
}

// Fetch runs the download and post-processing for opts. The hook is called on
// every progress update; when it returns an error the run context is cancelled,
// which terminates the yt-dlp process.
func (y *Ytdlp) Fetch(ctx context.Context, opts FetchOptions, hook ProgressHook) (*FetchResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		abortErr error
	)

	cmd := y.command(opts)
	cmd.ProgressFunc(y.progressInterval, func(update ytdlp.ProgressUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if abortErr != nil {
			return
		}
		if err := hook(tickFromUpdate(&update)); err != nil {
			abortErr = err
			cancel()
		}
	})

	result, err := cmd.Run(runCtx, opts.URL)

	mu.Lock()
	aborted := abortErr
	mu.Unlock()

	if aborted != nil {
		return nil, fmt.Errorf("fetch aborted: %w", aborted)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch interrupted: %w", ctxErr)
		}
		return nil, engineError(result, err)
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("read extracted info: %w", err)
	}

	files := make([]string, 0, len(infos))
	for _, info := range infos {
		if info != nil && info.Filename != nil && *info.Filename != "" {
			files = append(files, *info.Filename)
		}
	}

	return &FetchResult{Files: files}, nil
}

func (y *Ytdlp) command(opts FetchOptions) *ytdlp.Command {
	cmd := ytdlp.New().
		Output(opts.OutputTemplate).
		NoWarnings().
		PrintJSON()

	if opts.Playlist {
		cmd = cmd.YesPlaylist()
	} else {
		cmd = cmd.NoPlaylist()
	}
	if opts.RestrictFilenames {
		cmd = cmd.RestrictFilenames()
	}
	if opts.IgnoreErrors {
		cmd = cmd.IgnoreErrors()
	}
	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.MergeOutputFormat != "" {
		cmd = cmd.MergeOutputFormat(opts.MergeOutputFormat)
	}

	if opts.Subtitles.Enabled {
		cmd = cmd.WriteSubs().WriteAutoSubs()
		if len(opts.Subtitles.Languages) > 0 {
			cmd = cmd.SubLangs(strings.Join(opts.Subtitles.Languages, ","))
		}
		if opts.Subtitles.ConvertTo != "" {
			cmd = cmd.ConvertSubs(opts.Subtitles.ConvertTo)
		}
	}

	if opts.Audio.Extract {
		cmd = cmd.ExtractAudio()
		if opts.Audio.Codec != "" {
			cmd = cmd.AudioFormat(opts.Audio.Codec)
		}
		if opts.Audio.Quality != "" {
			cmd = cmd.AudioQuality(opts.Audio.Quality)
		}
	}

	y.logger.Debug("engine command prepared",
		"url", opts.URL,
		"format", opts.Format,
		"playlist", opts.Playlist,
		"subtitles", opts.Subtitles.Enabled,
		"extract_audio", opts.Audio.Extract,
	)

	return cmd
}

type playlistPosition struct {
	PlaylistIndex *int `json:"playlist_index"`
	PlaylistCount *int `json:"playlist_count"`
	NEntries      *int `json:"n_entries"`
}

func tickFromUpdate(update *ytdlp.ProgressUpdate) Tick {
	tick := Tick{Status: TickOther}

	switch update.Status {
	case ytdlp.ProgressStatusDownloading:
		tick.Status = TickDownloading
	case ytdlp.ProgressStatusFinished:
		tick.Status = TickFinished
	}

	if update.TotalBytes > 0 {
		tick.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}

	if !update.Started.IsZero() {
		if elapsed := time.Since(update.Started).Seconds(); elapsed > 0 {
			bytesPerSecond := float64(update.DownloadedBytes) / elapsed
			tick.Speed = fmt.Sprintf("%.1fMB/s", bytesPerSecond/1024/1024)
		}
	}

	if eta := update.ETA(); eta > 0 {
		tick.ETA = FormatClock(eta.Seconds())
	}

	if update.Info != nil {
		if raw, err := json.Marshal(update.Info); err == nil {
			var pos playlistPosition
			if json.Unmarshal(raw, &pos) == nil && pos.PlaylistIndex != nil {
				count := pos.PlaylistCount
				if count == nil {
					count = pos.NEntries
				}
				if count != nil {
					tick.PlaylistIndex = pos.PlaylistIndex
					tick.PlaylistCount = count
				}
			}
		}
	}

	return tick
}

func engineError(result *ytdlp.Result, err error) error {
	if result == nil {
		return err
	}
	if msg := lastErrorLine(result.Stderr); msg != "" {
		return errors.New(msg)
	}
	return err
}

func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	return ""
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
