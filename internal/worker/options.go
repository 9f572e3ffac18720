package worker

import (
	"path/filepath"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/engine"
)

const (
	singleOutputTemplate   = "%(title)s.%(ext)s"
	playlistOutputTemplate = "%(playlist_title)s/%(title)s.%(ext)s"

	audioFormat  = "bestaudio/best"
	audioCodec   = "mp3"
	audioBitrate = "192K"
	videoMerge   = "mp4"
	subtitleConv = "srt"
)

// formatSelectors maps a quality tier to an engine format selector. Every
// selector ends in a bare "best" so a narrower tier never fails outright.
var formatSelectors = map[domain.Quality]string{
	domain.Quality4K:    "bestvideo+bestaudio/best",
	domain.Quality1080p: "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best[height<=1080]/best",
	domain.Quality720p:  "bestvideo[height<=720]+bestaudio/best[height<=720]/best[height<=720]/best",
}

// FormatSelector returns the engine format selector for a job.
func FormatSelector(kind domain.Kind, quality domain.Quality) string {
	if kind == domain.KindAudio {
		return audioFormat
	}
	if sel, ok := formatSelectors[quality]; ok {
		return sel
	}
	return "bestvideo+bestaudio/best"
}

// BuildFetchOptions translates a submission into the engine configuration bundle.
func BuildFetchOptions(outputDir string, req domain.SubmitRequest) engine.FetchOptions {
	tmpl := singleOutputTemplate
	if req.DownloadPlaylist {
		tmpl = playlistOutputTemplate
	}

	opts := engine.FetchOptions{
		URL:               req.URL,
		OutputTemplate:    filepath.Join(outputDir, tmpl),
		Playlist:          req.DownloadPlaylist,
		Format:            FormatSelector(req.Kind, req.Quality),
		RestrictFilenames: true,
		IgnoreErrors:      true,
	}

	if req.Subtitles {
		opts.Subtitles = engine.SubtitleOptions{
			Enabled:   true,
			Languages: subtitleLanguages(req.SubtitleLang),
			ConvertTo: subtitleConv,
		}
	}

	if req.Kind == domain.KindAudio {
		opts.Audio = engine.AudioOptions{
			Extract: true,
			Codec:   audioCodec,
			Quality: audioBitrate,
		}
	} else {
		opts.MergeOutputFormat = videoMerge
	}

	return opts
}

func subtitleLanguages(lang string) []string {
	if lang == "" || lang == domain.SubtitleLangAll {
		return []string{"all", "-live_chat"}
	}
	return []string{lang}
}
