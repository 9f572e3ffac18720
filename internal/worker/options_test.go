package worker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veranemoloko/media-downloader/internal/domain"
)

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.Kind
		quality domain.Quality
		want    string
	}{
		{"audio ignores quality", domain.KindAudio, domain.Quality4K, "bestaudio/best"},
		{"4k", domain.KindVideo, domain.Quality4K, "bestvideo+bestaudio/best"},
		{"1080p", domain.KindVideo, domain.Quality1080p, "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best[height<=1080]/best"},
		{"720p", domain.KindVideo, domain.Quality720p, "bestvideo[height<=720]+bestaudio/best[height<=720]/best[height<=720]/best"},
		{"default", domain.KindVideo, domain.QualityBest, "bestvideo+bestaudio/best"},
		{"unknown tier", domain.KindVideo, domain.Quality("480p"), "bestvideo+bestaudio/best"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSelector(tt.kind, tt.quality))
		})
	}
}

func TestBuildFetchOptions(t *testing.T) {
	t.Run("video single item", func(t *testing.T) {
		opts := BuildFetchOptions("/data", domain.SubmitRequest{URL: "https://e.com/v", Kind: domain.KindVideo, Quality: domain.Quality1080p})

		assert.Equal(t, filepath.Join("/data", "%(title)s.%(ext)s"), opts.OutputTemplate)
		assert.False(t, opts.Playlist)
		assert.True(t, opts.RestrictFilenames)
		assert.True(t, opts.IgnoreErrors)
		assert.Equal(t, "mp4", opts.MergeOutputFormat)
		assert.False(t, opts.Audio.Extract)
		assert.False(t, opts.Subtitles.Enabled)
	})

	t.Run("audio with one subtitle language", func(t *testing.T) {
		opts := BuildFetchOptions("/data", domain.SubmitRequest{URL: "https://e.com/v", Kind: domain.KindAudio, Subtitles: true, SubtitleLang: "es"})

		assert.True(t, opts.Audio.Extract)
		assert.Equal(t, "192K", opts.Audio.Quality)
		assert.Empty(t, opts.MergeOutputFormat)
		assert.True(t, opts.Subtitles.Enabled)
		assert.Equal(t, []string{"es"}, opts.Subtitles.Languages)
		assert.Equal(t, "srt", opts.Subtitles.ConvertTo)
	})

	t.Run("all subtitles in playlist mode", func(t *testing.T) {
		opts := BuildFetchOptions("/data", domain.SubmitRequest{URL: "https://e.com/l", Subtitles: true, SubtitleLang: "all", DownloadPlaylist: true})

		assert.Equal(t, []string{"all", "-live_chat"}, opts.Subtitles.Languages)
		assert.True(t, opts.Playlist)
		assert.Equal(t, filepath.Join("/data", "%(playlist_title)s/%(title)s.%(ext)s"), opts.OutputTemplate)
	})
}
