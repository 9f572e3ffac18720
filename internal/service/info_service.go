package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/veranemoloko/media-downloader/internal/domain"
	"github.com/veranemoloko/media-downloader/internal/engine"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// InfoService resolves media metadata without creating a task.
type InfoService struct {
	engine engine.Engine
	logger *slog.Logger
}

func NewInfoService(eng engine.Engine, logger *slog.Logger) *InfoService {
	return &InfoService{engine: eng, logger: logger}
}

// Info probes url and returns its preview. Engine failures are returned
// with the engine's message.
func (s *InfoService) Info(ctx context.Context, url string) (*domain.MediaInfo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", errpkg.ErrValidation)
	}

	meta, err := s.engine.Probe(ctx, url)
	if err != nil {
		s.logger.Warn("metadata lookup failed", "url", url, "error", err)
		return nil, err
	}

	return &domain.MediaInfo{
		Title:     meta.Title,
		Thumbnail: meta.Thumbnail,
		Duration:  engine.FormatClock(meta.DurationSeconds),
		Uploader:  meta.Uploader,
		ViewCount: meta.ViewCount,
		Subtitles: mergeLanguages(meta.SubtitleLanguages, meta.CaptionLanguages),
	}, nil
}

func mergeLanguages(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, lang := range list {
			if _, ok := seen[lang]; ok {
				continue
			}
			seen[lang] = struct{}{}
			out = append(out, lang)
		}
	}
	sort.Strings(out)
	return out
}
