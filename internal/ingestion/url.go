package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page cannot be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text can be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// RenderFunc renders a page and returns its HTML
type RenderFunc func(ctx context.Context, url string) (string, error)

// URLOptions configures IngestFromURL
type URLOptions struct {
	// UseBrowser re-renders pages whose extracted text is shorter than fetch.MinContentLength
	UseBrowser bool
	Fetch      *fetch.Options
	Logger     *zap.Logger
	// Render overrides the headless browser; used in tests
	Render RenderFunc
}

// IngestFromURL fetches a job posting, extracts its main text with platform-specific
// selectors, and cleans it. Browser rendering failures fall back to the HTTP content.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("url", urlStr))
	start := time.Now()

	platform := fetch.DetectPlatform(urlStr)
	log.Debug("fetching job posting", zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	rendered := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		render := opts.Render
		if render == nil {
			render = func(ctx context.Context, url string) (string, error) {
				return fetch.Render(ctx, url, fetch.DefaultBrowserOptions(), log)
			}
		}
		log.Info("content too short, rendering in browser", zap.Int("chars", len(textContent)))

		if html, err := render(ctx, urlStr); err != nil {
			log.Warn("browser rendering failed, using HTTP content", zap.Error(err))
		} else if text, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...); err != nil {
			log.Warn("browser content extraction failed, using HTTP content", zap.Error(err))
		} else if len(text) > len(textContent) {
			textContent = text
			rendered = true
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: page has no text", ErrContentExtractionFailed)
	}

	metadata := NewMetadata(cleanedText, SourceURL)
	metadata.URL = urlStr
	metadata.Platform = string(platform)
	metadata.PageTitle = fetch.PageTitle(result.HTML)
	metadata.Rendered = rendered
	log.Debug("ingested job posting", zap.Int("chars", len(cleanedText)), zap.Duration("elapsed", time.Since(start)))

	return cleanedText, metadata, nil
}
