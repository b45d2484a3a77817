package ecb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/SscSPs/ecb_rates_pipeline/internal/core/domain"
	"github.com/SscSPs/ecb_rates_pipeline/pkg/config"
	"github.com/sethvargo/go-retry"
)

// maxBodyBytes caps the feed download; the daily documents are a few KiB.
const maxBodyBytes = 8 << 20

// retryDelay is the pause between fetch attempts when more than one is configured.
const retryDelay = 2 * time.Second

// Fetcher retrieves the ECB reference rates.
type Fetcher struct {
	cfg        config.FeedConfig
	client     *http.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewFetcher creates a Fetcher. A nil client gets a default one bounded by cfg.Timeout.
func NewFetcher(cfg config.FeedConfig, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Fetcher{
		cfg:        cfg,
		client:     client,
		logger:     logger,
		retryDelay: retryDelay,
	}
}

// FetchLatest downloads and parses the configured feed. The returned set always
// contains EUR with rate 1.
func (f *Fetcher) FetchLatest(ctx context.Context) (*domain.RateSet, error) {
	body, err := f.download(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := f.decode(body)
	if err != nil {
		return nil, err
	}

	set, err := f.normalize(raw)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Fetched reference rates",
		slog.String("reference_date", set.ReferenceDate.Format(time.DateOnly)),
		slog.Int("currencies", len(set.Rates)),
	)

	if f.cfg.ArchiveDir != "" {
		if path, err := f.archive(body, set.ReferenceDate); err != nil {
			f.logger.Warn("Failed to archive feed", slog.String("error", err.Error()))
		} else {
			f.logger.Debug("Archived feed", slog.String("path", path))
		}
	}

	return set, nil
}

// download performs the GET, retrying only fetch failures.
func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	backoff := retry.WithMaxRetries(uint64(f.cfg.Attempts-1), retry.NewConstant(f.retryDelay))

	var body []byte
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		b, err := f.get(ctx)
		if err != nil {
			var fetchErr *apperrors.FetchError
			if errors.As(err, &fetchErr) && attempt < f.cfg.Attempts {
				f.logger.Warn("Feed request failed, retrying",
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()),
				)
				return retry.RetryableError(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, apperrors.ErrFetch) {
			return nil, apperrors.NewFetchError(f.cfg.URL, ctxErr)
		}
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.URL, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(f.cfg.URL, err)
	}
	req.Header.Set("User-Agent", "ecb-rates-pipeline/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(f.cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, apperrors.NewStatusError(f.cfg.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewFetchError(f.cfg.URL, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

func (f *Fetcher) decode(body []byte) (*rawFeed, error) {
	switch f.cfg.Format {
	case config.FeedFormatZip:
		return decodeZippedCSV(body)
	case config.FeedFormatXML, "":
		return decodeXML(body)
	default:
		return nil, apperrors.NewParseError("unsupported feed format "+f.cfg.Format, nil)
	}
}

func (f *Fetcher) archive(body []byte, referenceDate time.Time) (string, error) {
	ext := f.cfg.Format
	if ext == "" {
		ext = config.FeedFormatXML
	}
	if err := os.MkdirAll(f.cfg.ArchiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}
	name := fmt.Sprintf("eurofxref-%s.%s", referenceDate.Format(time.DateOnly), ext)
	path := filepath.Join(f.cfg.ArchiveDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}
