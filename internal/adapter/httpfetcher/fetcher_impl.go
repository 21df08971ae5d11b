package httpfetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/user/image-extractor-service/internal/entity"
	"github.com/user/image-extractor-service/internal/repository"
	"github.com/user/image-extractor-service/pkg/config"
	"github.com/user/image-extractor-service/pkg/metrics"
)

// Options is the immutable client configuration of a Fetcher.
type Options struct {
	UserAgent      string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	MaxRedirects   int
	MaxBodyBytes   int64
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{
		UserAgent:      config.DefaultUserAgent,
		Timeout:        30 * time.Second,
		ConnectTimeout: 15 * time.Second,
		MaxRedirects:   10,
		MaxBodyBytes:   5 * 1024 * 1024,
	}
}

// Fetcher implements repository.PageFetcher over net/http.
type Fetcher struct {
	client *http.Client
	opts   Options
	logger *zap.Logger
}

var _ repository.PageFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher with a browser-like identity. Certificate
// verification is disabled so that pages behind self-signed certificates can
// still be previewed.
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.MaxRedirects < 0 {
		opts.MaxRedirects = def.MaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout:   opts.ConnectTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	maxRedirects := opts.MaxRedirects
	client := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
			}
			return nil
		},
	}

	return &Fetcher{client: client, opts: opts, logger: logger}
}

// Fetch performs a single GET for rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*entity.RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrRequestFailure, err)
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	start := time.Now()
	resp, err := f.client.Do(req)
	latency := time.Since(start)
	metrics.FetchDuration.WithLabelValues(req.URL.Hostname()).Observe(latency.Seconds())
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &repository.HTTPStatusError{StatusCode: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrRequestFailure, err)
	}
	if len(body) == 0 {
		return nil, repository.ErrEmptyBody
	}

	contentType := resp.Header.Get("Content-Type")
	html, err := toUTF8(body, contentType)
	if err != nil {
		f.logger.Debug("charset conversion failed, using raw body", zap.String("url", rawURL), zap.Error(err))
		html = string(body)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.String("final_url", finalURL),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", latency),
	)

	return &entity.RawPage{
		URL:             rawURL,
		FinalURL:        finalURL,
		StatusCode:      resp.StatusCode,
		ContentType:     contentType,
		Body:            html,
		FetchedAt:       time.Now(),
		ResponseLatency: latency,
	}, nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > f.opts.MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.opts.MaxBodyBytes)
	}
	if len(raw) == 0 {
		return raw, nil
	}

	var reader io.ReadCloser
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		reader, err = gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		reader, err = zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			reader = flate.NewReader(bytes.NewReader(raw))
		}
	case "br":
		reader = io.NopCloser(brotli.NewReader(bytes.NewReader(raw)))
	default:
		return raw, nil
	}
	defer reader.Close()

	decoded, err := io.ReadAll(io.LimitReader(reader, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if int64(len(decoded)) > f.opts.MaxBodyBytes {
		return nil, fmt.Errorf("decoded body exceeds limit of %d bytes", f.opts.MaxBodyBytes)
	}
	return decoded, nil
}

func toUTF8(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// classify maps a transport error onto the repository error taxonomy.
func classify(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailure, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Errorf("%w: %v", repository.ErrConnectionFailure, err)
	}
	return fmt.Errorf("%w: %v", repository.ErrRequestFailure, err)
}
