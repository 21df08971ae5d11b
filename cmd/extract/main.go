// Command extract runs the image extraction pipeline for the given URLs and
// prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/user/image-extractor-service/internal/adapter/httpfetcher"
	"github.com/user/image-extractor-service/internal/adapter/memory"
	"github.com/user/image-extractor-service/internal/extractor"
	"github.com/user/image-extractor-service/internal/usecase"
	"github.com/user/image-extractor-service/pkg/config"
	"github.com/user/image-extractor-service/pkg/logger"
)

var cli struct {
	URLs       []string      `arg:"" name:"url" help:"Page URLs to extract images from."`
	Attempts   int           `default:"3" help:"Attempts per URL."`
	Timeout    time.Duration `default:"30s" help:"Timeout for one page fetch."`
	RetryDelay time.Duration `default:"1s" help:"First backoff delay; later delays double it."`
	BatchDelay time.Duration `default:"500ms" help:"Pause between URLs."`
	UserAgent  string        `default:"${user_agent}" help:"User-Agent header sent with each fetch."`
	LogLevel   string        `default:"warn" enum:"debug,info,warn,error" help:"Log level."`
	Indent     bool          `short:"i" help:"Indent JSON output."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("extract"),
		kong.Description("Extract the representative image of news article pages."),
		kong.Vars{"user_agent": config.DefaultUserAgent},
	)

	log, err := logger.New(cli.LogLevel)
	kctx.FatalIfErrorf(err)
	defer func() { _ = log.Sync() }()

	fetchOpts := httpfetcher.DefaultOptions()
	fetchOpts.Timeout = cli.Timeout
	fetchOpts.UserAgent = cli.UserAgent

	opts := usecase.DefaultOptions()
	opts.MaxAttempts = cli.Attempts
	opts.RetryBaseDelay = cli.RetryDelay
	opts.BatchDelay = cli.BatchDelay
	if len(cli.URLs) > opts.MaxBatchSize {
		opts.MaxBatchSize = len(cli.URLs)
	}

	uc := usecase.NewImageExtractor(
		httpfetcher.NewFetcher(fetchOpts, log),
		memory.NewCacheRepo(),
		extractor.New(nil, log),
		opts,
		log,
	)

	batch, err := uc.ExtractBatch(context.Background(), cli.URLs, false)
	kctx.FatalIfErrorf(err)

	enc := json.NewEncoder(os.Stdout)
	if cli.Indent {
		enc.SetIndent("", "  ")
	}
	kctx.FatalIfErrorf(enc.Encode(batch.Results))

	if batch.Failed > 0 {
		kctx.Exit(1)
	}
}
