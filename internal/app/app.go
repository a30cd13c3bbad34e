// Package app wires configuration, the Telegram bot, the media pipeline and
// the status API into one process.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ytget/yt-downloader-bot/internal/api"
	"github.com/ytget/yt-downloader-bot/internal/bot"
	"github.com/ytget/yt-downloader-bot/internal/compress"
	"github.com/ytget/yt-downloader-bot/internal/config"
	"github.com/ytget/yt-downloader-bot/internal/delivery"
	"github.com/ytget/yt-downloader-bot/internal/download"
	"github.com/ytget/yt-downloader-bot/internal/model"
	"github.com/ytget/yt-downloader-bot/internal/pipeline"
	"github.com/ytget/yt-downloader-bot/internal/platform"
	"github.com/ytget/yt-downloader-bot/internal/progress"
	"github.com/ytget/yt-downloader-bot/internal/selector"
)

const (
	DefaultConfigPath = "config.yml"
	DefaultEnvFile    = ".env"

	readHeaderTimeout = 5 * time.Second

	// cleanupGrace bounds the wait for cancelled requests to sweep their artifacts
	cleanupGrace = 5 * time.Second
)

// Execute parses args, loads the configuration and runs the bot until
// SIGINT or SIGTERM.
func Execute(args []string, version string) error {
	fs := flag.NewFlagSet("yt-downloader-bot", flag.ContinueOnError)
	configPath := fs.String("config", DefaultConfigPath, "path to the YAML config file")
	envFile := fs.String("env", DefaultEnvFile, "path to a .env file")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version)
		return nil
	}

	SetupLogging(config.DefaultLogLevel)

	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	SetupLogging(cfg.LogLevel)

	log.Info().Str("version", version).Str("work_dir", cfg.WorkDir).Int64("max_filesize", cfg.MaxFileSize).
		Int("max_concurrent", cfg.MaxConcurrent).Msg("yt-downloader-bot starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, cfg)
}

// SetupLogging points the global logger at a console writer on stderr
func SetupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Run serves until ctx is done, then stops polling, stops the status
// server and waits for in-flight requests up to the shutdown timeout.
func Run(ctx context.Context, cfg config.Settings) error {
	if err := platform.CreateDirectoryIfNotExists(cfg.WorkDir); err != nil {
		return fmt.Errorf("ensure work dir: %w", err)
	}

	b, err := bot.New(cfg.BotToken, cfg.PollTimeout)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	out := delivery.NewAdapter(bot.NewTelegram(b))

	executor := download.NewExecutor(download.NewYTDLP(cfg.YtdlpPath), cfg.WorkDir, cfg.MaxFileSize)
	post := compress.NewPipeline(compress.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath), cfg.MaxFileSize)
	throttle := progress.NewThrottle(progress.NewMemoryStore(), cfg.ProgressInterval)

	manager := pipeline.NewManager(executor, post, out, throttle, pipeline.Options{
		WorkDir:       cfg.WorkDir,
		MaxFileSize:   cfg.MaxFileSize,
		MaxConcurrent: cfg.MaxConcurrent,
	})
	manager.SetUpdateCallback(func(r model.Request) {
		log.Debug().Str("request_key", r.Key.String()).Str("status", r.Status.String()).Msg("request status changed")
	})

	if cfg.SweepOnStart {
		removed, err := manager.Sweep()
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.WorkDir).Msg("startup sweep failed")
		} else if removed > 0 {
			log.Info().Int("removed", removed).Msg("startup sweep removed leftover artifacts")
		}
	}

	chooser := selector.New(executor, out, manager, cfg.SelectionTTL, cfg.MaxFileSize)

	// requests outlive ctx so they can finish during the shutdown grace period
	reqCtx, cancelRequests := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRequests()

	bot.NewRouter(reqCtx, manager, chooser, out, cfg.AuditChat).Register(b)

	var srv *http.Server
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           api.NewRouter(api.NewAPI(manager)),
			ReadHeaderTimeout: readHeaderTimeout,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("bot", b.Me.Username).Msg("polling telegram")
		b.Start()
		return nil
	})

	if srv != nil {
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("status api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status api: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received")

		b.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if srv != nil {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("status api shutdown warning")
			}
		}

		manager.Close()
		if err := drainRequests(manager, cfg.ShutdownTimeout, cleanupGrace, cancelRequests); err != nil {
			log.Warn().Err(err).Int("in_flight", len(manager.GetAllRequests())).Msg("requests still running at exit")
			return nil
		}

		log.Info().Msg("bot exited cleanly")
		return nil
	})

	return g.Wait()
}

type requestWaiter interface {
	Wait(ctx context.Context) error
}

// drainRequests waits up to timeout for in-flight requests, then cancels
// them and waits up to grace more so their artifact cleanup can run.
func drainRequests(w requestWaiter, timeout, grace time.Duration, cancel context.CancelFunc) error {
	ctx, stop := context.WithTimeout(context.Background(), timeout)
	err := w.Wait(ctx)
	stop()
	if err == nil {
		return nil
	}

	log.Warn().Err(err).Msg("cancelling unfinished requests")
	cancel()

	ctx, stop = context.WithTimeout(context.Background(), grace)
	defer stop()
	return w.Wait(ctx)
}
