package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
	"slack-wa-relay/internal/biz/usecase"
	"slack-wa-relay/internal/conf"
	"slack-wa-relay/internal/data"
	"slack-wa-relay/internal/service"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := conf.LoadFromEnv()
	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	format, err := conf.LoadFormat(os.Getenv("TEMPLATES_CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid templates file")
	}

	source := data.NewSlackRepo(slack.New(cfg.Slack.UserToken), cfg.Slack.UserToken, cfg.Poll.PageSize)
	dest := data.NewWhatsAppClient(data.WhatsAppConfig{
		Token:         cfg.WhatsApp.Token,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		TemplateName:  cfg.WhatsApp.TemplateName,
		TemplateLang:  cfg.WhatsApp.TemplateLang,
	}, log)

	var store *data.WatermarkDB
	if cfg.Watermark.DBPath != "" {
		store, err = data.NewWatermarkDB(cfg.Watermark.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Watermark.DBPath).Msg("failed to open watermark db")
		}
		defer store.Close()
	}

	var rewriter *data.DigestRewriter
	if cfg.Digest.APIKey != "" {
		rewriter = data.NewDigestRewriter(cfg.Digest.APIKey, cfg.Digest.BaseURL, cfg.Digest.Model)
	}

	delivery := usecase.NewDelivery(dest, usecase.DeliveryConfig{
		Destinations: cfg.WhatsApp.DestNumbers,
	}, log)
	names := usecase.NewNameResolver(source, log)
	gate := domain.NewCooldownGate(cfg.Cooldown.Duration, cfg.Cooldown.SummaryEnabled)

	forwarder := usecase.NewForwarder(source, names, delivery, gate, watermarkRepo(store), digestRewriter(rewriter), usecase.ForwarderConfig{
		ForwardSelf:   cfg.Slack.ForwardSelf,
		SeenRetention: cfg.Poll.SeenRetention,
		Format:        format,
	}, log)

	ctx := context.Background()
	if err := forwarder.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	poller := service.NewPoller(forwarder, cfg.Poll.Interval, log)
	poller.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	poller.Stop()
}

// watermarkRepo converts the optional store without producing a typed-nil
// interface value.
func watermarkRepo(db *data.WatermarkDB) repo.WatermarkRepo {
	if db == nil {
		return nil
	}
	return db
}

func digestRewriter(r *data.DigestRewriter) repo.SummaryRewriter {
	if r == nil {
		return nil
	}
	return r
}
