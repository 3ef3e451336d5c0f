package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LJTian/TrendingDigest/internal/config"
	"github.com/LJTian/TrendingDigest/internal/digest"
	"github.com/LJTian/TrendingDigest/internal/logger"
	"github.com/LJTian/TrendingDigest/internal/mailer"
	"github.com/LJTian/TrendingDigest/internal/render"
)

// 执行一次摘要：抓取、渲染，然后发送邮件（--dry-run 时写入本地文件）
func main() {
	if err := run(); err != nil {
		logger.Get().Error().Err(err).Msg("digest failed")
		os.Exit(1)
	}
}

func run() error {
	// .env 可选
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.Get()

	if !cfg.DryRun {
		if err := cfg.ValidateSMTP(); err != nil {
			return err
		}
	}
	sources, err := cfg.SourceList()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}
	ctx = log.WithContext(ctx)

	bundle, err := digest.New(digest.DefaultRegistry(cfg)).Run(ctx, digest.Options{
		Sources:      sources,
		Period:       cfg.Period,
		LookbackDays: cfg.Days,
	})
	if err != nil {
		return fmt.Errorf("assemble digest: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	html, err := renderer.HTML(bundle)
	if err != nil {
		return err
	}
	subject := render.Subject(bundle)

	if cfg.DryRun {
		if err := os.WriteFile(cfg.PreviewOut, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		log.Info().
			Str("file", cfg.PreviewOut).
			Str("subject", subject).
			Int("items", bundle.Total()).
			Msg("dry run, digest written")
		return nil
	}

	m := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	})
	// 抓取可能已经耗尽运行期限，发信不受其影响
	if err := m.Send(context.WithoutCancel(ctx), subject, html); err != nil {
		return err
	}

	log.Info().
		Str("subject", subject).
		Strs("to", cfg.SMTP.To).
		Int("items", bundle.Total()).
		Int("failed_sources", len(bundle.Failed())).
		Msg("digest sent")
	return nil
}
