package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/LJTian/TrendingDigest/internal/api"
	"github.com/LJTian/TrendingDigest/internal/config"
	"github.com/LJTian/TrendingDigest/internal/digest"
	"github.com/LJTian/TrendingDigest/internal/logger"
	"github.com/LJTian/TrendingDigest/internal/render"
)

// 本地预览服务：按需抓取并返回渲染后的邮件 HTML 与 JSON，不发信
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("load config failed")
	}
	if cfg == nil {
		return
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.Get()

	sources, err := cfg.SourceList()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sources")
	}
	renderer, err := render.New()
	if err != nil {
		log.Fatal().Err(err).Msg("init renderer failed")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))
	// 若配置了访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	server := api.NewServer(digest.New(digest.DefaultRegistry(cfg)), renderer, digest.Options{
		Sources:      sources,
		Period:       cfg.Period,
		LookbackDays: cfg.Days,
	})
	server.RegisterRoutes(r)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting preview server")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
