package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/TrendingDigest/internal/collector"
	"github.com/LJTian/TrendingDigest/internal/digest"
	"github.com/LJTian/TrendingDigest/internal/render"
)

// Runner 生成一次摘要，由 digest.Assembler 实现
type Runner interface {
	Run(ctx context.Context, opts digest.Options) (*digest.Bundle, error)
}

// Server 按需生成摘要并以 HTML 或 JSON 返回。浏览器资源较重，同一时刻只允许一次运行
type Server struct {
	runner   Runner
	renderer *render.Renderer
	defaults digest.Options
	running  sync.Mutex
}

func NewServer(runner Runner, renderer *render.Renderer, defaults digest.Options) *Server {
	return &Server{runner: runner, renderer: renderer, defaults: defaults}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/preview", s.preview)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/digest", s.getDigest)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) preview(c *gin.Context) {
	bundle, ok := s.run(c)
	if !ok {
		return
	}
	html, err := s.renderer.HTML(bundle)
	if err != nil {
		internalError(c, err)
		return
	}
	c.Header("X-Digest-Subject", render.Subject(bundle))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) getDigest(c *gin.Context) {
	bundle, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    bundle,
	})
}

// run 解析查询参数并执行一次摘要；失败时已写好响应
func (s *Server) run(c *gin.Context) (*digest.Bundle, bool) {
	opts, err := s.parseOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": err.Error(),
		})
		return nil, false
	}

	if !s.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "busy",
			"message": "a digest run is already in progress",
		})
		return nil, false
	}
	defer s.running.Unlock()

	bundle, err := s.runner.Run(c.Request.Context(), opts)
	if err != nil {
		internalError(c, err)
		return nil, false
	}
	return bundle, true
}

var (
	errBadDays   = errors.New("days must be an integer between 1 and 30")
	errBadPeriod = errors.New("period must be daily or weekly")
)

// parseOptions sources=hltv,vlr&days=7&period=weekly，缺省值取启动配置
func (s *Server) parseOptions(c *gin.Context) (digest.Options, error) {
	opts := s.defaults

	if raw := c.Query("sources"); raw != "" {
		opts.Sources = nil
		for _, name := range strings.Split(raw, ",") {
			src, err := collector.ParseSource(strings.TrimSpace(name))
			if err != nil {
				return opts, err
			}
			opts.Sources = append(opts.Sources, src)
		}
	}

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > 30 {
			return opts, errBadDays
		}
		opts.LookbackDays = days
	}

	switch p := c.DefaultQuery("period", opts.Period); p {
	case digest.PeriodDaily, digest.PeriodWeekly:
		opts.Period = p
	default:
		return opts, errBadPeriod
	}
	return opts, nil
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
