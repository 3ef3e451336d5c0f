package digest

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/LJTian/TrendingDigest/internal/browser"
	"github.com/LJTian/TrendingDigest/internal/collector"
	"github.com/LJTian/TrendingDigest/internal/config"
)

// Factory 每次运行都构造新的 Fetcher，会话不跨运行复用
type Factory func() collector.Fetcher

// Registry 按 Source 选择 Fetcher 实现
type Registry struct {
	factories map[collector.Source]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[collector.Source]Factory)}
}

func (r *Registry) Register(src collector.Source, f Factory) {
	r.factories[src] = f
}

func (r *Registry) New(src collector.Source) (collector.Fetcher, error) {
	f, ok := r.factories[src]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for source %q", src)
	}
	return f(), nil
}

// DefaultRegistry 按配置注册三个内置数据源
func DefaultRegistry(cfg *config.Config) *Registry {
	bopts := browser.Options{UserAgent: cfg.UserAgent}
	launcher := browser.ChromeLauncher(bopts)
	if cfg.Browser == "static" {
		launcher = browser.StaticLauncher(bopts)
	}
	scrape := collector.ScrapeOptions{Launcher: launcher, NavTimeout: cfg.NavTimeout}

	// ArticleDelay 为 0 表示不等待，传给 VLROptions 时用负数表达
	delay := cfg.ArticleDelay
	if delay == 0 {
		delay = -1
	}

	r := NewRegistry()
	r.Register(collector.SourceHackerNews, func() collector.Fetcher {
		return collector.NewHackerNewsFetcher(collector.HackerNewsOptions{
			BaseURL: cfg.HNBaseURL,
			Client:  resty.New().SetTimeout(cfg.NavTimeout),
		})
	})
	r.Register(collector.SourceHLTV, func() collector.Fetcher {
		return collector.NewHLTVFetcher(scrape)
	})
	r.Register(collector.SourceVLR, func() collector.Fetcher {
		return collector.NewVLRFetcher(collector.VLROptions{ScrapeOptions: scrape, ArticleDelay: delay})
	})
	return r
}
