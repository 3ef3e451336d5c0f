package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LJTian/TrendingDigest/internal/browser"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const defaultNavTimeout = 30 * time.Second

// ScrapeOptions 两个页面抓取源共用的配置
type ScrapeOptions struct {
	Launcher   browser.Launcher
	NavTimeout time.Duration
	Now        func() time.Time
}

func (o ScrapeOptions) withDefaults() ScrapeOptions {
	if o.Launcher == nil {
		o.Launcher = browser.ChromeLauncher(browser.Options{})
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = defaultNavTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// session 每个 Fetcher 独占一个浏览器会话，首次使用时才启动
type session struct {
	mu      sync.Mutex
	launch  browser.Launcher
	browser browser.Browser
}

func (s *session) get(ctx context.Context) (browser.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}
	b, err := s.launch(ctx)
	if err != nil {
		return nil, err
	}
	s.browser = b
	return b, nil
}

func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}

// link 列表页上抽取出的一条 (标题, 链接)，标题可能为空
type link struct {
	title string
	href  string
}

// uniqueLinks 同一链接在列表中出现多次时只保留第一次
func uniqueLinks(in []link) []link {
	seen := make(map[string]struct{}, len(in))
	out := make([]link, 0, len(in))
	for _, l := range in {
		href := strings.TrimSpace(l.href)
		if href == "" {
			continue
		}
		if _, ok := seen[href]; ok {
			continue
		}
		seen[href] = struct{}{}
		out = append(out, link{title: l.title, href: href})
	}
	return out
}

// openLanding 打开入口页，并尽力关闭 cookie 弹窗
func openLanding(ctx context.Context, page browser.Page, url, consentSelector string, timeout time.Duration) error {
	if err := page.Navigate(ctx, url, timeout); err != nil {
		return err
	}
	if consentSelector != "" && !page.ClickIfPresent(ctx, consentSelector) {
		zerolog.Ctx(ctx).Debug().Str("selector", consentSelector).Msg("cookie consent button not found or already accepted")
	}
	return nil
}

func snapshot(ctx context.Context, page browser.Page) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// closePage 页面关闭失败只记日志
func closePage(ctx context.Context, page browser.Page) {
	if err := page.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("close page failed")
	}
}
