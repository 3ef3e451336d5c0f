// Package browser 封装抓取页面所需的最小浏览器能力：启动/关闭、开/关页面、带超时的导航、
// 尽力点击，以及获取渲染后的 DOM 供 goquery 解析。
package browser

import (
	"context"
	"time"
)

const (
	// DefaultUserAgent 模拟桌面 Chrome，避免被简单的 UA 规则拦截
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultWindowWidth  = 1920
	defaultWindowHeight = 1080
	defaultSettleDelay  = 500 * time.Millisecond
	defaultClickTimeout = 3 * time.Second
	defaultReadTimeout  = 10 * time.Second
)

// Browser 一个浏览器会话，由持有它的 Fetcher 负责 Close
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page 单个标签页
type Page interface {
	// Navigate 打开 url 并等待 DOM 就绪，超过 timeout 视为失败
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// ClickIfPresent 元素存在且可见时点击；找不到或点击失败都只返回 false
	ClickIfPresent(ctx context.Context, selector string) bool
	// HTML 返回当前渲染后的完整 HTML
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Launcher 惰性启动浏览器的工厂
type Launcher func(ctx context.Context) (Browser, error)

type Options struct {
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	// SettleDelay 导航完成后额外等待，给前端脚本渲染留时间
	SettleDelay  time.Duration
	ClickTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.WindowWidth <= 0 {
		o.WindowWidth = defaultWindowWidth
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = defaultWindowHeight
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	} else if o.SettleDelay == 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = defaultClickTimeout
	}
	return o
}

// ChromeLauncher 返回启动 headless Chrome 的 Launcher
func ChromeLauncher(opts Options) Launcher {
	return func(ctx context.Context) (Browser, error) {
		b, err := LaunchChrome(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// StaticLauncher 返回不执行 JS 的静态抓取实现，适合没有 Chrome 的环境
func StaticLauncher(opts Options) Launcher {
	return func(ctx context.Context) (Browser, error) {
		return NewStatic(opts), nil
	}
}
