package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LJTian/TrendingDigest/internal/browser"
)

// fakeBrowser 内存中的浏览器：url -> html，记录导航、点击与关闭
type fakeBrowser struct {
	mu          sync.Mutex
	pages       map[string]string
	fail        map[string]error
	navigations []string
	clicks      []string
	launches    int
	pagesOpened int
	pagesClosed int
	closed      bool
}

func newFakeBrowser(pages map[string]string) *fakeBrowser {
	return &fakeBrowser{pages: pages, fail: map[string]error{}}
}

func (b *fakeBrowser) launcher() browser.Launcher {
	return func(ctx context.Context) (browser.Browser, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.launches++
		b.closed = false
		return b, nil
	}
}

func (b *fakeBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pagesOpened++
	return &fakePage{b: b}, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBrowser) visited() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.navigations...)
}

type fakePage struct {
	b       *fakeBrowser
	current string
}

func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	p.b.navigations = append(p.b.navigations, url)
	if err := p.b.fail[url]; err != nil {
		return err
	}
	if _, ok := p.b.pages[url]; !ok {
		return fmt.Errorf("navigate %s: status 404", url)
	}
	p.current = url
	return nil
}

func (p *fakePage) ClickIfPresent(ctx context.Context, selector string) bool {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	p.b.clicks = append(p.b.clicks, selector)
	return strings.Contains(p.b.pages[p.current], strings.TrimPrefix(selector, "#"))
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	if p.current == "" {
		return "", errors.New("no page loaded")
	}
	return p.b.pages[p.current], nil
}

func (p *fakePage) Close() error {
	p.b.mu.Lock()
	defer p.b.mu.Unlock()
	p.b.pagesClosed++
	return nil
}

func failingLauncher(err error) browser.Launcher {
	return func(ctx context.Context) (browser.Browser, error) {
		return nil, err
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
