package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

var errNoDocument = errors.New("browser: no page loaded")

// Static 用 colly 直接拉取 HTML，不执行 JS，也没有可点击的 DOM
type Static struct {
	opts Options
}

func NewStatic(opts Options) *Static {
	return &Static{opts: opts.withDefaults()}
}

func (s *Static) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticPage{opts: s.opts}, nil
}

func (s *Static) Close() error {
	return nil
}

type staticPage struct {
	opts Options
	html string
}

func (p *staticPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c := colly.NewCollector(
		colly.UserAgent(p.opts.UserAgent),
	)
	c.SetRequestTimeout(timeout)

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("browser: navigate %s: empty response", url)
	}
	p.html = string(body)
	return nil
}

// ClickIfPresent 静态页面没有交互能力
func (p *staticPage) ClickIfPresent(ctx context.Context, selector string) bool {
	return false
}

func (p *staticPage) HTML(ctx context.Context) (string, error) {
	if p.html == "" {
		return "", errNoDocument
	}
	return p.html, nil
}

func (p *staticPage) Close() error {
	p.html = ""
	return nil
}
