package collector

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/TrendingDigest/internal/browser"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	vlrBaseURL         = "https://www.vlr.gg"
	vlrNewsLinkSel     = "a.news-item"
	vlrTitleSel        = ".news-item-title"
	vlrDateSel         = ".article-meta .js-date-toggle"
	vlrDateAttr        = "data-utc-ts"
	vlrSummary         = "Valorant News"
	vlrMaxCandidates   = 30
	vlrArticleDelay    = time.Second
	vlrStaleLimit      = 2
	vlrTimestampLayout = "2006-01-02 15:04:05"
)

var errNoTimestamp = errors.New("article has no publish timestamp")

// VLROptions 在 ScrapeOptions 基础上增加逐篇访问相关的参数
type VLROptions struct {
	ScrapeOptions
	// ArticleDelay 相邻两次文章页访问之间的间隔，减轻对站点的压力
	ArticleDelay time.Duration
	// StaleLimit 连续多少篇早于 cutoff 后停止；列表按时间倒序，允许少量置顶的旧文章
	StaleLimit    int
	MaxCandidates int
	Sleep         func(ctx context.Context, d time.Duration) error
}

// VLRFetcher 抓取 VLR 新闻列表，并逐篇打开文章页读取发布时间
type VLRFetcher struct {
	opts    VLROptions
	session session
}

func NewVLRFetcher(opts VLROptions) *VLRFetcher {
	opts.ScrapeOptions = opts.ScrapeOptions.withDefaults()
	if opts.ArticleDelay < 0 {
		opts.ArticleDelay = 0
	} else if opts.ArticleDelay == 0 {
		opts.ArticleDelay = vlrArticleDelay
	}
	if opts.StaleLimit <= 0 {
		opts.StaleLimit = vlrStaleLimit
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = vlrMaxCandidates
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &VLRFetcher{opts: opts, session: session{launch: opts.Launcher}}
}

func (v *VLRFetcher) Source() Source {
	return SourceVLR
}

func (v *VLRFetcher) Init(ctx context.Context) error {
	_, err := v.session.get(ctx)
	return err
}

func (v *VLRFetcher) Close() error {
	return v.session.close()
}

func (v *VLRFetcher) Fetch(ctx context.Context, lookbackDays int) Result {
	log := zerolog.Ctx(ctx).With().Str("source", SourceVLR.String()).Logger()
	ctx = log.WithContext(ctx)

	res := Result{Source: SourceVLR, Items: []NewsItem{}, FetchedAt: v.opts.Now()}
	log.Info().Msg("fetch VLR news...")

	b, err := v.session.get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("start browser failed")
		res.Err = failure(SourceVLR, ReasonNavigate, err)
		return res
	}
	page, err := b.NewPage(ctx)
	if err != nil {
		log.Error().Err(err).Msg("open page failed")
		res.Err = failure(SourceVLR, ReasonNavigate, err)
		return res
	}
	defer closePage(ctx, page)

	if err := openLanding(ctx, page, vlrBaseURL, "", v.opts.NavTimeout); err != nil {
		log.Error().Err(err).Msg("scraping VLR failed")
		res.Err = failure(SourceVLR, ReasonNavigate, err)
		return res
	}

	doc, err := snapshot(ctx, page)
	if err != nil {
		log.Error().Err(err).Msg("read VLR page failed")
		res.Err = failure(SourceVLR, ReasonExtract, err)
		return res
	}

	links := uniqueLinks(extractVLRLinks(doc))
	if len(links) > v.opts.MaxCandidates {
		links = links[:v.opts.MaxCandidates]
	}

	window := NewWindow(v.opts.Now(), lookbackDays)
	stale, visited := 0, 0
	for a := range v.articles(ctx, page, links) {
		visited++
		if a.err != nil {
			log.Warn().Err(a.err).Str("url", a.url).Msg("skip article")
			continue
		}
		if !window.Contains(a.publishedAt) {
			stale++
			if stale >= v.opts.StaleLimit {
				break
			}
			continue
		}
		stale = 0

		item, err := NewItem(SourceVLR, ItemInput{
			Title:       a.title,
			Href:        a.url,
			BaseURL:     vlrBaseURL,
			PublishedAt: a.publishedAt,
			Summary:     vlrSummary,
		})
		if err != nil {
			log.Debug().Err(err).Str("url", a.url).Msg("skip item")
			continue
		}
		res.Items = append(res.Items, item)
	}

	slices.SortStableFunc(res.Items, func(a, b NewsItem) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})

	if err := ctx.Err(); err != nil {
		res.Err = failure(SourceVLR, ReasonCanceled, err)
	}

	log.Info().
		Int("candidates", len(links)).
		Int("visited", visited).
		Int("items", len(res.Items)).
		Msg("vlr done")
	return res
}

type article struct {
	title       string
	url         string
	publishedAt time.Time
	err         error
}

// articles 按列表顺序惰性地逐篇访问文章页；调用方 break 后不再访问后续文章
func (v *VLRFetcher) articles(ctx context.Context, page browser.Page, links []link) iter.Seq[article] {
	return func(yield func(article) bool) {
		for i, l := range links {
			if i > 0 {
				if err := v.opts.Sleep(ctx, v.opts.ArticleDelay); err != nil {
					return
				}
			}
			a := article{title: l.title, url: AbsoluteURL(vlrBaseURL, l.href)}
			a.publishedAt, a.err = v.publishedAt(ctx, page, a.url)
			if !yield(a) {
				return
			}
		}
	}
}

func (v *VLRFetcher) publishedAt(ctx context.Context, page browser.Page, url string) (time.Time, error) {
	if url == "" {
		return time.Time{}, errMissingURL
	}
	if err := page.Navigate(ctx, url, v.opts.NavTimeout); err != nil {
		return time.Time{}, err
	}
	doc, err := snapshot(ctx, page)
	if err != nil {
		return time.Time{}, err
	}
	raw, ok := doc.Find(vlrDateSel).First().Attr(vlrDateAttr)
	if !ok {
		return time.Time{}, errNoTimestamp
	}
	return parseTimestamp(raw)
}

func extractVLRLinks(doc *goquery.Document) []link {
	var links []link
	doc.Find(vlrNewsLinkSel).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, link{
			title: strings.TrimSpace(a.Find(vlrTitleSel).First().Text()),
			href:  href,
		})
	})
	return links
}

// parseTimestamp 支持 "2006-01-02 15:04:05"（UTC）、RFC3339 与 Unix 秒
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errNoTimestamp
	}
	if t, err := time.ParseInLocation(vlrTimestampLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
