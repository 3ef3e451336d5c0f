package collector

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	hltvBaseURL         = "https://www.hltv.org"
	hltvConsentSelector = "#CybotCookiebotDialogBodyButtonDecline"
	hltvHeadlineSel     = ".standard-headline"
	hltvListSel         = ".standard-list"
	hltvNewsLinkSel     = "a[href^='/news/']"
	hltvTitleSel        = ".newstext"
	hltvSummary         = "News Article"
)

// HLTVFetcher 抓取 HLTV 首页 “Today's news” 列表。
// 列表本身只包含当天新闻，所以不逐篇访问文章页，统一使用抓取时间作为发布时间，也不做时间窗口过滤。
type HLTVFetcher struct {
	opts    ScrapeOptions
	session session
}

func NewHLTVFetcher(opts ScrapeOptions) *HLTVFetcher {
	opts = opts.withDefaults()
	return &HLTVFetcher{opts: opts, session: session{launch: opts.Launcher}}
}

func (h *HLTVFetcher) Source() Source {
	return SourceHLTV
}

func (h *HLTVFetcher) Init(ctx context.Context) error {
	_, err := h.session.get(ctx)
	return err
}

func (h *HLTVFetcher) Close() error {
	return h.session.close()
}

// Fetch lookbackDays 对该源无效
func (h *HLTVFetcher) Fetch(ctx context.Context, lookbackDays int) Result {
	log := zerolog.Ctx(ctx).With().Str("source", SourceHLTV.String()).Logger()
	ctx = log.WithContext(ctx)

	res := Result{Source: SourceHLTV, Items: []NewsItem{}, FetchedAt: h.opts.Now()}
	log.Info().Msg("fetch HLTV news...")

	b, err := h.session.get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("start browser failed")
		res.Err = failure(SourceHLTV, ReasonNavigate, err)
		return res
	}
	page, err := b.NewPage(ctx)
	if err != nil {
		log.Error().Err(err).Msg("open page failed")
		res.Err = failure(SourceHLTV, ReasonNavigate, err)
		return res
	}
	defer closePage(ctx, page)

	if err := openLanding(ctx, page, hltvBaseURL, hltvConsentSelector, h.opts.NavTimeout); err != nil {
		log.Error().Err(err).Msg("scraping HLTV failed")
		res.Err = failure(SourceHLTV, ReasonNavigate, err)
		return res
	}

	doc, err := snapshot(ctx, page)
	if err != nil {
		log.Error().Err(err).Msg("read HLTV page failed")
		res.Err = failure(SourceHLTV, ReasonExtract, err)
		return res
	}

	now := h.opts.Now()
	for _, l := range uniqueLinks(extractHLTVLinks(doc)) {
		item, err := NewItem(SourceHLTV, ItemInput{
			Title:       l.title,
			Href:        l.href,
			BaseURL:     hltvBaseURL,
			PublishedAt: now,
			Summary:     hltvSummary,
		})
		if err != nil {
			log.Debug().Err(err).Str("href", l.href).Msg("skip item")
			continue
		}
		res.Items = append(res.Items, item)
	}

	if len(res.Items) == 0 {
		log.Warn().Msg("fetch HLTV got 0 items")
	}
	return res
}

// extractHLTVLinks 优先取 “Today's news” 标题之后的列表，找不到时退回整页的新闻链接
func extractHLTVLinks(doc *goquery.Document) []link {
	var links []link
	todaysNews(doc).Find(hltvNewsLinkSel).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, link{
			title: strings.TrimSpace(a.Find(hltvTitleSel).First().Text()),
			href:  href,
		})
	})
	return links
}

func todaysNews(doc *goquery.Document) *goquery.Selection {
	var section *goquery.Selection
	doc.Find(hltvHeadlineSel).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), "today") {
			return true
		}
		if list := h.NextAllFiltered(hltvListSel).First(); list.Length() > 0 {
			section = list
			return false
		}
		return true
	})
	if section == nil {
		return doc.Selection
	}
	return section
}
