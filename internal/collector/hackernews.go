package collector

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	hnBaseURL       = "https://hacker-news.firebaseio.com/v0"
	hnItemPageURL   = "https://news.ycombinator.com/item?id=%d"
	hnMaxCandidates = 500
	hnMaxDetails    = 100
	hnTopN          = 20
	hnConcurrency   = 10
	hnClientTimeout = 10 * time.Second
)

// HackerNewsFetcher 通过官方 Firebase API 抓取 Hacker News 热门故事
type HackerNewsFetcher struct {
	baseURL     string
	client      *resty.Client
	retry       RetryPolicy
	concurrency int
	now         func() time.Time
}

type HackerNewsOptions struct {
	BaseURL     string
	Client      *resty.Client
	Retry       RetryPolicy
	Concurrency int
	Now         func() time.Time
}

func NewHackerNewsFetcher(opts HackerNewsOptions) *HackerNewsFetcher {
	h := &HackerNewsFetcher{
		baseURL:     opts.BaseURL,
		client:      opts.Client,
		retry:       opts.Retry,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
	if h.baseURL == "" {
		h.baseURL = hnBaseURL
	}
	if h.client == nil {
		h.client = resty.New().SetTimeout(hnClientTimeout)
	}
	if h.retry.MaxAttempts == 0 {
		h.retry = DefaultRetryPolicy()
	}
	if h.concurrency <= 0 {
		h.concurrency = hnConcurrency
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

type hnItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

func (it hnItem) publishedAt() time.Time {
	return time.Unix(it.Time, 0)
}

// link 记录自带的链接无法解析为绝对地址时，退回 HN 讨论页
func (it hnItem) link() string {
	if u := AbsoluteURL("", it.URL); u != "" {
		return u
	}
	return fmt.Sprintf(hnItemPageURL, it.ID)
}

func (h *HackerNewsFetcher) Source() Source {
	return SourceHackerNews
}

func (h *HackerNewsFetcher) Init(ctx context.Context) error {
	return nil
}

func (h *HackerNewsFetcher) Close() error {
	return nil
}

func (h *HackerNewsFetcher) Fetch(ctx context.Context, lookbackDays int) Result {
	log := zerolog.Ctx(ctx).With().Str("source", SourceHackerNews.String()).Logger()
	ctx = log.WithContext(ctx)

	res := Result{Source: SourceHackerNews, Items: []NewsItem{}, FetchedAt: h.now()}
	log.Info().Msg("fetch Hacker News top stories...")

	ids, err := h.fetchTopIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch top stories failed")
		res.Err = failure(SourceHackerNews, ReasonIndex, err)
		return res
	}
	if len(ids) > hnMaxDetails {
		ids = ids[:hnMaxDetails]
	}

	records := h.fetchDetails(ctx, ids)

	stories := make([]hnItem, 0, len(records))
	for _, r := range records {
		if r == nil || r.Deleted || r.Dead || r.Title == "" {
			continue
		}
		stories = append(stories, *r)
	}

	// now 在过滤时读取，而不是在请求开始时
	window := NewWindow(h.now(), lookbackDays)
	stories = Filter(window, stories, hnItem.publishedAt)

	slices.SortStableFunc(stories, func(a, b hnItem) int {
		return cmp.Compare(b.Score, a.Score)
	})

	// 先构造再截断，被跳过的条目不占 top N 名额
	for _, it := range stories {
		if len(res.Items) == hnTopN {
			break
		}
		item, err := NewItem(SourceHackerNews, ItemInput{
			Title:       it.Title,
			Href:        it.link(),
			PublishedAt: it.publishedAt(),
			Summary:     fmt.Sprintf("%d points | %d comments", it.Score, it.Descendants),
		})
		if err != nil {
			log.Debug().Err(err).Int64("hn_id", it.ID).Msg("skip item")
			continue
		}
		res.Items = append(res.Items, item)
	}

	if err := ctx.Err(); err != nil {
		res.Err = failure(SourceHackerNews, ReasonCanceled, err)
	}

	log.Info().
		Int("candidates", len(ids)).
		Int("fetched", len(records)-countNil(records)).
		Int("items", len(res.Items)).
		Msg("hackernews done")
	return res
}

func (h *HackerNewsFetcher) fetchTopIDs(ctx context.Context) ([]int64, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(h.baseURL + "/topstories.json")
	if err != nil {
		return nil, fmt.Errorf("hackernews: fetch top stories: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("hackernews: unexpected status %d", resp.StatusCode())
	}

	var ids []int64
	if err := json.Unmarshal(resp.Body(), &ids); err != nil {
		return nil, fmt.Errorf("hackernews: unmarshal top stories: %w", err)
	}
	if len(ids) > hnMaxCandidates {
		ids = ids[:hnMaxCandidates]
	}
	return ids, nil
}

// fetchDetails 并发拉取详情，每个 goroutine 只写自己的下标，失败的位置保持 nil
func (h *HackerNewsFetcher) fetchDetails(ctx context.Context, ids []int64) []*hnItem {
	records := make([]*hnItem, len(ids))

	var g errgroup.Group
	g.SetLimit(h.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			it, ok := Retry(ctx, h.retry, fmt.Sprintf("hackernews item %d", id), func(ctx context.Context) (*hnItem, error) {
				return h.fetchItem(ctx, id)
			})
			if ok {
				records[i] = it
			}
			return nil
		})
	}
	_ = g.Wait()

	return records
}

// fetchItem 已删除的条目接口返回 null，此时得到 nil 记录而不是错误
func (h *HackerNewsFetcher) fetchItem(ctx context.Context, id int64) (*hnItem, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/item/%d.json", h.baseURL, id))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	var it *hnItem
	if err := json.Unmarshal(resp.Body(), &it); err != nil {
		return nil, err
	}
	return it, nil
}

func countNil[T any](s []*T) int {
	n := 0
	for _, v := range s {
		if v == nil {
			n++
		}
	}
	return n
}
