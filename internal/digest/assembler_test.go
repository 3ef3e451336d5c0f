package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingDigest/internal/collector"
	"github.com/LJTian/TrendingDigest/internal/config"
)

type fakeFetcher struct {
	src     collector.Source
	items   []collector.NewsItem
	failure *collector.SourceError
	initErr error
	panics  bool

	inits, fetches, closes int
	gotDays                int
}

func (f *fakeFetcher) Source() collector.Source { return f.src }

func (f *fakeFetcher) Init(ctx context.Context) error {
	f.inits++
	return f.initErr
}

func (f *fakeFetcher) Fetch(ctx context.Context, days int) collector.Result {
	f.fetches++
	f.gotDays = days
	if f.panics {
		panic("selector exploded")
	}
	return collector.Result{Source: f.src, Items: f.items, Err: f.failure, FetchedAt: time.Now()}
}

func (f *fakeFetcher) Close() error {
	f.closes++
	return nil
}

func registryOf(fs ...*fakeFetcher) *Registry {
	r := NewRegistry()
	for _, f := range fs {
		r.Register(f.src, func() collector.Fetcher { return f })
	}
	return r
}

func item(src collector.Source, title, url string) collector.NewsItem {
	return collector.NewsItem{Title: title, URL: url, Source: src, PublishedAt: time.Now()}
}

func TestRunSingleSourceLeavesOthersEmpty(t *testing.T) {
	hltv := &fakeFetcher{src: collector.SourceHLTV, items: []collector.NewsItem{
		item(collector.SourceHLTV, "A", "https://www.hltv.org/news/1/a"),
		item(collector.SourceHLTV, "B", "https://www.hltv.org/news/2/b"),
	}}

	b, err := New(registryOf(hltv)).Run(context.Background(), Options{
		Sources: []collector.Source{collector.SourceHLTV},
	})
	require.NoError(t, err)

	require.Len(t, b.Sections, 3)
	assert.Equal(t, collector.SourceHLTV, b.Sections[0].Source)
	assert.True(t, b.Sections[0].Enabled)
	assert.Len(t, b.Items(collector.SourceHLTV), 2)

	for _, src := range []collector.Source{collector.SourceHackerNews, collector.SourceVLR} {
		items := b.Items(src)
		assert.NotNil(t, items, src)
		assert.Empty(t, items, src)
		s, ok := b.Section(src)
		require.True(t, ok)
		assert.False(t, s.Enabled)
	}

	assert.Equal(t, PeriodDaily, b.Period)
	assert.Equal(t, 1, b.LookbackDays)
	assert.NotEmpty(t, b.RunID)
	assert.Equal(t, 2, b.Total())
	assert.Equal(t, 1, hltv.inits)
	assert.Equal(t, 1, hltv.closes)
	assert.Equal(t, 1, hltv.gotDays)
}

func TestRunKeepsInvocationOrderAndIgnoresDuplicates(t *testing.T) {
	hn := &fakeFetcher{src: collector.SourceHackerNews}
	vlr := &fakeFetcher{src: collector.SourceVLR}

	b, err := New(registryOf(hn, vlr)).Run(context.Background(), Options{
		Sources:      []collector.Source{collector.SourceVLR, collector.SourceHackerNews, collector.SourceVLR},
		Period:       PeriodWeekly,
		LookbackDays: 7,
	})
	require.NoError(t, err)

	got := make([]collector.Source, 0, len(b.Sections))
	for _, s := range b.Sections {
		got = append(got, s.Source)
	}
	assert.Equal(t, []collector.Source{collector.SourceVLR, collector.SourceHackerNews, collector.SourceHLTV}, got)
	assert.Equal(t, 1, vlr.fetches)
	assert.Equal(t, 7, vlr.gotDays)
	assert.Equal(t, PeriodWeekly, b.Period)
}

func TestRunRecordsSourceFailure(t *testing.T) {
	hn := &fakeFetcher{
		src:     collector.SourceHackerNews,
		failure: &collector.SourceError{Source: collector.SourceHackerNews, Reason: collector.ReasonIndex, Err: errors.New("status 503")},
	}
	vlr := &fakeFetcher{src: collector.SourceVLR, items: []collector.NewsItem{
		item(collector.SourceVLR, "X", "https://www.vlr.gg/1/x"),
	}}

	b, err := New(registryOf(hn, vlr)).Run(context.Background(), Options{
		Sources: []collector.Source{collector.SourceHackerNews, collector.SourceVLR},
	})
	require.NoError(t, err)

	s, ok := b.Section(collector.SourceHackerNews)
	require.True(t, ok)
	assert.True(t, s.Failed())
	assert.Equal(t, collector.ReasonIndex, s.Reason)
	assert.Contains(t, s.Error, "status 503")
	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)

	require.Len(t, b.Failed(), 1)
	assert.Len(t, b.Items(collector.SourceVLR), 1)
	assert.Len(t, b.Enabled(), 2)
}

func TestRunDeduplicatesItemsWithinSection(t *testing.T) {
	hltv := &fakeFetcher{src: collector.SourceHLTV, items: []collector.NewsItem{
		item(collector.SourceHLTV, "A", "https://www.hltv.org/news/1/a"),
		item(collector.SourceHLTV, "A again", "https://www.hltv.org/news/1/a"),
	}}

	b, err := New(registryOf(hltv)).Run(context.Background(), Options{Sources: []collector.Source{collector.SourceHLTV}})
	require.NoError(t, err)
	require.Len(t, b.Items(collector.SourceHLTV), 1)
	assert.Equal(t, "A", b.Items(collector.SourceHLTV)[0].Title)
}

func TestRunInitFailureAbortsAndCloses(t *testing.T) {
	hn := &fakeFetcher{src: collector.SourceHackerNews}
	hltv := &fakeFetcher{src: collector.SourceHLTV, initErr: errors.New("chrome not found")}
	vlr := &fakeFetcher{src: collector.SourceVLR}

	b, err := New(registryOf(hn, hltv, vlr)).Run(context.Background(), Options{
		Sources: []collector.Source{collector.SourceHackerNews, collector.SourceHLTV, collector.SourceVLR},
	})

	require.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "hltv")
	assert.ErrorIs(t, err, hltv.initErr)
	assert.Equal(t, 1, hltv.closes)
	assert.Zero(t, hltv.fetches)
	assert.Equal(t, 1, hn.closes)
	assert.Zero(t, vlr.inits)
}

func TestRunPanicBecomesError(t *testing.T) {
	vlr := &fakeFetcher{src: collector.SourceVLR, panics: true}

	b, err := New(registryOf(vlr)).Run(context.Background(), Options{Sources: []collector.Source{collector.SourceVLR}})

	require.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "selector exploded")
	assert.Equal(t, 1, vlr.closes)
}

func TestRunUnknownSource(t *testing.T) {
	_, err := New(NewRegistry()).Run(context.Background(), Options{Sources: []collector.Source{collector.SourceVLR}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vlr")
}

func TestDefaultRegistryBuildsAllSources(t *testing.T) {
	cfg, err := config.Load([]string{"--browser", "static"})
	require.NoError(t, err)

	r := DefaultRegistry(cfg)
	for _, src := range collector.AllSources {
		f, err := r.New(src)
		require.NoError(t, err)
		assert.Equal(t, src, f.Source())
		assert.NoError(t, f.Close())
	}
}
