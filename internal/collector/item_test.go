package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemResolvesRelativeURL(t *testing.T) {
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	item, err := NewItem(SourceHLTV, ItemInput{
		Title:       "  NAVI   win the Major ",
		Href:        "/news/39001/navi-win-major",
		BaseURL:     "https://www.hltv.org",
		PublishedAt: now,
		Summary:     "News Article",
	})
	require.NoError(t, err)
	assert.Equal(t, "NAVI win the Major", item.Title)
	assert.Equal(t, "https://www.hltv.org/news/39001/navi-win-major", item.URL)
	assert.Equal(t, SourceHLTV, item.Source)
	assert.Equal(t, now, item.PublishedAt)
	assert.Equal(t, "News Article", item.Summary)
}

func TestNewItemKeepsAbsoluteURL(t *testing.T) {
	item, err := NewItem(SourceHackerNews, ItemInput{
		Title:   "Show HN: a thing",
		Href:    "https://example.com/post",
		BaseURL: "https://www.hltv.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post", item.URL)
}

func TestNewItemDerivesTitleFromSlug(t *testing.T) {
	item, err := NewItem(SourceVLR, ItemInput{
		Href:    "/312345/sentinels-sign-new-igl/",
		BaseURL: "https://www.vlr.gg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sentinels Sign New Igl", item.Title)
	assert.Equal(t, "https://www.vlr.gg/312345/sentinels-sign-new-igl/", item.URL)
}

func TestNewItemRejectsMissingFields(t *testing.T) {
	_, err := NewItem(SourceHLTV, ItemInput{Title: "no link"})
	assert.ErrorIs(t, err, errMissingURL)

	// 相对链接但没有站点根地址，无法补全
	_, err = NewItem(SourceHLTV, ItemInput{Title: "relative", Href: "/news/1/x"})
	assert.ErrorIs(t, err, errMissingURL)

	_, err = NewItem(SourceHLTV, ItemInput{Href: "https://www.hltv.org/"})
	assert.ErrorIs(t, err, errMissingTitle)
}

func TestTitleFromSlug(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://www.hltv.org/news/39002/s1mple-returns-to-action", "S1mple Returns To Action"},
		{"/news/1/already-Capitalized-word", "Already Capitalized Word"},
		{"https://www.vlr.gg/1/double--dash", "Double Dash"},
		{"https://www.vlr.gg/", ""},
		{"", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, TitleFromSlug(c.link), c.link)
	}
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://www.vlr.gg", "/1/a", "https://www.vlr.gg/1/a"},
		{"https://www.vlr.gg", "https://x.com/y", "https://x.com/y"},
		{"", "https://example.com/a b?q=x y", "https://example.com/a b?q=x y"},
		{"", "https://example.com/100%-organic", ""},
		{"https://www.vlr.gg", "  ", ""},
		{"", "/1/a", ""},
		{"not a url", "/1/a", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, AbsoluteURL(c.base, c.href), "base=%q href=%q", c.base, c.href)
	}
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("vlr")
	require.NoError(t, err)
	assert.Equal(t, SourceVLR, s)

	_, err = ParseSource("instagram")
	assert.Error(t, err)
}
