package processor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LJTian/TrendingDigest/internal/collector"
)

func TestHashURLDeterministicAndDistinct(t *testing.T) {
	h1a := hashURL("https://example.com/a")
	h1b := hashURL("https://example.com/a")
	h2 := hashURL("https://example.com/b")

	assert.Equal(t, h1a, h1b, "hashURL should be deterministic")
	assert.NotEqual(t, h1a, h2, "hashURL should differ for different URLs")
}

func TestTruncateRunesHandlesMultibyteAndEllipsis(t *testing.T) {
	out := truncateRunes("你好，世界，这是一个很长的中文句子，用来测试截断逻辑。", 5)
	assert.Len(t, []rune(out), 6) // 5 个字符 + 1 个省略号
	assert.True(t, strings.HasSuffix(out, "…"), out)

	// limit 大于长度时不应截断
	assert.Equal(t, "短文本", truncateRunes("短文本", 10))
}

func TestSimpleProcessorDeduplicateAndClean(t *testing.T) {
	p := NewSimpleProcessor()
	now := time.Now()

	items := []collector.NewsItem{
		{
			Title:       "Title   1",
			URL:         "https://example.com/1",
			Source:      collector.SourceHLTV,
			Summary:     " News Article ",
			PublishedAt: now,
		},
		{
			Title:       "Title 1 duplicate by URL",
			URL:         "https://example.com/1",
			Source:      collector.SourceHLTV,
			PublishedAt: now,
		},
		{
			Title:       "Title 2",
			URL:         "https://example.com/2",
			Source:      collector.SourceHLTV,
			Summary:     strings.Repeat("x", maxSummaryRunes+10),
			PublishedAt: now,
		},
	}

	out := p.Process(items)
	require.Len(t, out, 2)

	// 第一次出现的条目保留
	assert.Equal(t, "Title 1", out[0].Title)
	assert.Equal(t, "News Article", out[0].Summary)
	assert.Len(t, []rune(out[1].Summary), maxSummaryRunes+1)

	// 入参不被修改
	assert.Equal(t, "Title   1", items[0].Title)
}

func TestSimpleProcessorEmptyInput(t *testing.T) {
	out := NewSimpleProcessor().Process(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
