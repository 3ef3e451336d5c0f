package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/LJTian/TrendingDigest/internal/collector"
)

// maxSummaryRunes 邮件中摘要的最大字符数
const maxSummaryRunes = 280

// SimpleProcessor 做最基础的数据清洗：同一批次内按 URL 去重、压缩标题空白、截断过长摘要
type SimpleProcessor struct {
	summaryLimit int
}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{summaryLimit: maxSummaryRunes}
}

// Process 不修改入参，返回新的切片；输出顺序与输入一致
func (p *SimpleProcessor) Process(items []collector.NewsItem) []collector.NewsItem {
	out := make([]collector.NewsItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, it := range items {
		id := hashURL(it.URL)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		it.Title = strings.Join(strings.Fields(it.Title), " ")
		it.Summary = truncateRunes(strings.TrimSpace(it.Summary), p.summaryLimit)
		out = append(out, it)
	}

	return out
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// truncateRunes 按字符截断，超出时追加省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
