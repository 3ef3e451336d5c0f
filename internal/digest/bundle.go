package digest

import (
	"time"

	"github.com/LJTian/TrendingDigest/internal/collector"
)

// Section 一个数据源在本次摘要中的结果
type Section struct {
	Source  collector.Source     `json:"source"`
	Enabled bool                 `json:"enabled"`
	Items   []collector.NewsItem `json:"items"`
	// Reason 与 Error 只在数据源失败时非空，用于区分“失败”与“没有内容”
	Reason   collector.Reason `json:"reason,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"-"`
}

func (s Section) Failed() bool {
	return s.Reason != ""
}

// Bundle 一次运行的完整结果。
// 顺序：先是启用的数据源（按调用顺序），再是未启用的已知数据源（Items 为空切片）。
type Bundle struct {
	RunID        string    `json:"runId"`
	Period       string    `json:"period"`
	LookbackDays int       `json:"lookbackDays"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Sections     []Section `json:"sections"`
}

func (b *Bundle) Section(src collector.Source) (Section, bool) {
	for _, s := range b.Sections {
		if s.Source == src {
			return s, true
		}
	}
	return Section{}, false
}

// Items 未知数据源返回 nil
func (b *Bundle) Items(src collector.Source) []collector.NewsItem {
	s, ok := b.Section(src)
	if !ok {
		return nil
	}
	return s.Items
}

func (b *Bundle) Enabled() []Section {
	out := make([]Section, 0, len(b.Sections))
	for _, s := range b.Sections {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bundle) Failed() []Section {
	var out []Section
	for _, s := range b.Sections {
		if s.Failed() {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bundle) Total() int {
	n := 0
	for _, s := range b.Sections {
		n += len(s.Items)
	}
	return n
}
