package collector

import "time"

// Window 时间窗口：只保留发布时间不早于 Cutoff 的内容
type Window struct {
	Cutoff time.Time
}

// NewWindow cutoff = now - days*24h，days 小于 1 时按 1 天处理
func NewWindow(now time.Time, days int) Window {
	if days < 1 {
		days = 1
	}
	return Window{Cutoff: now.Add(-time.Duration(days) * 24 * time.Hour)}
}

// Contains 等于 cutoff 的时间点也算在窗口内
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Cutoff)
}

// Filter 保留窗口内的元素，不改变相对顺序
func Filter[T any](w Window, in []T, ts func(T) time.Time) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if w.Contains(ts(v)) {
			out = append(out, v)
		}
	}
	return out
}
