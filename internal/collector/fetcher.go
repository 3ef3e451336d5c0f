package collector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Source 数据源标识，每个 Fetcher 固定一个，不从内容推断
type Source string

const (
	SourceHackerNews Source = "hackernews"
	SourceHLTV       Source = "hltv"
	SourceVLR        Source = "vlr"
)

// AllSources 所有已知数据源，顺序即默认展示顺序
var AllSources = []Source{SourceHackerNews, SourceHLTV, SourceVLR}

func (s Source) String() string {
	return string(s)
}

// ParseSource 校验并解析数据源名称
func ParseSource(name string) (Source, error) {
	for _, s := range AllSources {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", name)
}

// Fetcher 抽象每一个数据源：Init 可选，Fetch 按回溯天数抓取，Close 释放自身持有的资源
type Fetcher interface {
	Source() Source
	Init(ctx context.Context) error
	Fetch(ctx context.Context, lookbackDays int) Result
	Close() error
}

// Reason 数据源级失败的分类
type Reason string

const (
	ReasonIndex    Reason = "index"
	ReasonNavigate Reason = "navigate"
	ReasonExtract  Reason = "extract"
	ReasonCanceled Reason = "canceled"
)

// SourceError 描述某个数据源本轮抓取失败的原因；失败不会向上抛出，只记录在 Result 中
type SourceError struct {
	Source Source
	Reason Reason
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Result 单个数据源一次抓取的结果。Err 非空时 Items 可能是部分结果
type Result struct {
	Source    Source
	Items     []NewsItem
	Err       *SourceError
	FetchedAt time.Time
}

// Failed 区分“源失败”与“没有内容”
func (r Result) Failed() bool {
	return r.Err != nil
}

func failure(src Source, reason Reason, err error) *SourceError {
	// 超时仍按原分类记录，只有调用方主动取消才归为 canceled
	if errors.Is(err, context.Canceled) {
		reason = ReasonCanceled
	}
	return &SourceError{Source: src, Reason: reason, Err: err}
}
