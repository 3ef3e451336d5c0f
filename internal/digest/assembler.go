package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LJTian/TrendingDigest/internal/collector"
	"github.com/LJTian/TrendingDigest/internal/processor"
)

const (
	PeriodDaily  = "daily"
	PeriodWeekly = "weekly"
)

type Options struct {
	Sources      []collector.Source
	Period       string
	LookbackDays int
}

// Assembler 依次调用启用的数据源并汇总成 Bundle
type Assembler struct {
	registry  *Registry
	processor *processor.SimpleProcessor
	now       func() time.Time
}

func New(registry *Registry) *Assembler {
	return &Assembler{
		registry:  registry,
		processor: processor.NewSimpleProcessor(),
		now:       time.Now,
	}
}

// Run 数据源级失败只记录在对应 Section 中；
// Init 失败、未注册的数据源或 Fetcher panic 会让整次运行失败，不返回 Bundle。
func (a *Assembler) Run(ctx context.Context, opts Options) (*Bundle, error) {
	if opts.Period == "" {
		opts.Period = PeriodDaily
	}
	if opts.LookbackDays < 1 {
		opts.LookbackDays = 1
	}

	runID := uuid.NewString()
	log := zerolog.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = log.WithContext(ctx)

	b := &Bundle{
		RunID:        runID,
		Period:       opts.Period,
		LookbackDays: opts.LookbackDays,
		GeneratedAt:  a.now(),
	}

	log.Info().
		Strs("sources", sourceNames(opts.Sources)).
		Int("days", opts.LookbackDays).
		Msg("digest run start")

	enabled := make(map[collector.Source]bool, len(opts.Sources))
	for _, src := range opts.Sources {
		if enabled[src] {
			continue
		}
		enabled[src] = true

		start := time.Now()
		res, err := a.runSource(ctx, src, opts.LookbackDays)
		if err != nil {
			log.Error().Err(err).Str("source", src.String()).Msg("digest run aborted")
			return nil, err
		}

		sec := Section{
			Source:   src,
			Enabled:  true,
			Items:    a.processor.Process(res.Items),
			Duration: time.Since(start),
		}
		if res.Failed() {
			sec.Reason = res.Err.Reason
			sec.Error = res.Err.Error()
			log.Warn().Err(res.Err).Str("source", src.String()).Int("items", len(sec.Items)).Msg("source degraded")
		}
		log.Info().
			Str("source", src.String()).
			Int("items", len(sec.Items)).
			Dur("took", sec.Duration).
			Msg("source done")
		b.Sections = append(b.Sections, sec)
	}

	for _, src := range collector.AllSources {
		if !enabled[src] {
			b.Sections = append(b.Sections, Section{Source: src, Items: []collector.NewsItem{}})
		}
	}

	log.Info().Int("total", b.Total()).Int("failed", len(b.Failed())).Msg("digest run done")
	return b, nil
}

// runSource Close 在所有路径上执行，包括 panic
func (a *Assembler) runSource(ctx context.Context, src collector.Source, days int) (res collector.Result, err error) {
	f, err := a.registry.New(src)
	if err != nil {
		return res, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %s: panic: %v", src, r)
		}
		if cerr := f.Close(); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Str("source", src.String()).Msg("close fetcher failed")
		}
	}()

	if err := f.Init(ctx); err != nil {
		return res, fmt.Errorf("source %s: init: %w", src, err)
	}
	return f.Fetch(ctx, days), nil
}

func sourceNames(in []collector.Source) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}
