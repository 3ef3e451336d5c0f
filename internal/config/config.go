package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jessevdk/go-flags"

	"github.com/LJTian/TrendingDigest/internal/collector"
)

// SMTP 邮件发送配置，命令行前缀 --smtp.，环境变量前缀 SMTP_
type SMTP struct {
	Host     string   `long:"host" env:"HOST" description:"SMTP server host" validate:"required"`
	Port     int      `long:"port" env:"PORT" default:"587" description:"SMTP server port" validate:"gt=0,lte=65535"`
	User     string   `long:"user" env:"USER" description:"SMTP username"`
	Password string   `long:"password" env:"PASSWORD" description:"SMTP password"`
	From     string   `long:"from" env:"FROM" description:"Sender address" validate:"required,email"`
	To       []string `long:"to" env:"TO" env-delim:"," description:"Recipient address (repeatable)" validate:"required,min=1,dive,email"`
}

type Config struct {
	Sources      []string      `long:"source" env:"DIGEST_SOURCES" env-delim:"," default:"hackernews" default:"hltv" default:"vlr" description:"Enabled sources in digest order (repeatable)" validate:"min=1,dive,oneof=hackernews hltv vlr"`
	Period       string        `long:"period" env:"DIGEST_PERIOD" default:"daily" description:"Digest period label" validate:"oneof=daily weekly"`
	Days         int           `long:"days" env:"DIGEST_DAYS" default:"1" description:"Lookback window in days" validate:"gte=1,lte=30"`
	RunTimeout   time.Duration `long:"run-timeout" env:"RUN_TIMEOUT" default:"10m" description:"Deadline for a whole run, 0 disables it" validate:"gte=0"`
	Browser      string        `long:"browser" env:"BROWSER" default:"chrome" choice:"chrome" choice:"static" description:"Browser backend for scraped sources"`
	UserAgent    string        `long:"user-agent" env:"USER_AGENT" description:"Override the browser user agent"`
	NavTimeout   time.Duration `long:"nav-timeout" env:"NAV_TIMEOUT" default:"30s" description:"Page navigation timeout" validate:"gt=0"`
	ArticleDelay time.Duration `long:"article-delay" env:"ARTICLE_DELAY" default:"1s" description:"Delay between article visits" validate:"gte=0"`
	HNBaseURL    string        `long:"hn-base-url" env:"HN_BASE_URL" default:"https://hacker-news.firebaseio.com/v0" description:"Hacker News API base URL" validate:"url"`
	LogLevel     string        `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level" validate:"oneof=trace debug info warn error"`
	LogPretty    bool          `long:"log-pretty" env:"LOG_PRETTY" description:"Human friendly console logs"`
	DryRun       bool          `long:"dry-run" env:"DRY_RUN" description:"Write the rendered digest to --preview-out instead of sending it"`
	PreviewOut   string        `long:"preview-out" env:"PREVIEW_OUT" default:"preview.html" description:"Output file for --dry-run"`
	Port         string        `long:"port" env:"APP_PORT" default:"9000" description:"Preview server port" validate:"numeric"`

	// 同时配置用户名和密码时，预览服务启用 Basic Auth（/health 除外）
	BasicAuthUser string `long:"basic-user" env:"APP_BASIC_USER" description:"Preview server basic auth user"`
	BasicAuthPass string `long:"basic-pass" env:"APP_BASIC_PASS" description:"Preview server basic auth password"`

	SMTP SMTP `group:"SMTP" namespace:"smtp" env-namespace:"SMTP" validate:"-"`
}

var validate = validator.New()

// Load 解析命令行与环境变量并做校验。请求 --help 时返回 (nil, nil)
func Load(args []string) (*Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ValidateSMTP 只有真正发信时才要求 SMTP 配置完整
func (c *Config) ValidateSMTP() error {
	if err := validate.Struct(&c.SMTP); err != nil {
		return fmt.Errorf("invalid smtp configuration: %w", err)
	}
	return nil
}

// SourceList 按配置顺序返回数据源
func (c *Config) SourceList() ([]collector.Source, error) {
	out := make([]collector.Source, 0, len(c.Sources))
	for _, name := range c.Sources {
		s, err := collector.ParseSource(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
