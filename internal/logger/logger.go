package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config 日志配置
type Config struct {
	Level  string
	Pretty bool      // 终端友好的彩色输出，本地调试用
	Output io.Writer // 为空时写 stderr
}

// Init 初始化进程级 logger，只生效一次。
// 同时设置 zerolog.DefaultContextLogger，未携带 logger 的 context 也能通过 zerolog.Ctx 拿到它。
func Init(cfg Config) {
	once.Do(func() {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil || cfg.Level == "" {
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		if cfg.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
		}

		logger = zerolog.New(out).With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &logger
	})
}

// Get 返回进程级 logger
func Get() *zerolog.Logger {
	return &logger
}
