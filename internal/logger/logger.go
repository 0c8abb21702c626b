// Package logger provides the process-wide zerolog logger.
//
// 사용법:
//   - main에서 설정 로드 후 Init 한 번 호출
//   - 각 컴포넌트는 Named("watcher") 처럼 component 필드가 붙은 자식 로거 사용
//   - Init 전에 Get이 호출되면 기본값(info, console)으로 초기화
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options - 로거 설정
type Options struct {
	Level  string
	Format string // console | json
	Writer io.Writer
}

// Logger - 프로젝트 공용 로거 타입
type Logger = zerolog.Logger

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init - 루트 로거 생성 (최초 1회만 적용)
func Init(opt Options) {
	once.Do(func() {
		root.Store(build(opt))
	})
}

// Get - 루트 로거 반환
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(Options{Level: "info", Format: "console"})
	return root.Load()
}

// Named - component 필드가 붙은 자식 로거 반환
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

func build(opt Options) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
	return &l
}

// ParseLevel - 문자열 레벨을 zerolog 레벨로 변환 (알 수 없는 값은 info)
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
