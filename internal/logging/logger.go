package logging

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey = string

const loggerKey = contextKey("logger")

// Rotation bounds for the optional JSON file sink. Cascade deletes and the
// backfill log one line per facility operation, so the file stays small;
// these mostly cap a runaway error loop.
const (
	logFileMaxSizeMB  = 25
	logFileMaxBackups = 4
	logFileMaxAgeDays = 30
)

type Config struct {
	Level       zapcore.Level
	Development bool
	FilePath    string
}

var (
	conf = &Config{
		Level:       zapcore.InfoLevel,
		Development: true,
	}

	defaultLogger     *zap.SugaredLogger
	defaultLoggerOnce sync.Once
)

// SetConfig must run before the first DefaultLogger call; later calls have
// no effect on the already-built logger.
func SetConfig(c *Config) {
	conf = &Config{
		Level:       c.Level,
		Development: c.Development,
		FilePath:    c.FilePath,
	}
}

func NewLogger(conf *Config) *zap.SugaredLogger {
	level := zap.NewAtomicLevelAt(conf.Level)

	consoleEnc := zap.NewProductionEncoderConfig()
	consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEnc.CallerKey = ""
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(os.Stdout), level),
	}

	if conf.FilePath != "" {
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
		sink := &lumberjack.Logger{
			Filename:   conf.FilePath,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(sink), level))
	}

	var options []zap.Option
	if conf.Development {
		options = append(options, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), options...).Sugar()
}

func DefaultLogger() *zap.SugaredLogger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(conf)
	})
	return defaultLogger
}

func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	if gCtx, ok := ctx.(*gin.Context); ok {
		ctx = gCtx.Request.Context()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return DefaultLogger()
	}
	if gCtx, ok := ctx.(*gin.Context); ok && gCtx != nil {
		ctx = gCtx.Request.Context()
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return logger
	}
	return DefaultLogger()
}
