package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/version"
)

const serviceName = "azure-daily-blog"

// InitLogger 创建站点 JSON 日志：级别取自配置，LogFilePath 非空时写入 lumberjack 轮转文件，
// 每条日志附带 service/version 字段。文件不可写时退回 stdout，并记录 logger_fallback。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}

	out, fallback := openOutput(cfg)
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	logger.AddHook(serviceHook{fields: logrus.Fields{
		"service": serviceName,
		"version": version.Version,
	}})

	// 第三方代码经由 logrus 标准 logger 输出时保持同一格式与目标。
	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(out)
	logrus.SetLevel(level)

	if fallback != nil {
		fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", fallback)
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFilePath,
		}).Warn(fallback.Error())
	}
	return logger, nil
}

// openOutput 返回日志输出目标；第二个返回值非空表示已退回 stdout。
func openOutput(cfg config.GlobalConfig) (io.Writer, error) {
	if cfg.LogFilePath == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return os.Stdout, fmt.Errorf("创建日志目录失败: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}

// Close 关闭轮转文件句柄，stdout 输出时无操作。
func Close(logger *logrus.Logger) error {
	if rotator, ok := logger.Out.(*lumberjack.Logger); ok {
		return rotator.Close()
	}
	return nil
}

// NewCLILogger 供子命令使用：文本格式，只输出警告以上级别，避免干扰终端输出。
func NewCLILogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger
}

// ApplyLevel 在配置热加载后调整日志级别，非法值保持原级别并返回错误。
func ApplyLevel(logger *logrus.Logger, raw string) error {
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return fmt.Errorf("无法解析日志级别: %w", err)
	}
	if logger.GetLevel() != level {
		logger.SetLevel(level)
		logrus.SetLevel(level)
	}
	return nil
}

// serviceHook 为每条日志补充固定字段，已有同名字段时不覆盖。
type serviceHook struct {
	fields logrus.Fields
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
