package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/version"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	cfg := config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "blog.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.log")
	cfg := config.GlobalConfig{LogLevel: "debug", LogFilePath: path}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestApplyLevelUpdatesLogger(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if err := ApplyLevel(logger, "debug"); err != nil {
		t.Fatalf("调整级别失败: %v", err)
	}
	if logger.GetLevel().String() != "debug" {
		t.Fatalf("级别未更新: %s", logger.GetLevel())
	}
	if err := ApplyLevel(logger, "chatty"); err == nil {
		t.Fatalf("非法级别应报错")
	}
	if logger.GetLevel().String() != "debug" {
		t.Fatalf("非法级别不应改变当前级别")
	}
}

func TestServiceFieldsAttached(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{LogLevel: "info"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("action", "startup").Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("日志应为 JSON: %v (%s)", err, buf.String())
	}
	if line["service"] != "azure-daily-blog" || line["version"] != version.Version || line["action"] != "startup" {
		t.Fatalf("字段缺失: %v", line)
	}
	if err := Close(logger); err != nil {
		t.Fatalf("stdout 输出关闭不应报错: %v", err)
	}
}

func TestCLILoggerSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCLILogger(&buf)
	logger.Info("quiet")
	logger.Warn("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("CLI 日志级别错误: %s", buf.String())
	}
}
