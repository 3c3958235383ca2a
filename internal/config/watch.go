package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch 监听配置文件变化，并在每次写入后重新加载完整配置交给 onChange。
// 重新加载失败时回调 onError，原有配置继续生效。
func Watch(path string, onChange func(*Config), onError func(error)) error {
	if path == "" {
		return fmt.Errorf("配置路径为空")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()
	return nil
}
