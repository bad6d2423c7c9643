package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀：PLAYERHUB_MONGODB_URI 覆盖 mongodb.uri。
const EnvPrefix = "PLAYERHUB"

// Load 读取配置文件并解码到 out。
// defaults 里出现的 key 也能被环境变量覆盖（viper 只对已知 key 做 AutomaticEnv）。
func Load(cfgName string, out any, defaults map[string]any) (*viper.Viper, error) {
	path, err := ResolvePath(cfgName)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err = Decode(v, out); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode 统一的解码入口："5s" 这类字符串转 time.Duration，"a,b" 转切片。
func Decode(v *viper.Viper, out any) error {
	return v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
}

// Watch 监听配置文件变更。回调在 fsnotify 的 goroutine 里执行，调用方自己负责并发安全。
func Watch(v *viper.Viper, onChange func(e fsnotify.Event)) {
	if v == nil || onChange == nil {
		return
	}
	v.OnConfigChange(onChange)
	v.WatchConfig()
}
