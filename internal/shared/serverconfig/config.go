package serverconfig

import (
	"fmt"
	"sync"
	"time"

	"PlayerHub/internal/shared/config"

	"github.com/fsnotify/fsnotify"
)

var (
	mu   sync.RWMutex
	conf = Default()
)

// Default 返回所有配置项的默认值；这些 key 同时登记给 viper，保证环境变量可以覆盖。
func Default() Config {
	return Config{
		HTTPServer: HTTPServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:             "mongodb://localhost:27017",
			Database:        "game",
			Collection:      "players",
			ConnectTimeoutS: 3,
			EnsureIndexes:   true,
		},
		Store: StoreConfig{Driver: StoreDriverMongoDB},
		Log: LogConfig{
			Level:   "info",
			MaxSize: 100,
		},
	}
}

func defaultKeys() map[string]any {
	d := Default()
	return map[string]any{
		"httpserver.host":             d.HTTPServer.Host,
		"httpserver.port":             d.HTTPServer.Port,
		"httpserver.shutdown_timeout": d.HTTPServer.ShutdownTimeout.String(),
		"mongodb.uri":                 d.MongoDB.URI,
		"mongodb.database":            d.MongoDB.Database,
		"mongodb.collection":          d.MongoDB.Collection,
		"mongodb.connect_timeout_s":   d.MongoDB.ConnectTimeoutS,
		"mongodb.ensure_indexes":      d.MongoDB.EnsureIndexes,
		"store.driver":                d.Store.Driver,
		"log.file_dir":                d.Log.FileDir,
		"log.max_size":                d.Log.MaxSize,
		"log.max_backups":             d.Log.MaxBackups,
		"log.max_age":                 d.Log.MaxAge,
		"log.compress":                d.Log.Compress,
		"log.level":                   d.Log.Level,
		"log.dev":                     d.Log.Dev,
	}
}

// Load 读取配置（cfgName 为空时向上查找 configs/conf.yml），并开启热更新。
// onChange 可为 nil；热更新解码失败时保留旧配置并把错误交给 onChange。
func Load(cfgName string, onChange func(Config, error)) (Config, error) {
	next := Default()
	v, err := config.Load(cfgName, &next, defaultKeys())
	if err != nil {
		return Config{}, err
	}
	if err = next.Validate(); err != nil {
		return Config{}, err
	}
	set(next)

	config.Watch(v, func(fsnotify.Event) {
		reloaded := Default()
		err := config.Decode(v, &reloaded)
		if err == nil {
			err = reloaded.Validate()
		}
		if err == nil {
			set(reloaded)
		}
		if onChange != nil {
			onChange(Get(), err)
		}
	})
	return next, nil
}

// Get 返回当前生效配置的副本，并发安全。
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return conf
}

func set(c Config) {
	mu.Lock()
	conf = c
	mu.Unlock()
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMongoDB:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("mongodb.uri is empty")
		}
		if c.MongoDB.Database == "" {
			return fmt.Errorf("mongodb.database is empty")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.HTTPServer.Port < 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("httpserver.port out of range: %d", c.HTTPServer.Port)
	}
	return nil
}
