package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PlayerHub/internal/player/app"
	"PlayerHub/internal/player/app/port"
	"PlayerHub/internal/player/infra/persistence/memory"
	playermongo "PlayerHub/internal/player/infra/persistence/mongodb"
	playerhttp "PlayerHub/internal/player/interfaces/handler/http"
	sharedmongo "PlayerHub/internal/shared/infrastructure/mongo"
	"PlayerHub/internal/shared/logs"
	"PlayerHub/internal/shared/serverconfig"
	transporthttp "PlayerHub/internal/shared/transport/http"
	"PlayerHub/modules/kit/logx"

	"go.uber.org/zap"
)

// configEnv 指定配置文件路径；为空时从当前目录向上查找 configs/conf.yml。
const configEnv = "PLAYERHUB_CONFIG"

func main() {
	conf, err := serverconfig.Load(os.Getenv(configEnv), func(c serverconfig.Config, err error) {
		if err != nil {
			logs.Warn("配置热更新失败，沿用旧配置", zap.Error(err))
			return
		}
		logs.Info("配置已热更新", zap.Any("conf", c))
	})
	if err != nil {
		panic(err)
	}
	if err = logs.Init("player", conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", conf))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logs.Logger()
	repo, closeStore, err := openStore(ctx, conf, logger)
	if err != nil {
		logs.Fatal("open player store failed", zap.String("driver", conf.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	baseLogger := logx.NewZapLogger(logger)
	svc := app.NewPlayerService(repo)

	httpServer := transporthttp.NewHttpServer(conf.HTTPServer.Addr(), nil, baseLogger)
	httpModules := []transporthttp.Registrar{
		playerhttp.NewPlayerHandler(svc, baseLogger),
	}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.Group())
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Info("player server start", zap.String("addr", httpServer.Addr()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("player server start failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logs.Warn("http server shutdown failed", zap.Error(err))
	}
}

// openStore 按 store.driver 选择仓储实现，返回的 close 在退出时调用。
func openStore(ctx context.Context, conf serverconfig.Config, l *zap.Logger) (port.PlayerRepository, func(), error) {
	if conf.Store.Driver == serverconfig.StoreDriverMemory {
		l.Warn("使用内存仓储，进程退出后数据丢失")
		return memory.NewPlayerRepo(), func() {}, nil
	}

	client, err := sharedmongo.Open(ctx, conf.MongoDB, l)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { sharedmongo.Close(client, 5*time.Second, l) }

	repo := playermongo.NewPlayerRepo(client.Database(conf.MongoDB.Database), conf.MongoDB.Collection)
	if conf.MongoDB.EnsureIndexes {
		if err = repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return repo, closeFn, nil
}
