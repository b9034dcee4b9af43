package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tradebook/internal/booking"
	"tradebook/internal/config"
	"tradebook/internal/inbox"
	"tradebook/internal/trade"
	"tradebook/internal/transport/http/api"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→录入交易或启动服务。
type App struct {
	cfg        *config.Config
	fs         afero.Fs
	service    *booking.Service
	dispatcher *booking.Dispatcher
	http       *api.Server
	inbox      *inbox.Watcher
	cleanup    func()
	closers    []io.Closer
	Summary    *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	closers, err := configureLogging(cfg.App)
	if err != nil {
		return nil, err
	}
	a, cleanup, err := buildAppWithWire(cfg)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	a.fs = afero.NewOsFs()
	a.cleanup = cleanup
	a.closers = closers
	return a, nil
}

func (a *App) Service() *booking.Service {
	if a == nil {
		return nil
	}
	return a.service
}

// BookFile books the trade record stored at path.
func (a *App) BookFile(ctx context.Context, path string) (*booking.Batch, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	fs := a.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &trade.IOError{Op: "read", Destination: path, Err: err}
	}
	return a.service.Book(ctx, path, data)
}

// Run 启动 HTTP 与收件箱服务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.http == nil && a.inbox == nil {
		return errors.New("nothing to serve: enable http and/or inbox")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)
	if a.http != nil {
		group.Go(func() error {
			if err := a.http.Start(ctx); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
	}
	if a.inbox != nil {
		group.Go(func() error {
			return a.inbox.Run(ctx)
		})
	}
	return group.Wait()
}

// Close 释放存储、队列连接与日志文件。
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
	closeAll(a.closers)
	a.closers = nil
}
