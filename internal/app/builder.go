package app

import (
	"context"
	"fmt"
	"strings"

	"tradebook/internal/booking"
	"tradebook/internal/classify"
	"tradebook/internal/config"
	"tradebook/internal/decompose"
	"tradebook/internal/envelope"
	"tradebook/internal/inbox"
	"tradebook/internal/logger"
	"tradebook/internal/mapping"
	"tradebook/internal/pkg/circuit"
	"tradebook/internal/queue"
	"tradebook/internal/sink"
	"tradebook/internal/store/gormstore"
	"tradebook/internal/transport/http/api"
	"tradebook/internal/validate"

	"github.com/spf13/afero"
)

func provideClassifier(cfg *config.Config) (*classify.Classifier, error) {
	mode, err := classify.ParseMode(cfg.Booking.ClassificationMode)
	if err != nil {
		return nil, err
	}
	return classify.New(mode), nil
}

func provideValidator(c *classify.Classifier) *validate.Validator {
	return validate.New(c)
}

func provideDecomposer(cfg *config.Config) *decompose.Decomposer {
	fallback := decompose.PlaceholderPeriods()
	if len(cfg.Booking.PlaceholderPeriods) > 0 {
		fallback = make([]decompose.Period, 0, len(cfg.Booking.PlaceholderPeriods))
		for _, p := range cfg.Booking.PlaceholderPeriods {
			fallback = append(fallback, decompose.Period{
				Effective:   strings.TrimSpace(p.Effective),
				Termination: strings.TrimSpace(p.Termination),
			})
		}
	}
	return decompose.New(decompose.WithSplitter(decompose.NewTenorSplitter(fallback)))
}

func provideTables(cfg *config.Config) (*mapping.Tables, error) {
	return mapping.Load(cfg.Mapping.Path)
}

func provideEnvelopeBuilder() *envelope.Builder {
	return envelope.NewBuilder()
}

// provideStore returns nil when the SQLite store is disabled.
func provideStore(cfg *config.Config) (*gormstore.GormStore, func(), error) {
	if !cfg.Store.Enabled {
		return nil, func() {}, nil
	}
	st, err := gormstore.NewGormStore(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化报文存储失败: %w", err)
	}
	logger.Infof("✓ 报文存储 %s", cfg.Store.Path)
	return st, func() { _ = st.Close() }, nil
}

// providePublisher returns nil when the queue is disabled.
func providePublisher(cfg *config.Config) (*queue.RedisPublisher, func(), error) {
	if !cfg.Queue.Enabled {
		return nil, func() {}, nil
	}
	breaker := circuit.New("queue", cfg.Queue.BreakerThreshold, cfg.Queue.BreakerCooldown)
	pub := queue.NewRedisPublisher(queue.NewRedisClient(queue.Options{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	}), queue.WithBreaker(breaker))
	if err := pub.Ping(context.Background()); err != nil {
		logger.Warnf("queue not reachable yet: %v", err)
	}
	logger.Infof("✓ 报文队列 %s topic=%s", cfg.Queue.Addr, cfg.Queue.Topic)
	return pub, func() { _ = pub.Close() }, nil
}

func provideDispatcher(cfg *config.Config, st *gormstore.GormStore, pub *queue.RedisPublisher) *booking.Dispatcher {
	opts := []booking.DispatchOption{booking.WithFilePattern(cfg.Output.FilePattern)}
	if cfg.Output.Enabled {
		opts = append(opts, booking.WithWriter("file", sink.NewFileWriter(afero.NewOsFs(), cfg.Output.Dir), true))
	}
	if st != nil {
		opts = append(opts, booking.WithWriter("store", st, false))
	}
	if pub != nil {
		opts = append(opts, booking.WithPublisher(pub, cfg.Queue.Topic))
	}
	return booking.NewDispatcher(opts...)
}

func provideService(
	cfg *config.Config,
	v *validate.Validator,
	c *classify.Classifier,
	d *decompose.Decomposer,
	tables *mapping.Tables,
	eb *envelope.Builder,
	dispatcher *booking.Dispatcher,
) (*booking.Service, error) {
	return booking.NewService(v, c, d, tables, eb, dispatcher, booking.Options{
		MessageType: cfg.Booking.MessageType,
		Sender:      cfg.Booking.Sender,
		Target:      cfg.Booking.Target,
		Workers:     cfg.Booking.Workers,
	})
}

// provideHTTPServer returns nil when http is disabled.
func provideHTTPServer(cfg *config.Config, svc *booking.Service, st *gormstore.GormStore) (*api.Server, error) {
	if !cfg.HTTP.Enabled {
		return nil, nil
	}
	var lister api.MessageLister
	if st != nil {
		lister = st
	}
	server, err := api.NewServer(api.ServerConfig{Addr: cfg.HTTP.Addr, Booker: svc, Messages: lister})
	if err != nil {
		return nil, fmt.Errorf("初始化 HTTP 失败: %w", err)
	}
	return server, nil
}

// provideInbox returns nil when the inbox watcher is disabled.
func provideInbox(cfg *config.Config, svc *booking.Service) (*inbox.Watcher, error) {
	if !cfg.Inbox.Enabled {
		return nil, nil
	}
	return inbox.New(cfg.Inbox.Dir, cfg.Inbox.ProcessedDir, func(ctx context.Context, path string, data []byte) error {
		batch, err := svc.Book(ctx, path, data)
		if err != nil {
			return err
		}
		return batch.Err()
	})
}

func provideApp(
	cfg *config.Config,
	svc *booking.Service,
	tables *mapping.Tables,
	dispatcher *booking.Dispatcher,
	server *api.Server,
	watcher *inbox.Watcher,
) *App {
	return &App{
		cfg:        cfg,
		service:    svc,
		dispatcher: dispatcher,
		http:       server,
		inbox:      watcher,
		Summary:    newStartupSummary(cfg, tables),
	}
}
