//go:build wireinject

package app

import (
	"tradebook/internal/config"

	"github.com/google/wire"
)

var providerSet = wire.NewSet(
	provideClassifier,
	provideValidator,
	provideDecomposer,
	provideTables,
	provideEnvelopeBuilder,
	provideStore,
	providePublisher,
	provideDispatcher,
	provideService,
	provideHTTPServer,
	provideInbox,
	provideApp,
)

func buildAppWithWire(cfg *config.Config) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
