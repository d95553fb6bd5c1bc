//go:build wireinject

package main

import (
	"github.com/janhq/provider-sync/internal/domain"
	"github.com/janhq/provider-sync/internal/infrastructure"

	"github.com/google/wire"
)

func CreateApplication() (*Application, error) {
	wire.Build(
		domain.ServiceProvider,
		infrastructure.InfrastructureProvider,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}
