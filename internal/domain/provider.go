package domain

import (
	"github.com/google/wire"

	"github.com/janhq/provider-sync/internal/domain/provider"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Provider sync domain
	provider.NewService,
)
