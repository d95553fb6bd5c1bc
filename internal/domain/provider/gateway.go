package provider

import "context"

// Gateway abstracts the remote provider-configuration API.
//
// Fetch methods return the remote view of an entity; detail and runtime-state
// lookups return nil (without error) when the remote reports the entity as
// absent. Mutation methods return once the remote has accepted the change,
// they never touch local caches.
type Gateway interface {
	FetchProviders(ctx context.Context) ([]Provider, error)
	FetchProviderDetail(ctx context.Context, id string) (*ProviderDetail, error)
	FetchRuntimeState(ctx context.Context) (*RuntimeState, error)

	CreateProvider(ctx context.Context, input CreateProviderInput) (*ProviderDetail, error)
	DeleteProvider(ctx context.Context, id string) error
	UpdateProvider(ctx context.Context, id string, input UpdateProviderInput) error
	UpdateProviderConfig(ctx context.Context, id string, config Config) error
	UpdateProviderSort(ctx context.Context, items []SortItem) error
	ToggleProviderEnabled(ctx context.Context, id string, enabled bool) error
}

// CreateProviderInput carries the fields accepted when registering a new
// provider. Source is forced to SourceCustom before the gateway is called.
type CreateProviderInput struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Config      Config `json:"config"`
	Source      Source `json:"source"`
}

// UpdateProviderInput carries the mutable list-level fields. Nil fields are
// left unchanged by the remote.
type UpdateProviderInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
}

// SortItem assigns one provider its position in the ordered provider list.
type SortItem struct {
	ID   string `json:"id" validate:"required"`
	Sort int    `json:"sort"`
}
