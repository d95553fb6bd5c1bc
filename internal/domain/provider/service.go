package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/janhq/provider-sync/internal/cache"
	"github.com/janhq/provider-sync/internal/config"
	"github.com/janhq/provider-sync/internal/infrastructure/logger"
	"github.com/janhq/provider-sync/internal/infrastructure/metrics"
	"github.com/janhq/provider-sync/internal/infrastructure/observability"
	"github.com/janhq/provider-sync/internal/utils/platformerrors"
)

const serviceName = "provider-sync"

// Cache kinds managed by the service.
const (
	KindProviderList   cache.Kind = "provider_list"
	KindProviderDetail cache.Kind = "provider_detail"
	KindRuntimeState   cache.Kind = "runtime_state"
)

// Mutation kinds as reported to metrics.
const (
	mutationCreate        = "create"
	mutationDelete        = "delete"
	mutationUpdate        = "update"
	mutationUpdateConfig  = "update_config"
	mutationUpdateSort    = "update_sort"
	mutationToggleEnabled = "toggle_enabled"
)

// Service synchronizes provider configuration with the remote API. Reads go
// through per-entity caches, mutations go to the gateway and then re-fetch
// whatever they staled, and every resulting change lands in the Store as a
// new immutable Snapshot.
type Service struct {
	gateway  Gateway
	store    *Store
	log      zerolog.Logger
	validate *validator.Validate

	providers *cache.Resource[[]Provider]
	runtime   *cache.Resource[*RuntimeState]
	details   *cache.Group[*ProviderDetail]
}

func NewService(gateway Gateway, cfg *config.Config) *Service {
	s := &Service{
		gateway:  gateway,
		store:    NewStore(),
		log:      logger.WithComponent("provider"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	s.providers = cache.NewResource(cache.Key{Kind: KindProviderList}, s.fetchProviders)

	// Runtime state can be switched off; a disabled resource reads as nil
	// and its invalidations are no-ops.
	var runtimeFetch cache.FetchFunc[*RuntimeState]
	if cfg.RuntimeStateEnabled {
		runtimeFetch = s.fetchRuntimeState
	}
	s.runtime = cache.NewResource(cache.Key{Kind: KindRuntimeState}, runtimeFetch)

	s.details = cache.NewGroup(KindProviderDetail, func(id string) cache.FetchFunc[*ProviderDetail] {
		return func(ctx context.Context) (*ProviderDetail, error) {
			return s.gateway.FetchProviderDetail(ctx, id)
		}
	})

	s.providers.Subscribe(func(_ context.Context, list []Provider) {
		s.store.setProviders(list)
	})
	s.runtime.Subscribe(func(_ context.Context, state *RuntimeState) {
		// The remote reporting the snapshot as absent is a no-op: the last
		// defined state and the projections built from it stay published.
		if state == nil {
			return
		}
		s.store.applyRuntimeState(state, BuildChatModelTree(state))
	})
	s.details.OnValue(func(_ context.Context, id string, detail *ProviderDetail) {
		s.store.refreshActiveDetail(id, detail)
	})

	return s
}

func (s *Service) fetchProviders(ctx context.Context) ([]Provider, error) {
	return s.gateway.FetchProviders(ctx)
}

func (s *Service) fetchRuntimeState(ctx context.Context) (*RuntimeState, error) {
	return s.gateway.FetchRuntimeState(ctx)
}

// Snapshot returns the current synchronized state.
func (s *Service) Snapshot() *Snapshot {
	return s.store.Snapshot()
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func.
func (s *Service) Subscribe(fn func(*Snapshot)) func() {
	return s.store.Subscribe(fn)
}

// Providers returns the provider list, fetching it from the remote on first
// use and serving the cached copy afterwards.
func (s *Service) Providers(ctx context.Context) ([]Provider, error) {
	ctx = s.ensureRequestID(ctx)
	list, err := s.providers.Read(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read provider list")
	}
	return list, nil
}

// ProviderDetail returns one provider's full view and marks that provider as
// the active one. Nothing else moves the active id.
func (s *Service) ProviderDetail(ctx context.Context, id string) (*ProviderDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "provider id is required", nil, "7c1f4a9e-2b5d-4e8a-9f3c-6d0b8a541e27")
	}
	ctx = s.ensureRequestID(ctx)
	detail, err := s.details.Resource(id).Read(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read provider detail")
	}
	s.store.setActiveDetail(id, detail)
	return detail, nil
}

// RuntimeState returns the aggregate runtime state. It reads as nil without
// touching the remote when runtime state is disabled by configuration.
func (s *Service) RuntimeState(ctx context.Context) (*RuntimeState, error) {
	ctx = s.ensureRequestID(ctx)
	state, err := s.runtime.Read(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read runtime state")
	}
	return state, nil
}

// Refresh re-fetches the provider list and runtime state, returning once both
// caches hold fresh values. The daemon calls this on its refresh schedule.
// With runtime state configured off only the list leg runs.
func (s *Service) Refresh(ctx context.Context) error {
	ctx = s.ensureRequestID(ctx)
	if err := s.providers.Invalidate(ctx); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to refresh provider list")
	}
	if !s.runtime.Enabled() {
		return nil
	}
	if err := s.runtime.Invalidate(ctx); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to refresh runtime state")
	}
	return nil
}

// CreateProvider registers a new custom provider. The source is always forced
// to custom regardless of the input.
func (s *Service) CreateProvider(ctx context.Context, input CreateProviderInput) (detail *ProviderDetail, err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.CreateProvider")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationCreate, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	input.ID = strings.TrimSpace(input.ID)
	input.Source = SourceCustom
	if verr := s.validate.Struct(input); verr != nil {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("invalid provider input: %v", verr), verr, "48f0d6a3-7b2e-4591-a8c4-0de93f176b52")
		observability.RecordError(ctx, err)
		return nil, err
	}
	observability.AddSpanAttributes(ctx, attribute.String("provider.id", input.ID))

	detail, gerr := s.gateway.CreateProvider(ctx, input)
	if gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to create provider")
		return nil, err
	}

	s.log.Info().Str("provider_id", input.ID).Msg("provider created")
	if rerr := s.refreshAfterMutation(ctx, false); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after create")
		return nil, err
	}
	return detail, nil
}

// DeleteProvider removes a provider from the remote.
func (s *Service) DeleteProvider(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.DeleteProvider")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationDelete, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	id = strings.TrimSpace(id)
	if id == "" {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "provider id is required", nil, "92c7e1b5-08d4-4a39-bf62-73a1e8d45c09")
		observability.RecordError(ctx, err)
		return err
	}
	observability.AddSpanAttributes(ctx, attribute.String("provider.id", id))

	if gerr := s.gateway.DeleteProvider(ctx, id); gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to delete provider")
		return err
	}

	s.log.Info().Str("provider_id", id).Msg("provider deleted")
	if rerr := s.refreshAfterMutation(ctx, false); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after delete")
		return err
	}
	return nil
}

// UpdateProvider patches a provider's list-level fields. The provider is
// flagged as loading until the remote call and the cache refresh both finish.
func (s *Service) UpdateProvider(ctx context.Context, id string, input UpdateProviderInput) (err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.UpdateProvider")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationUpdate, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	id = strings.TrimSpace(id)
	if id == "" {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "provider id is required", nil, "3e8d2c71-9a46-4f0b-b5e9-1c7a2d84f630")
		observability.RecordError(ctx, err)
		return err
	}
	observability.AddSpanAttributes(ctx, attribute.String("provider.id", id))

	s.store.markLoading(id)
	defer s.store.releaseLoading(id)

	if gerr := s.gateway.UpdateProvider(ctx, id, input); gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to update provider")
		return err
	}

	s.log.Info().Str("provider_id", id).Msg("provider updated")
	if rerr := s.refreshAfterMutation(ctx, true); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after update")
		return err
	}
	return nil
}

// UpdateProviderConfig replaces a provider's connection settings. The
// provider is flagged as loading for the duration.
func (s *Service) UpdateProviderConfig(ctx context.Context, id string, cfg Config) (err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.UpdateProviderConfig")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationUpdateConfig, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	id = strings.TrimSpace(id)
	if id == "" {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "provider id is required", nil, "b4a91f02-6e3d-4c57-8a2b-e95d10c3748f")
		observability.RecordError(ctx, err)
		return err
	}
	observability.AddSpanAttributes(ctx, attribute.String("provider.id", id))

	s.store.markLoading(id)
	defer s.store.releaseLoading(id)

	if gerr := s.gateway.UpdateProviderConfig(ctx, id, cfg); gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to update provider config")
		return err
	}

	s.log.Info().Str("provider_id", id).Msg("provider config updated")
	if rerr := s.refreshAfterMutation(ctx, true); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after config update")
		return err
	}
	return nil
}

// UpdateProviderSort reorders the provider list. Every item must carry a
// provider id; the remote expects the full ordering in one call.
func (s *Service) UpdateProviderSort(ctx context.Context, items []SortItem) (err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.UpdateProviderSort")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationUpdateSort, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	normalized := make([]SortItem, len(items))
	copy(normalized, items)
	for i := range normalized {
		normalized[i].ID = strings.TrimSpace(normalized[i].ID)
	}
	if verr := s.validate.Struct(sortRequest{Items: normalized}); verr != nil {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("invalid sort items: %v", verr), verr, "d1b82f64-3c09-47ae-92d5-8ba4e07c61f3")
		observability.RecordError(ctx, err)
		return err
	}
	observability.AddSpanAttributes(ctx, attribute.Int("provider.sort_count", len(normalized)))

	if gerr := s.gateway.UpdateProviderSort(ctx, normalized); gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to update provider sort")
		return err
	}

	s.log.Info().Int("count", len(normalized)).Msg("provider sort updated")
	if rerr := s.refreshAfterMutation(ctx, false); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after sort update")
		return err
	}
	return nil
}

// ToggleProviderEnabled switches a provider on or off. The provider is
// flagged as loading for the duration.
func (s *Service) ToggleProviderEnabled(ctx context.Context, id string, enabled bool) (err error) {
	ctx, span := observability.StartSpan(ctx, serviceName, "Service.ToggleProviderEnabled")
	defer span.End()
	ctx = s.ensureRequestID(ctx)
	startTime := time.Now()
	defer func() {
		metrics.RecordMutation(mutationToggleEnabled, mutationStatus(err), time.Since(startTime).Seconds())
	}()

	id = strings.TrimSpace(id)
	if id == "" {
		err = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "provider id is required", nil, "e5d03b78-14af-42c6-9b81-f2a6c59e0d34")
		observability.RecordError(ctx, err)
		return err
	}
	observability.AddSpanAttributes(ctx,
		attribute.String("provider.id", id),
		attribute.Bool("provider.enabled", enabled),
	)

	s.store.markLoading(id)
	defer s.store.releaseLoading(id)

	if gerr := s.gateway.ToggleProviderEnabled(ctx, id, enabled); gerr != nil {
		observability.RecordError(ctx, gerr)
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, gerr, "failed to toggle provider")
		return err
	}

	s.log.Info().Str("provider_id", id).Bool("enabled", enabled).Msg("provider toggled")
	if rerr := s.refreshAfterMutation(ctx, false); rerr != nil {
		err = platformerrors.AsError(ctx, platformerrors.LayerDomain, rerr, "failed to refresh caches after toggle")
		return err
	}
	return nil
}

// refreshAfterMutation re-fetches the caches a successful mutation staled.
// The provider list always changes and the runtime state is derived from it.
// Update-style mutations also touch fields shown on the active provider's
// detail, so those pass includeActiveDetail.
func (s *Service) refreshAfterMutation(ctx context.Context, includeActiveDetail bool) error {
	if err := s.providers.Invalidate(ctx); err != nil {
		return err
	}
	if err := s.runtime.Invalidate(ctx); err != nil {
		return err
	}
	if includeActiveDetail {
		if activeID := s.store.Snapshot().ActiveProviderID; activeID != "" {
			if err := s.details.Invalidate(ctx, activeID); err != nil {
				return err
			}
		}
	}
	observability.AddSpanEvent(ctx, "caches_refreshed")
	return nil
}

// ensureRequestID gives every operation a request id for log and error
// correlation unless the caller already set one.
func (s *Service) ensureRequestID(ctx context.Context) context.Context {
	if platformerrors.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return platformerrors.WithRequestID(ctx, uuid.NewString())
}

func mutationStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		return "invalid"
	default:
		return "error"
	}
}

type sortRequest struct {
	Items []SortItem `validate:"required,min=1,dive"`
}
