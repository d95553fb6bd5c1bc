package provider

// Source tells where a provider definition came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceCustom  Source = "custom" // user-defined providers are always custom
)

// ModelTypeChat is the only model type surfaced in the chat model tree.
const ModelTypeChat = "chat"

// Provider is a list-level AI provider entry.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Enabled     bool   `json:"enabled"`
	Sort        int    `json:"sort"`
	Source      Source `json:"source"`
}

// Config holds the per-provider connection settings.
type Config struct {
	APIKey        string `json:"apiKey,omitempty"`
	BaseURL       string `json:"baseURL,omitempty"`
	FetchOnClient bool   `json:"fetchOnClient,omitempty"`
	CheckModel    string `json:"checkModel,omitempty"`
}

// ProviderDetail is the full view of a single provider.
type ProviderDetail struct {
	Provider
	Config Config `json:"config"`
}

// EnabledProvider is the runtime-state projection of an enabled provider.
type EnabledProvider struct {
	ID     string  `json:"id"`
	Name   *string `json:"name,omitempty"`
	Source Source  `json:"source,omitempty"`
	Logo   *string `json:"logo,omitempty"`
}

// EnabledModel is the runtime-state projection of an enabled model.
type EnabledModel struct {
	ID                  string          `json:"id"`
	ProviderID          string          `json:"providerId"`
	Type                string          `json:"type"`
	DisplayName         *string         `json:"displayName,omitempty"`
	Abilities           map[string]bool `json:"abilities,omitempty"`
	ContextWindowTokens *int            `json:"contextWindowTokens,omitempty"`
}

// RuntimeState is the aggregate the remote derives from all enabled providers.
// RuntimeConfig is keyed by provider id.
type RuntimeState struct {
	EnabledProviders []EnabledProvider `json:"enabledAiProviders"`
	EnabledModels    []EnabledModel    `json:"enabledAiModels"`
	RuntimeConfig    map[string]Config `json:"runtimeConfig,omitempty"`
}
