package provider

import (
	"github.com/janhq/provider-sync/internal/utils/functional"
	"github.com/janhq/provider-sync/internal/utils/ptr"
)

// ChatModelCard is a single selectable chat model inside a provider node.
type ChatModelCard struct {
	ID                  string          `json:"id"`
	DisplayName         string          `json:"displayName"`
	ContextWindowTokens *int            `json:"contextWindowTokens,omitempty"`
	Abilities           map[string]bool `json:"abilities"`
}

// ChatModelNode groups the chat models of one enabled provider.
type ChatModelNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Children []ChatModelCard `json:"children"`
}

// BuildChatModelTree projects a runtime state onto the provider/model tree
// used by model pickers. The result is a pure function of the input: one node
// per enabled provider, in runtime-state order, holding that provider's chat
// models. Models whose provider is not enabled are dropped, duplicate model
// ids keep the first occurrence, and every enabled provider gets a node even
// when it has no chat models.
func BuildChatModelTree(state *RuntimeState) []ChatModelNode {
	if state == nil {
		return nil
	}

	chatModels := functional.Filter(state.EnabledModels, func(m EnabledModel) bool {
		return m.Type == ModelTypeChat
	})

	// Duplicate provider entries collapse into their first occurrence so the
	// tree holds exactly one node per distinct provider id.
	distinct := make([]EnabledProvider, 0, len(state.EnabledProviders))
	known := func(id string) bool {
		return functional.Any(distinct, func(p EnabledProvider) bool { return p.ID == id })
	}
	for _, p := range state.EnabledProviders {
		if known(p.ID) {
			continue
		}
		distinct = append(distinct, p)
	}

	cards := make(map[string][]ChatModelCard, len(distinct))
	seen := make(map[string]map[string]bool, len(distinct))
	for _, m := range chatModels {
		if !known(m.ProviderID) {
			continue
		}
		if seen[m.ProviderID][m.ID] {
			continue
		}
		if seen[m.ProviderID] == nil {
			seen[m.ProviderID] = make(map[string]bool)
		}
		seen[m.ProviderID][m.ID] = true
		cards[m.ProviderID] = append(cards[m.ProviderID], ChatModelCard{
			ID:                  m.ID,
			DisplayName:         ptr.FromString(m.DisplayName),
			ContextWindowTokens: m.ContextWindowTokens,
			Abilities:           normalizeAbilities(m.Abilities),
		})
	}

	return functional.Map(distinct, func(p EnabledProvider) ChatModelNode {
		name := p.ID
		if p.Name != nil && *p.Name != "" {
			name = *p.Name
		}
		children := cards[p.ID]
		if children == nil {
			children = []ChatModelCard{}
		}
		return ChatModelNode{
			ID:       p.ID,
			Name:     name,
			Children: children,
		}
	})
}

func normalizeAbilities(abilities map[string]bool) map[string]bool {
	if abilities == nil {
		return map[string]bool{}
	}
	return abilities
}
