package provider_test

import (
	"encoding/json"
	"testing"

	"github.com/janhq/provider-sync/internal/domain/provider"
	"github.com/janhq/provider-sync/internal/utils/ptr"
)

func TestBuildChatModelTree_NilState(t *testing.T) {
	if tree := provider.BuildChatModelTree(nil); tree != nil {
		t.Fatalf("expected nil tree for nil state, got %v", tree)
	}
}

func TestBuildChatModelTree_FallbacksAndDefaults(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1"},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "m1", ProviderID: "p1", Type: provider.ModelTypeChat},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree))
	}

	node := tree[0]
	if node.ID != "p1" {
		t.Errorf("node ID = %q, want %q", node.ID, "p1")
	}
	if node.Name != "p1" {
		t.Errorf("missing provider name should fall back to id, got %q", node.Name)
	}
	if len(node.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(node.Children))
	}

	card := node.Children[0]
	if card.ID != "m1" {
		t.Errorf("card ID = %q, want %q", card.ID, "m1")
	}
	if card.DisplayName != "" {
		t.Errorf("missing display name should fall back to empty string, got %q", card.DisplayName)
	}
	if card.Abilities == nil {
		t.Error("missing abilities should become an empty map, got nil")
	}
	if len(card.Abilities) != 0 {
		t.Errorf("expected empty abilities, got %v", card.Abilities)
	}
	if card.ContextWindowTokens != nil {
		t.Errorf("missing context window should stay nil, got %d", *card.ContextWindowTokens)
	}

	got, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	want := `[{"id":"p1","name":"p1","children":[{"id":"m1","displayName":"","abilities":{}}]}]`
	if string(got) != want {
		t.Errorf("tree JSON = %s, want %s", got, want)
	}
}

func TestBuildChatModelTree_FiltersNonChatModels(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1", Name: ptr.ToString("OpenAI")},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "gpt-4o", ProviderID: "p1", Type: provider.ModelTypeChat},
			{ID: "whisper-1", ProviderID: "p1", Type: "stt"},
			{ID: "dall-e-3", ProviderID: "p1", Type: "image"},
			{ID: "text-embedding-3-small", ProviderID: "p1", Type: "embedding"},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree))
	}
	if len(tree[0].Children) != 1 {
		t.Fatalf("expected only the chat model, got %d children", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != "gpt-4o" {
		t.Errorf("child = %q, want %q", tree[0].Children[0].ID, "gpt-4o")
	}
}

func TestBuildChatModelTree_GroupsByProviderInOrder(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "openai", Name: ptr.ToString("OpenAI")},
			{ID: "anthropic", Name: ptr.ToString("Anthropic")},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "claude-opus", ProviderID: "anthropic", Type: provider.ModelTypeChat, DisplayName: ptr.ToString("Claude Opus")},
			{ID: "gpt-4o", ProviderID: "openai", Type: provider.ModelTypeChat, DisplayName: ptr.ToString("GPT-4o"), ContextWindowTokens: ptr.ToInt(128000), Abilities: map[string]bool{"vision": true}},
			{ID: "gpt-4o-mini", ProviderID: "openai", Type: provider.ModelTypeChat, DisplayName: ptr.ToString("GPT-4o mini")},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(tree))
	}

	if tree[0].ID != "openai" || tree[1].ID != "anthropic" {
		t.Errorf("nodes must follow runtime-state provider order, got [%s %s]", tree[0].ID, tree[1].ID)
	}
	if tree[0].Name != "OpenAI" {
		t.Errorf("node name = %q, want %q", tree[0].Name, "OpenAI")
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("openai should hold 2 models, got %d", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != "gpt-4o" || tree[0].Children[1].ID != "gpt-4o-mini" {
		t.Errorf("model order within a provider must follow runtime-state order, got [%s %s]", tree[0].Children[0].ID, tree[0].Children[1].ID)
	}
	if got := tree[0].Children[0].ContextWindowTokens; got == nil || *got != 128000 {
		t.Errorf("context window not carried over, got %v", got)
	}
	if !tree[0].Children[0].Abilities["vision"] {
		t.Error("abilities not carried over")
	}
	if len(tree[1].Children) != 1 || tree[1].Children[0].DisplayName != "Claude Opus" {
		t.Errorf("anthropic children wrong: %+v", tree[1].Children)
	}
}

func TestBuildChatModelTree_DedupesModelIDsFirstWins(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1"},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "m1", ProviderID: "p1", Type: provider.ModelTypeChat, DisplayName: ptr.ToString("first")},
			{ID: "m1", ProviderID: "p1", Type: provider.ModelTypeChat, DisplayName: ptr.ToString("second")},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree[0].Children) != 1 {
		t.Fatalf("duplicate ids must collapse to one card, got %d", len(tree[0].Children))
	}
	if tree[0].Children[0].DisplayName != "first" {
		t.Errorf("first occurrence must win, got %q", tree[0].Children[0].DisplayName)
	}
}

func TestBuildChatModelTree_DedupesProviderEntriesFirstWins(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1", Name: ptr.ToString("first")},
			{ID: "p1", Name: ptr.ToString("second")},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "m1", ProviderID: "p1", Type: provider.ModelTypeChat},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 1 {
		t.Fatalf("duplicate provider entries must collapse to one node, got %d", len(tree))
	}
	if tree[0].Name != "first" {
		t.Errorf("first occurrence must win, got %q", tree[0].Name)
	}
	if len(tree[0].Children) != 1 {
		t.Errorf("expected the provider's models grouped once, got %d cards", len(tree[0].Children))
	}
}

func TestBuildChatModelTree_DropsModelsOfUnknownProviders(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1"},
		},
		EnabledModels: []provider.EnabledModel{
			{ID: "m1", ProviderID: "p1", Type: provider.ModelTypeChat},
			{ID: "stray", ProviderID: "p2", Type: provider.ModelTypeChat},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree))
	}
	for _, card := range tree[0].Children {
		if card.ID == "stray" {
			t.Error("model of a disabled provider must not appear in the tree")
		}
	}
}

func TestBuildChatModelTree_ProviderWithoutModelsGetsEmptyNode(t *testing.T) {
	state := &provider.RuntimeState{
		EnabledProviders: []provider.EnabledProvider{
			{ID: "p1", Name: ptr.ToString("Empty Provider")},
		},
	}

	tree := provider.BuildChatModelTree(state)
	if len(tree) != 1 {
		t.Fatalf("expected 1 node, got %d", len(tree))
	}
	if tree[0].Children == nil {
		t.Fatal("children must be an empty slice, not nil")
	}
	if len(tree[0].Children) != 0 {
		t.Fatalf("expected no children, got %d", len(tree[0].Children))
	}
}
