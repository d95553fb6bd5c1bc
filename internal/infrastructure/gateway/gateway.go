// Package gateway implements the remote provider-configuration API client.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/janhq/provider-sync/internal/config"
	"github.com/janhq/provider-sync/internal/domain/provider"
	"github.com/janhq/provider-sync/internal/infrastructure/metrics"
	"github.com/janhq/provider-sync/internal/utils/httpclients"
	"github.com/janhq/provider-sync/internal/utils/platformerrors"
)

const clientName = "provider-api"

// Client talks to the provider API over HTTP and implements
// provider.Gateway.
type Client struct {
	client  *resty.Client
	baseURL string
	name    string
}

type providersResponse struct {
	Object string              `json:"object"`
	Data   []provider.Provider `json:"data"`
}

type sortPayload struct {
	Items []provider.SortItem `json:"items"`
}

type togglePayload struct {
	Enabled bool `json:"enabled"`
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	client := httpclients.NewClient(clientName)
	client.SetTimeout(cfg.HTTPTimeout)
	client.SetRetryCount(0)

	if key := strings.TrimSpace(cfg.ProviderAPIKey); key != "" && strings.ToLower(key) != "none" {
		client.SetHeader("Authorization", fmt.Sprintf("Bearer %s", key))
	}

	log.Debug().
		Str("base_url", cfg.ProviderAPIBaseURL).
		Msg("provider api client created")

	return &Client{
		client:  client,
		baseURL: normalizeBaseURL(cfg.ProviderAPIBaseURL),
		name:    clientName,
	}
}

func (c *Client) FetchProviders(ctx context.Context) ([]provider.Provider, error) {
	var respBody providersResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&respBody).
		Get(c.endpoint("/v1/providers"))
	c.record("fetch_providers", resp, err)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "list providers request failed")
	}
	return respBody.Data, nil
}

func (c *Client) FetchProviderDetail(ctx context.Context, id string) (*provider.ProviderDetail, error) {
	var respBody provider.ProviderDetail
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&respBody).
		Get(c.endpoint("/v1/providers/" + url.PathEscape(id)))
	c.record("fetch_provider_detail", resp, err)
	if err != nil {
		return nil, err
	}
	if statusCode(resp) == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "get provider request failed")
	}
	return &respBody, nil
}

func (c *Client) FetchRuntimeState(ctx context.Context) (*provider.RuntimeState, error) {
	var respBody provider.RuntimeState
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&respBody).
		Get(c.endpoint("/v1/providers/runtime-state"))
	c.record("fetch_runtime_state", resp, err)
	if err != nil {
		return nil, err
	}
	if statusCode(resp) == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "get runtime state request failed")
	}
	return &respBody, nil
}

func (c *Client) CreateProvider(ctx context.Context, input provider.CreateProviderInput) (*provider.ProviderDetail, error) {
	var respBody provider.ProviderDetail
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&respBody).
		Post(c.endpoint("/v1/providers"))
	c.record("create_provider", resp, err)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "create provider request failed")
	}
	return &respBody, nil
}

func (c *Client) DeleteProvider(ctx context.Context, id string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(c.endpoint("/v1/providers/" + url.PathEscape(id)))
	c.record("delete_provider", resp, err)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "delete provider request failed")
	}
	return nil
}

func (c *Client) UpdateProvider(ctx context.Context, id string, input provider.UpdateProviderInput) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(input).
		Patch(c.endpoint("/v1/providers/" + url.PathEscape(id)))
	c.record("update_provider", resp, err)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "update provider request failed")
	}
	return nil
}

func (c *Client) UpdateProviderConfig(ctx context.Context, id string, cfg provider.Config) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(cfg).
		Put(c.endpoint("/v1/providers/" + url.PathEscape(id) + "/config"))
	c.record("update_provider_config", resp, err)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "update provider config request failed")
	}
	return nil
}

func (c *Client) UpdateProviderSort(ctx context.Context, items []provider.SortItem) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sortPayload{Items: items}).
		Put(c.endpoint("/v1/providers/sort"))
	c.record("update_provider_sort", resp, err)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "update provider sort request failed")
	}
	return nil
}

func (c *Client) ToggleProviderEnabled(ctx context.Context, id string, enabled bool) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(togglePayload{Enabled: enabled}).
		Put(c.endpoint("/v1/providers/" + url.PathEscape(id) + "/enabled"))
	c.record("toggle_provider_enabled", resp, err)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp, "toggle provider request failed")
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	if path == "" {
		return c.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func (c *Client) record(operation string, resp *resty.Response, err error) {
	if err != nil {
		metrics.RecordGatewayRequest(operation, "")
		return
	}
	metrics.RecordGatewayRequest(operation, strconv.Itoa(statusCode(resp)))
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	errType := platformerrors.ErrorTypeFromHTTPStatus(statusCode(resp))
	if resp == nil || resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerGateway, errType, fmt.Sprintf("%s with status %d", message, statusCode(resp)), nil, "6a2f8c4d-1e97-4b3a-8d52-c0f47e19a6b8")
	}
	defer resp.RawResponse.Body.Close()
	body, err := io.ReadAll(resp.RawResponse.Body)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerGateway, errType, fmt.Sprintf("%s with status %d", message, statusCode(resp)), nil, "f3c91a07-58bd-46e2-9a14-7d2e8b05c3f9")
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerGateway, errType, fmt.Sprintf("%s with status %d", message, statusCode(resp)), nil, "2b7e4f90-a613-4c58-b2d7-91f0a4e86c35")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerGateway, errType, fmt.Sprintf("%s with status %d: %s", message, statusCode(resp), trimmed), nil, "8d15c7a2-93f4-4e06-ae89-5b3c20d1f764")
}

func normalizeBaseURL(base string) string {
	trimmed := strings.TrimSpace(base)
	trimmed = strings.TrimRight(trimmed, "/")
	return trimmed
}

func statusCode(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}
