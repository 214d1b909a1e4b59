package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

const (
	pushPath   = "/api/sync/push"
	pullPath   = "/api/sync/pull"
	deletePath = "/api/sync/delete"
	pingPath   = "/api/ping"
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs the HTTP/REST implementation of
// [RemoteStore]. The base URL comes from adapterCfg.HTTPAddress, every
// request is bounded by adapterCfg.RequestTimeout, and when appCfg.HashKey
// is set pushes carry an HMAC of their collections.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, log *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	h := &httpRemoteStore{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hasher: utils.NewHasher(appCfg.HashKey),
		logger: log,
	}
	h.SetToken(appCfg.Token)

	return h, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpRemoteStore) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.token = strings.TrimSpace(token)
}

func (h *httpRemoteStore) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.token
}

// Push sends every collection of snapshot in a single POST.
func (h *httpRemoteStore) Push(ctx context.Context, snapshot models.Snapshot) error {
	req := models.PushRequest{Collections: snapshot}
	if h.hasher != nil {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("encode push collections: %w", err)
		}
		req.Hash = h.hasher.SumHex(payload)
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(pushPath)
	if err != nil {
		return fmt.Errorf("%w: push request: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}

// Pull fetches the remote snapshot. The body must be a JSON object; keys
// that are not known collections are ignored.
func (h *httpRemoteStore) Pull(ctx context.Context) (models.Snapshot, error) {
	resp, err := h.authedRequest(ctx).Get(pullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: pull request: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("%w: pull body is not an object", ErrMalformedResponse)
	}

	var fields map[string]json.RawMessage
	if err = json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode pull response: %w", ErrMalformedResponse, err)
	}

	snapshot := make(models.Snapshot, len(fields))
	for name, blob := range fields {
		c := models.Collection(name)
		if !c.Valid() {
			h.logger.Debug().Str("func", "httpRemoteStore.Pull").Str("field", name).Msg("ignoring unknown field")
			continue
		}
		snapshot[c] = blob
	}

	return snapshot, nil
}

func (h *httpRemoteStore) Delete(ctx context.Context, req models.DeleteRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(deletePath)
	if err != nil {
		return fmt.Errorf("%w: delete request: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(pingPath)
	if err != nil {
		return fmt.Errorf("%w: ping: %w", ErrNetwork, err)
	}

	return mapHTTPError(resp)
}

func (h *httpRemoteStore) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}
