package orion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
)

// Tenancy headers sent on every request.
const (
	headerService     = "Fiware-Service"
	headerServicePath = "Fiware-ServicePath"
)

const (
	// defaultProbeTimeout bounds a health probe so a dead component cannot hang a status check.
	defaultProbeTimeout = 5 * time.Second

	// maxErrorBody caps how much of an error response is read into the error message.
	maxErrorBody = 4 << 10
)

// Client performs CRUD against the entity store's HTTP API.
//
// Every call is an outbound request; nothing is cached. Poll and tick
// requests carry no timeout of their own: callers bound them through ctx.
//
// Thread Safety: safe for concurrent use.
type Client struct {
	baseURL     string
	service     string
	servicePath string
	pageSize    int
	httpClient  *http.Client
}

// ListOption adjusts a List request.
type ListOption func(*listOptions)

type listOptions struct {
	keyValues bool
}

// KeyValues requests the simplified representation (options=keyValues).
// Values are wrapped back into attributes by their JSON shape.
func KeyValues() ListOption {
	return func(o *listOptions) { o.keyValues = true }
}

// New creates a client from configuration.
// httpClient may be nil, in which case a client without a global timeout is used.
func New(cfg config.OrionConfig, httpClient *http.Client) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("orion url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parsing orion url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/") + cfg.APIPrefix,
		service:     cfg.Service,
		servicePath: cfg.ServicePath,
		pageSize:    pageSize,
		httpClient:  httpClient,
	}, nil
}

// List returns every entity of the given type, paging through the result set.
//
// A transport failure is returned as an error wrapping ErrTransport; it is
// never reported as an empty list.
func (c *Client) List(ctx context.Context, entityType string, opts ...ListOption) ([]Entity, error) {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}

	var all []Entity
	for offset := 0; ; offset += c.pageSize {
		query := url.Values{}
		query.Set("type", entityType)
		query.Set("limit", strconv.Itoa(c.pageSize))
		query.Set("offset", strconv.Itoa(offset))
		if o.keyValues {
			query.Set("options", "keyValues")
		}

		var page []json.RawMessage
		if err := c.do(ctx, http.MethodGet, "/entities", query, nil, &page); err != nil {
			return nil, fmt.Errorf("listing %s: %w", entityType, err)
		}

		for _, raw := range page {
			e, err := decodeEntity(raw, o.keyValues)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", entityType, err)
			}
			all = append(all, e)
		}

		if len(page) < c.pageSize {
			break
		}
	}

	if all == nil {
		all = []Entity{}
	}
	return all, nil
}

// Get fetches one entity. A 404 is returned as ErrNotFound.
func (c *Client) Get(ctx context.Context, id, entityType string) (Entity, error) {
	query := url.Values{}
	if entityType != "" {
		query.Set("type", entityType)
	}

	var e Entity
	if err := c.do(ctx, http.MethodGet, "/entities/"+url.PathEscape(id), query, nil, &e); err != nil {
		return Entity{}, fmt.Errorf("getting %s: %w", id, err)
	}
	return e, nil
}

// Create stores a new entity. An existing id is returned as ErrConflict.
func (c *Client) Create(ctx context.Context, e Entity) error {
	if e.ID == "" || e.Type == "" {
		return ErrInvalidEntity
	}
	if err := c.do(ctx, http.MethodPost, "/entities", nil, e, nil); err != nil {
		return fmt.Errorf("creating %s: %w", e.ID, err)
	}
	return nil
}

// PatchAttributes updates the given attributes of an existing entity.
// Identity fields are stripped from the body. A missing entity is ErrNotFound.
func (c *Client) PatchAttributes(ctx context.Context, id string, attrs map[string]AttributeValue) error {
	body := withoutIdentity(attrs)
	if err := c.do(ctx, http.MethodPatch, "/entities/"+url.PathEscape(id)+"/attrs", nil, body, nil); err != nil {
		return fmt.Errorf("patching %s: %w", id, err)
	}
	return nil
}

// Delete removes an entity. A missing entity is ErrNotFound.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/entities/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

// Types returns the names of the entity types known to the store.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	query := url.Values{}
	query.Set("options", "values")

	var types []string
	if err := c.do(ctx, http.MethodGet, "/types", query, nil, &types); err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	return types, nil
}

// Probe reports whether target answers a HEAD request with a 2xx status
// within five seconds. It never returns an error; unreachable means false.
func (c *Client) Probe(ctx context.Context, target string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// do executes one request and decodes a JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrTransport, err)
	}
	req.Header.Set(headerService, c.service)
	req.Header.Set(headerServicePath, c.servicePath)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if err := statusError(method, path, resp); err != nil {
		return err
	}

	if out == nil {
		//nolint:errcheck // Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %w", ErrTransport, method, path, err)
	}
	return nil
}

// statusError maps a non-2xx response onto the package's sentinel errors.
func statusError(method, path string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readErrorDetail(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// The store answers 422 "Already Exists" for a duplicate id.
		return fmt.Errorf("%w: %s %s: %s", ErrConflict, method, path, detail)
	default:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrTransport, method, path, resp.StatusCode, detail)
	}
}

func readErrorDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	var body struct {
		Error       string `json:"error"`
		Description string `json:"description"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error + ": " + body.Description
	}
	return strings.TrimSpace(string(data))
}

func decodeEntity(raw json.RawMessage, keyValues bool) (Entity, error) {
	if keyValues {
		return decodeKeyValuesEntity(raw)
	}
	var e Entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entity{}, err
	}
	return e, nil
}
