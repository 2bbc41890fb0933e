// Package search indexes documents in Elasticsearch and builds the queries
// the search endpoints run.
package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	searchapp "github.com/datahub/backend/internal/application/search"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/datahub/backend/internal/infrastructure/metrics"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"
)

// Ensure Engine implements searchapp.Engine
var _ searchapp.Engine = (*Engine)(nil)

// DefaultBulkChunkSize is the number of actions per bulk request
const DefaultBulkChunkSize = 10000

const bulkTimeout = 300 * time.Second

// ErrBulkFailed is returned when a bulk request reports item failures
var ErrBulkFailed = errors.New("search bulk operation failed")

// ResponseError is a non-2xx response from Elasticsearch
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("elasticsearch returned %d: %s", e.StatusCode, e.Body)
}

// Engine runs searches and bulk operations against Elasticsearch
type Engine struct {
	client    *elasticsearch.Client
	prefix    string
	chunkSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithMetrics counts indexed documents
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTransport replaces the HTTP transport, used by tests
func WithTransport(t http.RoundTripper) func(*elasticsearch.Config) {
	return func(c *elasticsearch.Config) {
		c.Transport = t
	}
}

// NewClient creates an Elasticsearch client from configuration
func NewClient(cfg config.SearchConfig, opts ...func(*elasticsearch.Config)) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.URLs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	for _, opt := range opts {
		opt(&esCfg)
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

// NewEngine creates an Engine. Aliases are named "{prefix}-{app}".
func NewEngine(client *elasticsearch.Client, prefix string, chunkSize int, opts ...EngineOption) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultBulkChunkSize
	}
	e := &Engine{
		client:    client,
		prefix:    prefix,
		chunkSize: chunkSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Alias returns the alias reads and writes of an app go through
func (e *Engine) Alias(app string) string {
	return e.prefix + "-" + app
}

// IndexName returns the concrete index of an app. The suffix changes with the
// mapping so a new mapping gets a new index.
func (e *Engine) IndexName(app string) (string, error) {
	body, err := indexBody(app)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return e.Alias(app) + "-" + hex.EncodeToString(sum[:])[:8], nil
}

func indexBody(app string) ([]byte, error) {
	cfg, ok := appFor(app)
	if !ok {
		return nil, searchapp.ErrUnknownApp
	}
	return json.Marshal(map[string]any{
		"settings": indexSettings,
		"mappings": map[string]any{
			"dynamic":    false,
			"properties": cfg.properties,
		},
	})
}

// CreateIndex creates the index of an app with its alias unless the alias exists
func (e *Engine) CreateIndex(ctx context.Context, app string) error {
	alias := e.Alias(app)
	res, err := e.client.Indices.Exists([]string{alias}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", alias, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		e.logger.Info("Search index already exists", zap.String("alias", alias))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return &ResponseError{StatusCode: res.StatusCode}
	}

	name, err := e.IndexName(app)
	if err != nil {
		return err
	}
	body, err := indexBody(app)
	if err != nil {
		return err
	}
	var withAlias map[string]any
	if err := json.Unmarshal(body, &withAlias); err != nil {
		return err
	}
	withAlias["aliases"] = map[string]any{alias: map[string]any{}}
	payload, err := json.Marshal(withAlias)
	if err != nil {
		return err
	}

	res, err = e.client.Indices.Create(name,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}
	e.logger.Info("Created search index", zap.String("index", name), zap.String("alias", alias))
	return nil
}

// Index bulk indexes documents through the app's alias
func (e *Engine) Index(ctx context.Context, app string, docs []searchapp.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]esutil.BulkIndexerItem, 0, len(docs))
	for _, doc := range docs {
		doc[DocumentTypeField] = app
		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s document %s: %w", app, doc.ID(), err)
		}
		items = append(items, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID(),
			Body:       bytes.NewReader(body),
		})
	}
	failures, err := e.bulk(ctx, app, items, nil)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrBulkFailed, strings.Join(failures, "; "))
	}
	e.metrics.SearchDocumentsSynced(app, len(docs))
	return nil
}

// Delete bulk deletes documents. Documents that are already gone are ignored.
func (e *Engine) Delete(ctx context.Context, app string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	items := make([]esutil.BulkIndexerItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, esutil.BulkIndexerItem{Action: "delete", DocumentID: id})
	}
	ignore := func(res esutil.BulkIndexerResponseItem) bool {
		return res.Status == http.StatusNotFound
	}
	failures, err := e.bulk(ctx, app, items, ignore)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: errors during a bulk deletion: %s", ErrBulkFailed, strings.Join(failures, "; "))
	}
	return nil
}

// bulk sends items in requests of at most chunkSize actions and returns the
// failures not accepted by ignore
func (e *Engine) bulk(
	ctx context.Context,
	app string,
	items []esutil.BulkIndexerItem,
	ignore func(esutil.BulkIndexerResponseItem) bool,
) ([]string, error) {
	var (
		mu       sync.Mutex
		failures []string
	)
	onFailure := func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
		if err == nil && ignore != nil && ignore(res) {
			return
		}
		msg := fmt.Sprintf("%s %s: %d %s", item.Action, item.DocumentID, res.Status, res.Error.Reason)
		if err != nil {
			msg = fmt.Sprintf("%s %s: %v", item.Action, item.DocumentID, err)
		}
		mu.Lock()
		failures = append(failures, msg)
		mu.Unlock()
	}

	for start := 0; start < len(items); start += e.chunkSize {
		end := min(start+e.chunkSize, len(items))
		bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Client:     e.client,
			Index:      e.Alias(app),
			NumWorkers: 1,
			FlushBytes: 50 << 20,
			Timeout:    bulkTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
		}
		for _, item := range items[start:end] {
			item.OnFailure = onFailure
			if err := bi.Add(ctx, item); err != nil {
				_ = bi.Close(ctx)
				return nil, fmt.Errorf("failed to add bulk item: %w", err)
			}
		}
		if err := bi.Close(ctx); err != nil {
			return nil, fmt.Errorf("failed to flush bulk indexer: %w", err)
		}
		e.logger.Debug("Sent bulk chunk", zap.String("app", app), zap.Int("items", end-start))
	}
	return failures, nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type termsAggregation struct {
	Buckets []struct {
		Key      any   `json:"key"`
		DocCount int64 `json:"doc_count"`
	} `json:"buckets"`
}

func (a termsAggregation) counts() []searchapp.BucketCount {
	out := make([]searchapp.BucketCount, 0, len(a.Buckets))
	for _, b := range a.Buckets {
		out = append(out, searchapp.BucketCount{Key: fmt.Sprint(b.Key), Count: b.DocCount})
	}
	return out
}

// parseAggregation reads a terms aggregation, unwrapping a nested one
func parseAggregation(name string, raw json.RawMessage) ([]searchapp.BucketCount, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	if inner, ok := wrapper[name]; ok {
		raw = inner
	}
	var agg termsAggregation
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, err
	}
	return agg.counts(), nil
}

func (e *Engine) search(ctx context.Context, indices []string, body map[string]any) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(indices...),
		e.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError(res)
	}
	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &parsed, nil
}

func sources(res *searchResponse) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(res.Hits.Hits))
	for _, h := range res.Hits.Hits {
		out = append(out, h.Source)
	}
	return out
}

// Search runs a filtered search in one app
func (e *Engine) Search(ctx context.Context, app string, q searchapp.Query) (*searchapp.Result, error) {
	cfg, ok := appFor(app)
	if !ok {
		return nil, searchapp.ErrUnknownApp
	}
	res, err := e.search(ctx, []string{e.Alias(app)}, buildEntitySearch(cfg, q))
	if err != nil {
		return nil, err
	}

	result := &searchapp.Result{Count: res.Hits.Total.Value, Results: sources(res)}
	if len(res.Aggregations) > 0 {
		result.Aggregations = make(map[string][]searchapp.BucketCount, len(res.Aggregations))
		for name, raw := range res.Aggregations {
			counts, err := parseAggregation(name, raw)
			if err != nil {
				return nil, fmt.Errorf("failed to decode aggregation %s: %w", name, err)
			}
			result.Aggregations[name] = counts
		}
	}
	return result, nil
}

// BasicSearch searches every app's alias
func (e *Engine) BasicSearch(ctx context.Context, entity string, q searchapp.Query) (*searchapp.BasicResult, error) {
	if _, ok := appFor(entity); !ok {
		return nil, searchapp.ErrUnknownApp
	}
	var (
		indices []string
		fields  []string
		seen    = map[string]bool{}
	)
	for _, app := range searchapp.Apps() {
		indices = append(indices, e.Alias(app))
		cfg, _ := appFor(app)
		for _, f := range cfg.searchFields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}

	res, err := e.search(ctx, indices, buildBasicSearch(entity, fields, q))
	if err != nil {
		return nil, err
	}
	result := &searchapp.BasicResult{Count: res.Hits.Total.Value, Results: sources(res)}
	if raw, ok := res.Aggregations["count_by_type"]; ok {
		var agg termsAggregation
		if err := json.Unmarshal(raw, &agg); err != nil {
			return nil, fmt.Errorf("failed to decode aggregation count_by_type: %w", err)
		}
		result.Aggregations = agg.counts()
	}
	return result, nil
}

func responseError(res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &ResponseError{StatusCode: res.StatusCode, Body: string(body)}
}
