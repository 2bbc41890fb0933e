// Package metadata serves reference data and loads it from YAML fixtures
package metadata

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/datahub/backend/internal/domain/metadata"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ServiceQuestionsKey is the fixture key holding service questions
const ServiceQuestionsKey = "service-question"

// LoadResult summarises a fixture load
type LoadResult struct {
	Items     map[metadata.Kind]int
	Questions int
}

// Service handles reference data use cases
type Service struct {
	repo   metadata.Repository
	logger *zap.Logger
}

// NewService creates a Service
func NewService(repo metadata.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List lists enabled and disabled items of a kind ordered by name
func (s *Service) List(ctx context.Context, kind string) ([]metadata.Item, error) {
	k, err := metadata.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.FindAll(ctx, k)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []metadata.Item{}
	}
	metadata.SortByName(items)
	return items, nil
}

// Load upserts the items of a YAML fixture. The fixture maps each kind to a
// list of items, plus an optional list of service questions.
func (s *Service) Load(ctx context.Context, r io.Reader) (*LoadResult, error) {
	var doc map[string]yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse metadata fixture: %w", err)
	}

	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &LoadResult{Items: map[metadata.Kind]int{}}
	var questions []metadata.ServiceQuestion
	for _, key := range keys {
		node := doc[key]
		if key == ServiceQuestionsKey {
			if err := node.Decode(&questions); err != nil {
				return nil, fmt.Errorf("invalid %s entries: %w", key, err)
			}
			continue
		}
		kind, err := metadata.ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("unknown metadata kind %q", key)
		}
		var items []metadata.Item
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid %s entries: %w", key, err)
		}
		for i := range items {
			items[i].Kind = kind
		}
		if err := s.repo.Upsert(ctx, items); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		result.Items[kind] = len(items)
		s.logger.Info("Loaded metadata", zap.String("kind", key), zap.Int("count", len(items)))
	}

	if len(questions) > 0 {
		if err := s.repo.UpsertServiceQuestions(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to load service questions: %w", err)
		}
		result.Questions = len(questions)
	}
	return result, nil
}
