package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/symposium-labs/engage/internal/config"
	"github.com/symposium-labs/engage/internal/metrics"
	"github.com/symposium-labs/engage/pkg/logger"
)

// Service runs queries against a Catalog.
type Service struct {
	catalog Catalog
	cfg     config.SearchConfig
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a new search service.
func NewService(catalog Catalog, cfg config.SearchConfig, log *logger.Logger) *Service {
	if cfg.MinQueryLength < 1 {
		cfg.MinQueryLength = 2
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = 10
	}
	if cfg.QuickLimit < 1 {
		cfg.QuickLimit = 5
	}
	if cfg.QuickPerTypeLimit < 1 {
		cfg.QuickPerTypeLimit = 3
	}
	if cfg.MaxSuggestions < 1 {
		cfg.MaxSuggestions = 5
	}

	return &Service{
		catalog: catalog,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

func emptyResponse() *Response {
	return &Response{
		Query:       "",
		Results:     map[ContentType][]Result{},
		Suggestions: []string{},
	}
}

// GlobalSearch searches one content type, or all of them concurrently, and
// returns per-type result lists sorted by descending relevance.
//
// Queries shorter than the minimum length (after trimming) return an empty
// response whose Query is "". Unknown content types return no results.
func (s *Service) GlobalSearch(ctx context.Context, query string, opts Options) (*Response, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < s.cfg.MinQueryLength {
		return emptyResponse(), nil
	}

	if opts.Type == "" {
		opts.Type = TypeAll
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	start := time.Now()

	if s.cfg.SimulatedLatency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.SimulatedLatency):
		}
	}

	var types []ContentType
	if opts.Type == TypeAll {
		types = adapterOrder
	} else if _, ok := adapters[opts.Type]; ok {
		types = []ContentType{opts.Type}
	}

	lists := make([][]Result, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, ct := range types {
		g.Go(func() error {
			actx := gctx
			if s.cfg.AdapterTimeout > 0 {
				var cancel context.CancelFunc
				actx, cancel = context.WithTimeout(gctx, s.cfg.AdapterTimeout)
				defer cancel()
			}

			found, err := adapters[ct](actx, s.catalog, trimmed)
			if err != nil {
				return fmt.Errorf("failed to search %s: %w", ct, err)
			}
			lists[i] = rank(found, limit)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.RecordSearch(string(opts.Type), "error", time.Since(start), 0)
		s.log.Error().
			Err(err).
			Str("query", trimmed).
			Str("type", string(opts.Type)).
			Msg("Search failed")
		return nil, err
	}

	results := make(map[ContentType][]Result, len(types))
	total := 0
	for i, ct := range types {
		results[ct] = lists[i]
		total += len(lists[i])
	}

	ts := s.now().UTC()
	resp := &Response{
		Query:        query,
		TotalResults: total,
		Results:      results,
		Suggestions:  s.suggestions(trimmed, types, results),
		Timestamp:    &ts,
	}

	metrics.RecordSearch(string(opts.Type), "success", time.Since(start), total)
	s.log.Debug().
		Str("query", trimmed).
		Str("type", string(opts.Type)).
		Int("total_results", total).
		Dur("duration", time.Since(start)).
		Msg("Search completed")

	return resp, nil
}

// QuickSearch runs GlobalSearch with a small per-type limit, flattens the
// groups and returns the top results across all types.
func (s *Service) QuickSearch(ctx context.Context, query string, limit int) (*QuickResponse, error) {
	if limit <= 0 {
		limit = s.cfg.QuickLimit
	}

	resp, err := s.GlobalSearch(ctx, query, Options{Type: TypeAll, Limit: s.cfg.QuickPerTypeLimit})
	if err != nil {
		return nil, err
	}

	var flat []Result
	for _, ct := range adapterOrder {
		flat = append(flat, resp.Results[ct]...)
	}
	flat = rank(flat, limit)

	return &QuickResponse{
		Query:        query,
		Results:      flat,
		TotalResults: len(flat),
	}, nil
}

// rank sorts by descending relevance, keeping source order for ties, and
// truncates to limit. It always returns a non-nil slice.
func rank(results []Result, limit int) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// suggestions collects tags and expertise from the returned results, in
// first-seen order, skipping the query itself.
func (s *Service) suggestions(query string, types []ContentType, results map[ContentType][]Result) []string {
	out := []string{}
	seen := make(map[string]struct{})

	add := func(values []string) {
		for _, v := range values {
			if len(out) >= s.cfg.MaxSuggestions {
				return
			}
			if _, dup := seen[v]; dup || strings.EqualFold(v, query) {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	for _, ct := range types {
		for _, r := range results[ct] {
			if tags, ok := r.Metadata["tags"].([]string); ok {
				add(tags)
			}
			if expertise, ok := r.Metadata["expertise"].([]string); ok {
				add(expertise)
			}
		}
	}
	return out
}
