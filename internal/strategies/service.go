package strategies

import (
	"context"
	"fmt"
	"log/slog"
)

const MsgLoadFailed = "Failed to load strategies from file"

// Service resolves strategy lookups against a Store.
type Service struct {
	logger *slog.Logger
	store  Store
}

func NewService(log *slog.Logger, store Store) *Service {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		store = NewBundledStore()
	}
	return &Service{
		logger: log.With(slog.String("service", "strategies")),
		store:  store,
	}
}

// Resolve returns the focus pool of the named strategy, or the focus list of
// one of its industries when industry is non-empty. Strategy names match
// case-insensitively; industries match exactly. Every failure is reported
// in-band as a map carrying an "error" key.
func (s *Service) Resolve(ctx context.Context, strategyName string, industry *string) any {
	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("load strategies failed", slog.Any("error", err))
		return map[string]any{"error": MsgLoadFailed}
	}

	strategy, ok := doc.Find(strategyName)
	if !ok {
		s.logger.Debug("strategy not found", slog.String("strategy", strategyName))
		return map[string]any{
			"error":                fmt.Sprintf("Strategy '%s' not found", strategyName),
			"available_strategies": doc.Names(),
		}
	}

	if industry == nil || *industry == "" {
		return strategy.FocusPool
	}
	areas, ok := strategy.FocusPool.Lookup(*industry)
	if !ok {
		return map[string]any{
			"error":                fmt.Sprintf("Industry '%s' not found in this strategy", *industry),
			"available_industries": strategy.FocusPool.Industries(),
		}
	}
	if areas == nil {
		areas = []string{}
	}
	return areas
}
