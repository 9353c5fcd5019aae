package strategychecker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memohai/websearch-mcp/internal/healthcheck"
	"github.com/memohai/websearch-mcp/internal/strategies"
)

const checkTypeStrategyDocument = "strategies.document"

// Checker loads the strategy document the same way get_strategy does.
type Checker struct {
	logger *slog.Logger
	store  strategies.Store
}

func NewChecker(log *slog.Logger, store strategies.Store) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger: log.With(slog.String("checker", "healthcheck_strategies")),
		store:  store,
	}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	item := healthcheck.CheckResult{
		ID:   checkTypeStrategyDocument,
		Type: checkTypeStrategyDocument,
	}
	if c.store == nil {
		item.Status = healthcheck.StatusWarn
		item.Summary = "Strategy store is not available."
		return []healthcheck.CheckResult{item}
	}
	doc, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("strategies healthcheck load failed", slog.Any("error", err))
		item.Status = healthcheck.StatusError
		item.Summary = "Strategy document cannot be loaded."
		item.Detail = err.Error()
		return []healthcheck.CheckResult{item}
	}
	names := doc.Names()
	item.Status = healthcheck.StatusOK
	item.Summary = fmt.Sprintf("Strategy document loaded (%d strategies).", len(names))
	item.Metadata = map[string]any{"strategies": names}
	if fs, ok := c.store.(*strategies.FileStore); ok {
		item.Metadata["path"] = fs.Path()
	}
	if len(names) == 0 {
		item.Status = healthcheck.StatusWarn
		item.Summary = "Strategy document has no strategies."
	}
	return []healthcheck.CheckResult{item}
}
