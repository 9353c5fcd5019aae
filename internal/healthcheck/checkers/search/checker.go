package searchchecker

import (
	"context"
	"fmt"

	"github.com/memohai/websearch-mcp/internal/healthcheck"
	"github.com/memohai/websearch-mcp/internal/searchproviders"
)

const checkTypeSearchProvider = "search.provider"

// MetaLister describes the configured search providers.
type MetaLister interface {
	ListMeta() []searchproviders.ProviderMeta
}

// Checker reports which providers have credentials. It makes no upstream
// calls.
type Checker struct {
	providers MetaLister
}

func NewChecker(providers MetaLister) *Checker {
	return &Checker{providers: providers}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if c.providers == nil {
		return []healthcheck.CheckResult{}
	}
	metas := c.providers.ListMeta()
	results := make([]healthcheck.CheckResult, 0, len(metas))
	for _, meta := range metas {
		item := healthcheck.CheckResult{
			ID:      checkTypeSearchProvider + "." + meta.Provider,
			Type:    checkTypeSearchProvider,
			Status:  healthcheck.StatusOK,
			Summary: fmt.Sprintf("%s credentials are configured.", meta.DisplayName),
			Metadata: map[string]any{
				"endpoint":       meta.Endpoint,
				"credential_env": meta.CredentialEnv,
			},
		}
		if !meta.Configured {
			item.Status = healthcheck.StatusWarn
			item.Summary = fmt.Sprintf("%s credentials are missing.", meta.DisplayName)
			item.Detail = "set " + meta.CredentialEnv + " to enable this provider"
		}
		results = append(results, item)
	}
	return results
}
