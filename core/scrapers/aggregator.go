// ABOUTME: Aggregator merges adapter outputs into one unordered collection
// ABOUTME: Invokes each enabled scraper sequentially and logs per-source counts

package scrapers

import (
	"context"

	"blockchain-daily/core/domain"
	"blockchain-daily/core/interfaces"
)

// Aggregator fans out to every enabled source adapter and concatenates
// the results. No ordering guarantee between sources is relied upon
// downstream; the content filter sorts the union.
type Aggregator struct {
	scrapers []Scraper
	logger   interfaces.Logger
}

// NewAggregator creates an aggregator over the enabled scrapers.
func NewAggregator(scrapers []Scraper, logger interfaces.Logger) *Aggregator {
	return &Aggregator{
		scrapers: scrapers,
		logger:   logger,
	}
}

// FetchAll collects items from every source. Adapters handle their own
// failures, so one provider outage only shrinks the union.
func (a *Aggregator) FetchAll(ctx context.Context, lookbackHours int) []domain.NewsItem {
	var all []domain.NewsItem

	for _, scraper := range a.scrapers {
		items := scraper.Fetch(ctx, lookbackHours)
		a.logger.Info("Source fetch complete", map[string]interface{}{
			"source": scraper.Source(),
			"items":  len(items),
		})
		all = append(all, items...)
	}

	a.logger.Info("Total fetched", map[string]interface{}{"items": len(all)})
	return all
}
