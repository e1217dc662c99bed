package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Schedule starts a cron timer that runs one batch cycle every
// intervalSeconds. SkipIfStillRunning serializes cycles: a run that outlasts
// the interval suppresses the next trigger instead of overlapping it.
func (p *Processor) Schedule(intervalSeconds int) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	if _, err := c.AddFunc(spec, func() {
		results := p.ProcessBatch(context.Background())
		if len(results) > 0 {
			total := 0.0
			for _, r := range results {
				total += r.CostUSD
			}
			log.Printf("[Batch] Processed %d files, total cost: $%.4f", len(results), total)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule batch processor: %w", err)
	}

	c.Start()
	log.Printf("[Batch] Processor scheduled to run every %d seconds", intervalSeconds)
	return c, nil
}
