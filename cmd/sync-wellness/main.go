// Command sync-wellness fetches per-day wellness data (overnight HRV,
// resting heart rate, sleep) for an inclusive date range and prints one
// JSON batch document to stdout.
//
// Usage: sync-wellness <start-date> <end-date>
package main

import (
	"context"
	"os"

	"github.com/MartinT518/apex-sync/pkg/framework"
	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
	"github.com/MartinT518/apex-sync/pkg/sync"
)

const usage = "usage: sync-wellness <start-date> <end-date> (dates as YYYY-MM-DD)"

func main() {
	os.Exit(framework.RunDateRange("sync-wellness", usage, os.Args[1:], run))
}

func run(ctx context.Context, rc *framework.RunContext, startDate, endDate string) (any, error) {
	tokenURL := rc.Config.TokenURL
	if tokenURL == "" {
		tokenURL = garmin.DefaultTokenURL
	}
	source, err := oauth.NewFileTokenSource(rc.Config.TokenDir, tokenURL)
	if err != nil {
		return nil, err
	}

	return sync.SyncWellness(ctx, garmin.NewClient(source), startDate, endDate, sync.Options{
		ItemDelay: rc.Config.WellnessDelay,
		Logger:    rc.Logger,
	})
}
