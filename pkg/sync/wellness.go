package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/MartinT518/apex-sync/pkg/domain/metrics"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

const dateLayout = "2006-01-02"

// DateRange expands an inclusive start/end pair into one date string per
// calendar day, ascending. An end before start yields an empty range.
func DateRange(startDate, endDate string) ([]string, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrInvalidDate, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrInvalidDate, endDate)
	}

	var dates []string
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		dates = append(dates, cur.Format(dateLayout))
	}
	return dates, nil
}

// SyncWellness fetches HRV, resting heart rate and sleep for every day in
// the inclusive range, strictly sequentially with a pacing delay between
// days. Every day yields exactly one entry: days whose fetches all failed
// are emitted with nil fields so the range stays gap-free. Auth and
// rate-limit failures abort the batch wherever they surface.
func SyncWellness(ctx context.Context, api garmin.API, startDate, endDate string, opts Options) (*WellnessBatch, error) {
	log := opts.logger()

	dates, err := DateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	log.Info("Fetching wellness data", "days", len(dates), "start", startDate, "end", endDate)

	entries := make([]WellnessDay, 0, len(dates))
	withData := 0
	for i, date := range dates {
		if i > 0 {
			opts.sleep(opts.ItemDelay)
		}

		entry, err := syncWellnessDay(ctx, api, date, opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if entry.HasData() {
			withData++
		}

		if (i+1)%5 == 0 {
			log.Info("Wellness progress", "done", i+1, "total", len(dates))
		}
	}

	log.Info("Fetched wellness data", "days", len(entries), "with_data", withData, "empty", len(entries)-withData)

	return &WellnessBatch{
		Success:         true,
		WellnessData:    entries,
		Count:           len(entries),
		EntriesWithData: withData,
	}, nil
}

// syncWellnessDay assembles one day's entry. Each upstream call is wrapped
// individually: a failure nils the corresponding field and the remaining
// metrics are still attempted. Only batch-fatal errors propagate.
func syncWellnessDay(ctx context.Context, api garmin.API, date string, opts Options) (WellnessDay, error) {
	log := opts.logger()
	entry := WellnessDay{Date: date}

	// Overnight HRV.
	if payload, err := api.HRVData(ctx, date); err != nil {
		if batchFatal(err) {
			return entry, err
		}
		log.Warn("HRV fetch failed", "date", date, "error", err)
	} else if ex := metrics.Resolve(metrics.HRVCandidates(payload)); ex.Found {
		v := ex.Value
		entry.HRV = &v
		log.Debug("HRV extracted", "date", date, "hrv", v, "source", ex.Source)
	} else {
		log.Debug("HRV response did not match any known shape", "date", date)
	}

	// Resting heart rate: dedicated endpoint first, daily heart rates
	// second, sleep payload as the last hop (checked after the sleep
	// fetch below to avoid a duplicate call).
	var rhr metrics.Extraction
	if payload, err := api.RHRDay(ctx, date); err != nil {
		if batchFatal(err) {
			return entry, err
		}
		log.Debug("rhr-day fetch failed, trying daily heart rates", "date", date, "error", err)
	} else {
		rhr = metrics.Resolve(metrics.RHRDayCandidates(payload))
	}
	if !rhr.Found {
		if payload, err := api.HeartRates(ctx, date); err != nil {
			if batchFatal(err) {
				return entry, err
			}
			log.Debug("daily heart-rates fetch failed", "date", date, "error", err)
		} else {
			rhr = metrics.Resolve(metrics.HeartRatesRHRCandidates(payload))
		}
	}
	if rhr.Found {
		v := rhr.Value
		entry.RHR = &v
		log.Debug("RHR extracted", "date", date, "rhr", v, "source", rhr.Source)
	}

	// Sleep duration and score.
	if payload, err := api.SleepData(ctx, date); err != nil {
		if batchFatal(err) {
			return entry, err
		}
		log.Warn("Sleep data fetch failed", "date", date, "error", err)
	} else {
		if ex := metrics.Resolve(metrics.SleepSecondsCandidates(payload)); ex.Found {
			v := int(ex.Value)
			entry.SleepSeconds = &v
		}
		if ex := metrics.Resolve(metrics.SleepScoreCandidates(payload)); ex.Found {
			v := int(ex.Value)
			entry.SleepScore = &v
		}
		if entry.RHR == nil {
			if ex := metrics.Resolve(metrics.SleepRHRCandidates(payload)); ex.Found {
				v := ex.Value
				entry.RHR = &v
				log.Debug("RHR extracted from sleep data", "date", date, "rhr", v)
			}
		}
	}

	return entry, nil
}
