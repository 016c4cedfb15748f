package sync

import (
	"context"

	"github.com/MartinT518/apex-sync/pkg/domain/metrics"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

// SyncActivities lists activities for the inclusive date range and
// normalizes each one. The listing is a single batch-scoped call; the
// per-activity detail object is fetched as a secondary, paced call only
// when the list-level item did not resolve a duration. Items without an
// identifier are skipped outright: an identifier-less activity is not a
// valid entity. A failed detail fetch degrades duration resolution but
// never drops the activity.
func SyncActivities(ctx context.Context, api garmin.API, startDate, endDate string, opts Options) (*ActivityBatch, error) {
	log := opts.logger()

	if _, err := DateRange(startDate, endDate); err != nil {
		return nil, err
	}

	items, err := api.ActivitiesByDate(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	log.Info("Found activities in date range", "count", len(items), "start", startDate, "end", endDate)

	records := make([]ActivityRecord, 0, len(items))
	for i, item := range items {
		id, ok := activityID(item)
		if !ok {
			log.Warn("Skipping activity without identifier")
			continue
		}

		// List-level summary wins; the detail fetch is a fallback.
		ex := metrics.Resolve(metrics.DurationCandidates(item, nil))

		var details map[string]any
		if !ex.Found {
			if i > 0 {
				opts.sleep(opts.ItemDelay)
			}
			d, derr := api.Activity(ctx, id)
			if derr != nil {
				if batchFatal(derr) {
					return nil, derr
				}
				log.Warn("Failed to fetch activity details", "activity_id", id, "error", derr)
			} else {
				details = d
				ex = metrics.Resolve(metrics.DurationCandidates(item, details))
			}
		}

		if ex.Found {
			log.Info("Extracted duration", "activity_id", id, "seconds", int(ex.Value), "source", ex.Source)
		} else {
			log.Warn("No valid duration found after checking all sources", "activity_id", id)
		}

		records = append(records, ActivityRecord{
			ActivityID:        id,
			ActivityName:      stringField(item, "activityName"),
			ActivityType:      activityTypeKey(item),
			StartTimeGMT:      stringPtrField(item, "startTimeGMT"),
			StartTimeLocal:    stringPtrField(item, "startTimeLocal"),
			DurationInSeconds: int(ex.Value),
			Details:           details,
		})
	}

	return &ActivityBatch{
		Success:    true,
		Activities: records,
		Count:      len(records),
	}, nil
}

// activityID pulls the upstream identifier out of a list item, tolerating
// the numeric representations JSON decoding produces.
func activityID(item map[string]any) (int64, bool) {
	switch v := item["activityId"].(type) {
	case float64:
		if v == 0 {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, v != 0
	case int:
		return int64(v), v != 0
	default:
		return 0, false
	}
}

// activityTypeKey extracts activityType.typeKey, defaulting to "running"
// when the sub-object is missing or malformed.
func activityTypeKey(item map[string]any) string {
	if obj, ok := item["activityType"].(map[string]any); ok {
		if key, ok := obj["typeKey"].(string); ok && key != "" {
			return key
		}
	}
	return "running"
}

func stringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func stringPtrField(item map[string]any, key string) *string {
	if s, ok := item[key].(string); ok {
		return &s
	}
	return nil
}
