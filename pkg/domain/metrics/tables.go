package metrics

// Priority tables for the metrics the sync drivers care about. Each table
// is plain data consumed by Resolve, so adding a new upstream fallback
// source is a data change, not new control flow.

// durationInnerKeys handles the object-shaped duration variant
// ({"totalSeconds": N}) seen on older activity-service responses.
var durationInnerKeys = []string{"totalSeconds"}

// DurationCandidates is the activity-duration cascade. The list-level
// summary item wins over the detail object; within each payload the order
// is duration, elapsedDuration, elapsedDurationInSeconds, then the
// summaryDTO sub-object. Pass details as nil when no detail fetch has
// happened yet; those candidates are skipped.
func DurationCandidates(activity, details map[string]any) []Candidate {
	return []Candidate{
		{Payload: activity, Path: []string{"duration"}, InnerKeys: durationInnerKeys},
		{Payload: activity, Path: []string{"elapsedDuration"}},
		{Payload: activity, Path: []string{"elapsedDurationInSeconds"}},
		{Payload: details, Path: []string{"duration"}, InnerKeys: durationInnerKeys, Label: "details.duration"},
		{Payload: details, Path: []string{"elapsedDuration"}, Label: "details.elapsedDuration"},
		{Payload: details, Path: []string{"elapsedDurationInSeconds"}, Label: "details.elapsedDurationInSeconds"},
		{Payload: details, Path: []string{"summaryDTO", "elapsedDuration"}, Label: "details.summaryDTO.elapsedDuration"},
		{Payload: details, Path: []string{"summaryDTO", "duration"}, Label: "details.summaryDTO.duration"},
	}
}

// HRVCandidates covers the shapes the hrv-service has been seen returning:
// a nested hrvSummary (or hrvSummaryDTO), flat fields, a nested hrv
// object, or a bare number.
func HRVCandidates(payload any) []Candidate {
	obj, _ := payload.(map[string]any)
	return []Candidate{
		{Payload: obj, Path: []string{"hrvSummary", "lastNightAvg"}},
		{Payload: obj, Path: []string{"hrvSummary", "avgOvernightHrv"}},
		{Payload: obj, Path: []string{"hrvSummaryDTO", "lastNightAvg"}},
		{Payload: obj, Path: []string{"hrvSummaryDTO", "avgOvernightHrv"}},
		{Payload: obj, Path: []string{"lastNightAvg"}},
		{Payload: obj, Path: []string{"avgOvernightHrv"}},
		{Payload: obj, Path: []string{"averageHrv"}},
		{Payload: obj, Path: []string{"overnightAvg"}},
		{Payload: obj, Path: []string{"hrv", "lastNightAvg"}},
		{Payload: obj, Path: []string{"hrv", "avgOvernightHrv"}},
		{Payload: payload, Label: "hrv"},
	}
}

// RHRDayCandidates reads the dedicated resting-heart-rate endpoint, which
// answers either with a bare number or a small object.
func RHRDayCandidates(payload any) []Candidate {
	obj, _ := payload.(map[string]any)
	return []Candidate{
		{Payload: payload, Label: "rhr"},
		{Payload: obj, Path: []string{"restingHeartRate"}},
		{Payload: obj, Path: []string{"rhr"}},
		{Payload: obj, Path: []string{"value"}},
	}
}

// HeartRatesRHRCandidates is the second hop of the RHR fallback chain: the
// daily heart-rate endpoint sometimes carries the resting value.
func HeartRatesRHRCandidates(payload map[string]any) []Candidate {
	return []Candidate{
		{Payload: payload, Path: []string{"restingHeartRate"}, Label: "heartRates.restingHeartRate"},
		{Payload: payload, Path: []string{"rhr"}, Label: "heartRates.rhr"},
		{Payload: payload, Path: []string{"resting_hr"}, Label: "heartRates.resting_hr"},
	}
}

// SleepRHRCandidates is the last hop of the RHR chain: sleep responses
// often include the overnight resting heart rate.
func SleepRHRCandidates(sleep map[string]any) []Candidate {
	return []Candidate{
		{Payload: sleep, Path: []string{"restingHeartRate"}, Label: "sleep.restingHeartRate"},
	}
}

// SleepSecondsCandidates reads total sleep time out of the daily sleep DTO.
func SleepSecondsCandidates(sleep map[string]any) []Candidate {
	return []Candidate{
		{Payload: sleep, Path: []string{"dailySleepDTO", "sleepTimeSeconds"}},
	}
}

// SleepScoreCandidates reads the overall sleep score out of the daily
// sleep DTO.
func SleepScoreCandidates(sleep map[string]any) []Candidate {
	return []Candidate{
		{Payload: sleep, Path: []string{"dailySleepDTO", "sleepScores", "overall", "value"}},
	}
}
