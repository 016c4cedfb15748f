package metrics

import "testing"

func TestDurationCascadeListWinsOverDetails(t *testing.T) {
	activity := map[string]any{"duration": 120.0}
	details := map[string]any{"duration": 999.0}
	ex := Resolve(DurationCandidates(activity, details))
	if ex.Value != 120 || ex.Source != "duration" {
		t.Errorf("got (%v, %q), want (120, \"duration\")", ex.Value, ex.Source)
	}
}

func TestDurationCascadeFallsThroughToDetails(t *testing.T) {
	activity := map[string]any{"duration": 0.0}
	details := map[string]any{
		"summaryDTO": map[string]any{"elapsedDuration": 3600.0},
	}
	ex := Resolve(DurationCandidates(activity, details))
	if ex.Value != 3600 {
		t.Fatalf("got %+v, want 3600", ex)
	}
	if ex.Source != "details.summaryDTO.elapsedDuration" {
		t.Errorf("source = %q, want details.summaryDTO.elapsedDuration", ex.Source)
	}
}

func TestDurationCascadeObjectShape(t *testing.T) {
	activity := map[string]any{
		"duration": map[string]any{"totalSeconds": 45.0},
	}
	ex := Resolve(DurationCandidates(activity, nil))
	if ex.Value != 45 || ex.Source != "duration.totalSeconds" {
		t.Errorf("got (%v, %q), want (45, \"duration.totalSeconds\")", ex.Value, ex.Source)
	}
}

func TestDurationCascadeNilDetails(t *testing.T) {
	ex := Resolve(DurationCandidates(map[string]any{"activityId": 1.0}, nil))
	if ex.Found {
		t.Errorf("expected no match, got %+v", ex)
	}
	if ex.Source != SourceNone {
		t.Errorf("source = %q, want %q", ex.Source, SourceNone)
	}
}

func TestDurationCascadeElapsedVariants(t *testing.T) {
	ex := Resolve(DurationCandidates(map[string]any{"elapsedDurationInSeconds": 250.0}, nil))
	if ex.Value != 250 || ex.Source != "elapsedDurationInSeconds" {
		t.Errorf("got (%v, %q)", ex.Value, ex.Source)
	}

	ex = Resolve(DurationCandidates(nil, map[string]any{"elapsedDuration": 77.0}))
	if ex.Value != 77 || ex.Source != "details.elapsedDuration" {
		t.Errorf("got (%v, %q)", ex.Value, ex.Source)
	}
}

func TestHRVShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    float64
		source  string
	}{
		{"nested summary", map[string]any{"hrvSummary": map[string]any{"lastNightAvg": 55.0}}, 55, "hrvSummary.lastNightAvg"},
		{"summary DTO", map[string]any{"hrvSummaryDTO": map[string]any{"avgOvernightHrv": 48.0}}, 48, "hrvSummaryDTO.avgOvernightHrv"},
		{"flat field", map[string]any{"lastNightAvg": 62.0}, 62, "lastNightAvg"},
		{"nested hrv object", map[string]any{"hrv": map[string]any{"lastNightAvg": 44.0}}, 44, "hrv.lastNightAvg"},
		{"bare number", 51.0, 51, "hrv"},
	}
	for _, tc := range cases {
		ex := Resolve(HRVCandidates(tc.payload))
		if !ex.Found || ex.Value != tc.want || ex.Source != tc.source {
			t.Errorf("%s: got %+v, want (%v, %q)", tc.name, ex, tc.want, tc.source)
		}
	}
}

func TestHRVNoData(t *testing.T) {
	for _, payload := range []any{nil, map[string]any{}, map[string]any{"hrvSummary": map[string]any{}}} {
		if ex := Resolve(HRVCandidates(payload)); ex.Found {
			t.Errorf("payload %#v resolved, want absent", payload)
		}
	}
}

func TestRHRDayShapes(t *testing.T) {
	if ex := Resolve(RHRDayCandidates(44.0)); !ex.Found || ex.Value != 44 || ex.Source != "rhr" {
		t.Errorf("bare number: got %+v", ex)
	}
	if ex := Resolve(RHRDayCandidates(map[string]any{"restingHeartRate": 47.0})); ex.Value != 47 {
		t.Errorf("object shape: got %+v", ex)
	}
	if ex := Resolve(RHRDayCandidates(map[string]any{"value": 41.0})); ex.Value != 41 {
		t.Errorf("value key: got %+v", ex)
	}
}

func TestHeartRatesRHRFallback(t *testing.T) {
	ex := Resolve(HeartRatesRHRCandidates(map[string]any{"restingHeartRate": 43.0}))
	if ex.Value != 43 || ex.Source != "heartRates.restingHeartRate" {
		t.Errorf("got %+v", ex)
	}
}

func TestSleepTables(t *testing.T) {
	sleep := map[string]any{
		"dailySleepDTO": map[string]any{
			"sleepTimeSeconds": 27360.0,
			"sleepScores": map[string]any{
				"overall": map[string]any{"value": 82.0},
			},
		},
		"restingHeartRate": 45.0,
	}

	if ex := Resolve(SleepSecondsCandidates(sleep)); ex.Value != 27360 {
		t.Errorf("sleep seconds: got %+v", ex)
	}
	if ex := Resolve(SleepScoreCandidates(sleep)); ex.Value != 82 {
		t.Errorf("sleep score: got %+v", ex)
	}
	if ex := Resolve(SleepRHRCandidates(sleep)); ex.Value != 45 {
		t.Errorf("sleep RHR: got %+v", ex)
	}
}

func TestSleepZeroSecondsIsAbsent(t *testing.T) {
	sleep := map[string]any{
		"dailySleepDTO": map[string]any{"sleepTimeSeconds": 0.0},
	}
	if ex := Resolve(SleepSecondsCandidates(sleep)); ex.Found {
		t.Errorf("zero sleep resolved: %+v", ex)
	}
}
