package fitstream

// SourceRawFitParse tags results that came from decoding the raw device
// recording, as opposed to summary-API-derived data. Downstream consumers
// use it to tell high-fidelity streams from smoothed ones.
const SourceRawFitParse = "raw_fit_parse"

// StreamResult is the decoded stream plus its length.
type StreamResult struct {
	Stream []SamplePoint `json:"stream"`
	Count  int           `json:"count"`
}

// Provenance identifies where a stream came from.
type Provenance struct {
	Source     string `json:"source"`
	ActivityID int64  `json:"activity_id"`
}

// Envelope is the JSON shape handed to callers of the raw-stream path.
type Envelope struct {
	Data     StreamResult `json:"data"`
	Metadata Provenance   `json:"metadata"`
}

// NewEnvelope wraps decoded points with raw-parse provenance for the given
// activity.
func NewEnvelope(points []SamplePoint, activityID int64) Envelope {
	if points == nil {
		points = []SamplePoint{}
	}
	return Envelope{
		Data:     StreamResult{Stream: points, Count: len(points)},
		Metadata: Provenance{Source: SourceRawFitParse, ActivityID: activityID},
	}
}
