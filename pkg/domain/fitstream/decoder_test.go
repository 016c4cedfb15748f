package fitstream

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

var testStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// buildFitFile encodes a minimal activity FIT file containing the given
// record messages.
func buildFitFile(t *testing.T, records ...*mesgdef.Record) []byte {
	t.Helper()

	fit := &proto.FIT{}
	fileID := mesgdef.NewFileId(nil).
		SetType(typedef.FileActivity).
		SetManufacturer(typedef.ManufacturerDevelopment).
		SetProduct(1).
		SetTimeCreated(testStart)
	fit.Messages = append(fit.Messages, fileID.ToMesg(nil))
	for _, rec := range records {
		fit.Messages = append(fit.Messages, rec.ToMesg(nil))
	}

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(fit); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// zipArchive wraps named payloads into an in-memory ZIP.
func zipArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeFullRecord(t *testing.T) {
	rec := mesgdef.NewRecord(nil).
		SetTimestamp(testStart).
		SetHeartRate(142).
		SetCadence(86).
		SetSpeed(3500).    // mm/s
		SetDistance(12345) // cm
	archive := zipArchive(t, map[string][]byte{"21583826023_ACTIVITY.fit": buildFitFile(t, rec)})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}

	p := points[0]
	if p.Timestamp == nil || *p.Timestamp != "2025-06-01T08:00:00Z" {
		t.Errorf("timestamp = %v, want 2025-06-01T08:00:00Z", p.Timestamp)
	}
	if p.HeartRate == nil || *p.HeartRate != 142 {
		t.Errorf("heart_rate = %v, want 142", p.HeartRate)
	}
	if p.Cadence == nil || *p.Cadence != 86 {
		t.Errorf("cadence = %v, want 86", p.Cadence)
	}
	if p.Speed == nil || *p.Speed != 3.5 {
		t.Errorf("speed = %v, want 3.5 m/s", p.Speed)
	}
	if p.Distance == nil || *p.Distance != 123.45 {
		t.Errorf("distance = %v, want 123.45 m", p.Distance)
	}
}

func TestDecodePartialRecordKeepsPresentFields(t *testing.T) {
	// Heart rate only; the other sensor fields stay at their invalid
	// sentinels and must come back nil, not zero.
	rec := mesgdef.NewRecord(nil).
		SetTimestamp(testStart).
		SetHeartRate(95)
	archive := zipArchive(t, map[string][]byte{"a.fit": buildFitFile(t, rec)})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}

	p := points[0]
	if p.HeartRate == nil || *p.HeartRate != 95 {
		t.Errorf("heart_rate = %v, want 95", p.HeartRate)
	}
	if p.Cadence != nil || p.Speed != nil || p.Distance != nil {
		t.Errorf("absent fields populated: %+v", p)
	}
}

func TestDecodePreservesRecordOrder(t *testing.T) {
	recs := make([]*mesgdef.Record, 5)
	for i := range recs {
		recs[i] = mesgdef.NewRecord(nil).
			SetTimestamp(testStart.Add(time.Duration(i) * time.Second)).
			SetHeartRate(uint8(100 + i))
	}
	archive := zipArchive(t, map[string][]byte{"a.fit": buildFitFile(t, recs...)})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("got %d points, want 5", len(points))
	}
	for i, p := range points {
		if p.HeartRate == nil || *p.HeartRate != 100+i {
			t.Errorf("point %d heart_rate = %v, want %d", i, p.HeartRate, 100+i)
		}
	}
}

func TestDecodeZeroIsAValidReading(t *testing.T) {
	rec := mesgdef.NewRecord(nil).
		SetTimestamp(testStart).
		SetCadence(0)
	archive := zipArchive(t, map[string][]byte{"a.fit": buildFitFile(t, rec)})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Cadence == nil || *points[0].Cadence != 0 {
		t.Errorf("cadence = %v, want explicit 0", points[0].Cadence)
	}
}

func TestDecodeNoFitEntry(t *testing.T) {
	archive := zipArchive(t, map[string][]byte{"readme.txt": []byte("nothing here")})

	_, err := Decode(archive)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if derr.Kind != NoSensorFile {
		t.Errorf("kind = %s, want %s", derr.Kind, NoSensorFile)
	}
}

func TestDecodeUppercaseExtension(t *testing.T) {
	archive := zipArchive(t, map[string][]byte{
		"21583826023_ACTIVITY.FIT": buildFitFile(t, mesgdef.NewRecord(nil).SetTimestamp(testStart).SetHeartRate(120)),
	})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("got %d points, want 1", len(points))
	}
}

func TestDecodeCorruptArchive(t *testing.T) {
	_, err := Decode([]byte("definitely not a zip file"))
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if derr.Kind != BadArchive {
		t.Errorf("kind = %s, want %s", derr.Kind, BadArchive)
	}
}

func TestDecodeCorruptStream(t *testing.T) {
	archive := zipArchive(t, map[string][]byte{"a.fit": []byte("not a fit payload")})

	_, err := Decode(archive)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if derr.Kind != BadStream {
		t.Errorf("kind = %s, want %s", derr.Kind, BadStream)
	}
}

func TestDecodeEmptyStreamYieldsNoPoints(t *testing.T) {
	archive := zipArchive(t, map[string][]byte{"a.fit": buildFitFile(t)})

	points, err := Decode(archive)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("got %d points, want 0", len(points))
	}
}

func TestNewEnvelope(t *testing.T) {
	hr := 120
	env := NewEnvelope([]SamplePoint{{HeartRate: &hr}}, 987654)
	if env.Data.Count != 1 || len(env.Data.Stream) != 1 {
		t.Errorf("count = %d, stream len = %d, want 1/1", env.Data.Count, len(env.Data.Stream))
	}
	if env.Metadata.Source != SourceRawFitParse {
		t.Errorf("source = %q, want %q", env.Metadata.Source, SourceRawFitParse)
	}
	if env.Metadata.ActivityID != 987654 {
		t.Errorf("activity_id = %d, want 987654", env.Metadata.ActivityID)
	}

	empty := NewEnvelope(nil, 1)
	if empty.Data.Stream == nil {
		t.Error("nil points should serialize as an empty array, not null")
	}
	if empty.Data.Count != 0 {
		t.Errorf("count = %d, want 0", empty.Data.Count)
	}
}
