// Package fitstream extracts raw per-sample biometric records from the FIT
// archive Garmin serves as an activity's "original" download. The point of
// going to the raw file is fidelity: the summary API smooths and
// interpolates cadence/speed streams, the device recording does not. The
// decoder therefore never resamples, reorders or fills gaps — a field that
// is missing in the record stays missing in the output.
package fitstream

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
)

// SamplePoint is one decoded record message, restricted to the five fields
// the application tracks. Pointer fields distinguish "absent" from a true
// zero reading; zero is a valid sensor value.
type SamplePoint struct {
	Timestamp *string  `json:"timestamp,omitempty"`
	HeartRate *int     `json:"heart_rate,omitempty"`
	Cadence   *int     `json:"cadence,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
}

// ErrorKind classifies decode failures.
type ErrorKind string

const (
	// NoSensorFile: the archive opened fine but contains no .fit entry.
	NoSensorFile ErrorKind = "NO_SENSOR_FILE"
	// BadArchive: the bytes are not a readable ZIP container.
	BadArchive ErrorKind = "BAD_ARCHIVE"
	// BadStream: the .fit entry exists but its record stream is corrupt.
	BadStream ErrorKind = "BAD_STREAM"
)

// DecodeError is returned for any decode failure, scoped to the single
// request that triggered it.
type DecodeError struct {
	Kind ErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fit stream decode (%s): %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode unpacks a ZIP archive held in memory, locates the first entry
// whose name ends in ".fit" (case-insensitive) and decodes its record
// messages into sample points, in physical record order. Other message
// types in the stream (device info, sessions, laps) are out of scope here
// and skipped. A record contributing none of the tracked fields is dropped
// rather than emitted empty.
func Decode(archive []byte) ([]SamplePoint, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, &DecodeError{Kind: BadArchive, Err: err}
	}

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".fit") {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, &DecodeError{Kind: NoSensorFile, Err: fmt.Errorf("no .fit entry in archive (%d entries)", len(zr.File))}
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, &DecodeError{Kind: BadArchive, Err: fmt.Errorf("open %s: %w", entry.Name, err)}
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, &DecodeError{Kind: BadArchive, Err: fmt.Errorf("read %s: %w", entry.Name, err)}
	}

	return decodeStream(data)
}

func decodeStream(data []byte) ([]SamplePoint, error) {
	dec := decoder.New(bytes.NewReader(data))

	var points []SamplePoint
	for dec.Next() {
		fitData, err := dec.Decode()
		if err != nil {
			return nil, &DecodeError{Kind: BadStream, Err: err}
		}

		for i := range fitData.Messages {
			msg := &fitData.Messages[i]
			if msg.Num != typedef.MesgNumRecord {
				continue
			}
			if p, ok := samplePoint(mesgdef.NewRecord(msg)); ok {
				points = append(points, p)
			}
		}
	}

	return points, nil
}

// samplePoint copies the tracked fields out of a record message, honoring
// the FIT invalid sentinels (0xFF for uint8 fields, 0xFFFF/0xFFFFFFFF for
// the wider ones). Speed arrives as mm/s and distance as cm; both are
// converted to SI base units the way the rest of the pipeline expects.
func samplePoint(rec *mesgdef.Record) (SamplePoint, bool) {
	var p SamplePoint
	populated := false

	if !rec.Timestamp.IsZero() {
		ts := rec.Timestamp.UTC().Format(time.RFC3339)
		p.Timestamp = &ts
		populated = true
	}

	if rec.HeartRate != 0xFF {
		hr := int(rec.HeartRate)
		p.HeartRate = &hr
		populated = true
	}

	if rec.Cadence != 0xFF {
		cad := int(rec.Cadence)
		p.Cadence = &cad
		populated = true
	}

	if rec.Speed != 0xFFFF {
		spd := float64(rec.Speed) / 1000
		p.Speed = &spd
		populated = true
	}

	if rec.Distance != math.MaxUint32 {
		dist := float64(rec.Distance) / 100
		p.Distance = &dist
		populated = true
	}

	return p, populated
}
