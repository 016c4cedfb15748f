// Command fit-stream extracts the raw per-sample sensor stream from an
// activity's original FIT recording and prints one JSON envelope to
// stdout. The source is either the Garmin download service (by activity
// ID) or a local ZIP archive.
//
// Usage:
//
//	fit-stream <activity-id>
//	fit-stream -file recording.zip [activity-id]
package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/MartinT518/apex-sync/pkg/domain/fitstream"
	"github.com/MartinT518/apex-sync/pkg/framework"
	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

func main() {
	os.Exit(run())
}

func run() int {
	rc, flush := framework.Setup("fit-stream")
	defer flush()

	fs := flag.NewFlagSet("fit-stream", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "read the FIT archive from a local ZIP instead of downloading")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return framework.EmitInvalidArgs(rc, "usage: fit-stream [-file archive.zip] <activity-id>")
	}

	var activityID int64
	if fs.NArg() > 0 {
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil || id <= 0 {
			return framework.EmitInvalidArgs(rc, "activity ID must be a positive integer, got: "+fs.Arg(0))
		}
		activityID = id
	}
	if *file == "" && activityID == 0 {
		return framework.EmitInvalidArgs(rc, "usage: fit-stream [-file archive.zip] <activity-id>")
	}

	archive, err := loadArchive(rc, *file, activityID)
	if err != nil {
		return framework.EmitError(rc, err)
	}

	points, err := fitstream.Decode(archive)
	if err != nil {
		rc.Logger.Error("FIT decode failed", "activity_id", activityID, "error", err)
		return framework.EmitError(rc, err)
	}

	rc.Logger.Info("Decoded sensor stream", "activity_id", activityID, "points", len(points))
	return framework.Emit(rc, fitstream.NewEnvelope(points, activityID))
}

func loadArchive(rc *framework.RunContext, file string, activityID int64) ([]byte, error) {
	if file != "" {
		rc.Logger.Info("Reading FIT archive from file", "path", file)
		return os.ReadFile(file)
	}

	tokenURL := rc.Config.TokenURL
	if tokenURL == "" {
		tokenURL = garmin.DefaultTokenURL
	}
	source, err := oauth.NewFileTokenSource(rc.Config.TokenDir, tokenURL)
	if err != nil {
		return nil, err
	}

	rc.Logger.Info("Downloading original recording", "activity_id", activityID)
	return garmin.NewClient(source).DownloadOriginal(context.Background(), activityID)
}
