// ABOUTME: Imports activity FIT files recorded by bike computers and watches.
// ABOUTME: Converts the first session message into a raw record for the normalizer.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/coach/internal/training"
	"github.com/tormoder/fit"
)

// ErrNoSession is returned for activity files without a session message.
var ErrNoSession = errors.New("activity file has no session message")

// DecodeFile reads a FIT file from disk. The file name becomes the activity name.
func DecodeFile(path string) (training.RawActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	raw, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	raw["activityName"] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return raw, nil
}

// Decode parses a FIT activity stream.
func Decode(r io.Reader) (training.RawActivity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, ErrNoSession
	}
	return FromSession(activity.Sessions[0]), nil
}

// FromSession maps a session summary onto the normalizer's field names.
// Invalid sentinel values are left out.
func FromSession(session *fit.SessionMsg) training.RawActivity {
	raw := training.RawActivity{}

	if session.Sport != fit.SportInvalid {
		raw["sportType"] = strings.ToLower(fmt.Sprint(session.Sport))
	}

	if start := validTime(session.StartTime); !start.IsZero() {
		raw["startTime"] = start.UTC().Format(time.RFC3339)
		raw["activityId"] = fmt.Sprintf("fit-%d", start.Unix())
	}

	setFinite(raw, "duration", session.GetTotalTimerTimeScaled())
	setFinite(raw, "distance", session.GetTotalDistanceScaled())
	setFinite(raw, "tss", session.GetTrainingStressScoreScaled())
	setFinite(raw, "intensityFactor", session.GetIntensityFactorScaled())

	if v := session.TotalCalories; v != math.MaxUint16 {
		raw["calories"] = float64(v)
	}
	if v := session.AvgPower; v != math.MaxUint16 && v > 0 {
		raw["averagePower"] = float64(v)
	}
	if v := session.NormalizedPower; v != math.MaxUint16 && v > 0 {
		raw["normalizedPower"] = float64(v)
	}
	if v := session.AvgHeartRate; v != math.MaxUint8 && v > 0 {
		raw["averageHeartRate"] = float64(v)
	}
	if v := session.MaxHeartRate; v != math.MaxUint8 && v > 0 {
		raw["maxHeartRate"] = float64(v)
	}
	if v := cadence(session.GetAvgCadence()); v > 0 {
		raw["averageCadence"] = v
	}
	return raw
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func setFinite(raw training.RawActivity, key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return
	}
	raw[key] = v
}

// cadence unwraps the dynamic avg_cadence field, which is rpm for cycling
// and strides per minute for running.
func cadence(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case float64:
		if math.IsNaN(x) || x < 0 {
			return 0
		}
		return x
	}
	return 0
}
