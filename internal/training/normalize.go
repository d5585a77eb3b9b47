// ABOUTME: Normalizes heterogeneous raw activity payloads into models.Activity.
// ABOUTME: Total by construction: gaps are filled with defaults and reported as warnings.
package training

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/coach/internal/models"
)

// RawActivity is an upstream activity payload as decoded from JSON.
type RawActivity map[string]any

// Warning describes a default the normalizer had to apply.
type Warning string

const (
	WarnMissingID        Warning = "activity id missing"
	WarnDefaultSport     Warning = "sport type missing, assumed cycling"
	WarnMissingStartTime Warning = "start time missing or unparseable, using sync time"
)

// Normalized is the result of normalizing one raw record.
type Normalized struct {
	Activity models.Activity
	Warnings []Warning
}

// Err returns ErrMalformedActivity wrapped with the warnings, or nil.
// Callers log it; it never stops a sync.
func (n Normalized) Err() error {
	if len(n.Warnings) == 0 {
		return nil
	}
	msgs := make([]string, len(n.Warnings))
	for i, w := range n.Warnings {
		msgs[i] = string(w)
	}
	return fmt.Errorf("%w: %s", ErrMalformedActivity, strings.Join(msgs, "; "))
}

// Field aliases in precedence order. The first alias holding a usable value wins.
var (
	idAliases        = []string{"activityId", "id", "uuid"}
	nameAliases      = []string{"activityName", "name"}
	sportAliases     = []string{"sportType", "sport"}
	startAliases     = []string{"startTime", "startTimeLocal"}
	durationAliases  = []string{"duration", "elapsedTime"}
	avgPowerAliases  = []string{"averagePower", "avgPower"}
	normPowerAliases = []string{"normalizedPower", "normPower"}
	avgHRAliases     = []string{"averageHeartRate", "avgHr"}
	maxHRAliases     = []string{"maxHeartRate", "maxHr"}
	cadenceAliases   = []string{"averageCadence", "avgCadence"}
)

// Normalize converts a raw record into a canonical Activity. It never fails;
// now is used for the start time when the record has none. UserID is left for
// the caller to set.
func Normalize(raw RawActivity, now time.Time) Normalized {
	var n Normalized
	a := &n.Activity

	a.ID = uuid.New()
	a.CreatedAt = now.UTC()

	if id, ok := stringField(raw, idAliases...); ok {
		a.ExternalID = id
	} else {
		a.ExternalID = strconv.FormatInt(now.UnixMilli(), 10)
		n.Warnings = append(n.Warnings, WarnMissingID)
	}

	a.Name = "Activity"
	if name, ok := stringField(raw, nameAliases...); ok {
		a.Name = name
	}

	a.SportType = models.SportCycling
	if sport, ok := stringField(raw, sportAliases...); ok {
		a.SportType = strings.ToLower(sport)
	} else {
		n.Warnings = append(n.Warnings, WarnDefaultSport)
	}

	if start, ok := timeField(raw, startAliases...); ok {
		a.StartTime = start.UTC()
	} else {
		a.StartTime = now.UTC()
		n.Warnings = append(n.Warnings, WarnMissingStartTime)
	}

	if d, ok := numberField(raw, durationAliases...); ok {
		a.DurationSeconds = nonNegativeInt(d)
	}
	if d, ok := numberField(raw, "distance"); ok && d > 0 {
		a.DistanceMeters = DistanceKm(d) * 1000
	}
	if c, ok := numberField(raw, "calories"); ok {
		a.Calories = nonNegativeInt(c)
	}

	a.AveragePower = optionalField(raw, avgPowerAliases...)
	a.NormalizedPower = optionalField(raw, normPowerAliases...)
	a.AverageHeartRate = optionalField(raw, avgHRAliases...)
	a.MaxHeartRate = optionalField(raw, maxHRAliases...)
	a.AverageCadence = optionalField(raw, cadenceAliases...)
	a.TSS = optionalField(raw, "tss")
	a.IntensityFactor = optionalField(raw, "intensityFactor")

	if data, err := json.Marshal(raw); err == nil {
		a.RawData = data
	}

	return n
}

// metersThreshold is the distance at and above which a value is read as meters.
const metersThreshold = 1000

// DistanceKm converts an upstream distance to kilometers.
//
// Upstream payloads carry no unit tag, so this is a heuristic: values of 1000
// or more are assumed to be meters, smaller values are assumed to already be
// kilometers. A 999 km ride and a 999 m ride are indistinguishable; prefer an
// explicit unit whenever the source provides one.
func DistanceKm(v float64) float64 {
	if v >= metersThreshold {
		return v / 1000
	}
	return v
}

func stringField(raw RawActivity, keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s, true
			}
		case json.Number:
			return v.String(), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		case int64:
			return strconv.FormatInt(v, 10), true
		}
	}
	return "", false
}

func numberField(raw RawActivity, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toFloat(raw[k]); ok {
			return f, true
		}
	}
	return 0, false
}

func optionalField(raw RawActivity, keys ...string) *float64 {
	if f, ok := numberField(raw, keys...); ok {
		return &f
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Zone-less layouts are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func timeField(raw RawActivity, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := parseTime(raw[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	// Numeric timestamps are epoch seconds, or milliseconds when implausibly large.
	f, ok := toFloat(v)
	if !ok || f <= 0 {
		return time.Time{}, false
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}

func nonNegativeInt(f float64) int {
	if f <= 0 {
		return 0
	}
	return int(math.Round(f))
}
