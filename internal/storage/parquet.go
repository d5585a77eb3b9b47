// ABOUTME: Parquet export of the activity table for analysis in notebooks.
// ABOUTME: Written to an in-memory buffer with SNAPPY compression.
package storage

import (
	"fmt"
	"time"

	"github.com/harperreed/coach/internal/models"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type activityParquetRow struct {
	ID               string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	UserID           string   `parquet:"name=user_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ExternalID       string   `parquet:"name=external_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name             string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	SportType        string   `parquet:"name=sport_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartTime        string   `parquet:"name=start_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationSeconds  int64    `parquet:"name=duration_seconds, type=INT64"`
	DistanceMeters   float64  `parquet:"name=distance_meters, type=DOUBLE"`
	Calories         int64    `parquet:"name=calories, type=INT64"`
	AveragePower     *float64 `parquet:"name=average_power, type=DOUBLE, repetitiontype=OPTIONAL"`
	NormalizedPower  *float64 `parquet:"name=normalized_power, type=DOUBLE, repetitiontype=OPTIONAL"`
	AverageHeartRate *float64 `parquet:"name=average_heart_rate, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxHeartRate     *float64 `parquet:"name=max_heart_rate, type=DOUBLE, repetitiontype=OPTIONAL"`
	AverageCadence   *float64 `parquet:"name=average_cadence, type=DOUBLE, repetitiontype=OPTIONAL"`
	TSS              *float64 `parquet:"name=tss, type=DOUBLE, repetitiontype=OPTIONAL"`
	IntensityFactor  *float64 `parquet:"name=intensity_factor, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// ExportActivitiesParquet encodes activities as a Parquet file.
func ExportActivitiesParquet(activities []*models.Activity) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(activityParquetRow), 4)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, a := range activities {
		row := activityParquetRow{
			ID:               a.ID.String(),
			UserID:           a.UserID,
			ExternalID:       a.ExternalID,
			Name:             a.Name,
			SportType:        a.SportType,
			StartTime:        a.StartTime.UTC().Format(time.RFC3339),
			DurationSeconds:  int64(a.DurationSeconds),
			DistanceMeters:   a.DistanceMeters,
			Calories:         int64(a.Calories),
			AveragePower:     a.AveragePower,
			NormalizedPower:  a.NormalizedPower,
			AverageHeartRate: a.AverageHeartRate,
			MaxHeartRate:     a.MaxHeartRate,
			AverageCadence:   a.AverageCadence,
			TSS:              a.TSS,
			IntensityFactor:  a.IntensityFactor,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finish parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
