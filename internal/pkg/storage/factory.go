package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names an object storage backend.
type Driver string

const (
	// DriverNone disables object storage.
	DriverNone  Driver = ""
	DriverS3    Driver = "s3"
	DriverGCS   Driver = "gcs"
	DriverMinIO Driver = "minio"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// ParseDriver normalizes a configured driver name.
func ParseDriver(raw string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(raw))); d {
	case DriverNone, DriverS3, DriverGCS, DriverMinIO:
		return d, nil
	default:
		return DriverNone, fmt.Errorf("%w: %s", ErrUnknownDriver, raw)
	}
}

// FactoryOptions carries the settings of every backend; only the selected one is read.
type FactoryOptions struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

// NewFromDriver constructs the backend named by driver. DriverNone yields a
// nil Storage and no error.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	d, err := ParseDriver(driver)
	if err != nil {
		return nil, err
	}

	switch d {
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverGCS:
		return NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		return NewMinIO(opts.MinIO)
	default:
		return nil, nil
	}
}
