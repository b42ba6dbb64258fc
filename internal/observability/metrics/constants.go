// Package metrics provides the Prometheus collectors for gausscat.
package metrics

// Status label values.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusFailure  = "failure"
)

// Histogram bucket layout.
const (
	// BucketStart100us is the first bucket for 0.1ms histograms (0.1ms to ~400ms).
	BucketStart100us = 0.0001
	// BucketStart1ms is the first bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart100B is the first bucket for response size histograms.
	BucketStart100B = 100.0

	BucketFactor2  = 2
	BucketFactor10 = 10

	BucketCount6  = 6
	BucketCount12 = 12
	BucketCount15 = 15
)
