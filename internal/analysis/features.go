// Package analysis computes content fingerprint vectors for library files
// and feeds them to the recommendation index.
//
// The fingerprint is a normalized byte histogram plus coarse energy
// statistics sampled from the head of the file. It is a stand-in for full
// audio feature extraction: the retriever contract (euclidean nearest
// neighbors over fixed-length vectors) does not depend on the feature space.
package analysis

import (
	"fmt"
	"io"
	"math"
	"os"
)

const (
	histogramBins = 16

	// VectorDim is the length of every fingerprint vector: histogram bins
	// plus normalized mean and spread.
	VectorDim = histogramBins + 2
)

// Extract computes the fingerprint vector for the file at path, sampling at
// most sampleBytes from its head.
func Extract(path string, sampleBytes int64) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sampleBytes <= 0 {
		sampleBytes = 1 << 20
	}

	data, err := io.ReadAll(io.LimitReader(f, sampleBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	var histogram [histogramBins]float64
	var sum float64
	for _, b := range data {
		histogram[int(b)/(256/histogramBins)]++
		sum += float64(b)
	}

	n := float64(len(data))
	mean := sum / n

	var variance float64
	for _, b := range data {
		d := float64(b) - mean
		variance += d * d
	}
	variance /= n

	vector := make([]float64, 0, VectorDim)
	for _, count := range histogram {
		vector = append(vector, count/n)
	}
	vector = append(vector, mean/255, math.Sqrt(variance)/255)

	return vector, nil
}

// Distance returns the euclidean distance between two vectors. Mismatched
// lengths are treated as maximally distant.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
