// Package bloom provides URL deduplication using Bloom filters.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter wraps a Bloom filter for URL deduplication. False positives cause
// a URL to be skipped; false negatives cannot occur, so a URL is never
// fetched twice.
type Filter struct {
	f *bloom.BloomFilter
}

// New creates a Bloom filter sized for n expected URLs with the given
// false positive rate.
func New(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records a URL in the filter.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test returns true if the URL might have been added before.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}
