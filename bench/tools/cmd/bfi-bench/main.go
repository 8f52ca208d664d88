// Command bfi-bench drives an ad-hoc, configurable load against a Bloom
// filter index and reports timing and storage metrics as JSON. It is a
// standalone runner for exploring shapes the fixed-size benchmarks in
// bench/ don't cover (arbitrary record counts, value counts and formats
// from the command line), not a replacement for them.
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/theflywheel/bfi"
)

type result struct {
	Timestamp      string  `json:"timestamp"`
	GoVersion      string  `json:"go_version"`
	Format         uint16  `json:"format"`
	Records        int     `json:"records"`
	ValuesPerRecord int    `json:"values_per_record"`
	InsertSeconds  float64 `json:"insert_seconds"`
	LookupSeconds  float64 `json:"lookup_seconds"`
	FileSizeBytes  int64   `json:"file_size_bytes"`
	AllocMB        float64 `json:"alloc_mb"`
}

func main() {
	var (
		path            = pflag.StringP("path", "p", "bfi-bench.bfi", "index file to create")
		format          = pflag.Uint16P("format", "f", bfi.Format128, "bloom filter width: 128 or 256")
		records         = pflag.IntP("records", "n", 100_000, "number of records to insert")
		valuesPerRecord = pflag.IntP("values", "v", 3, "values to generate per record")
		lookupSamples   = pflag.Int("lookup-samples", 10_000, "number of lookups to time after insertion")
		out             = pflag.StringP("out", "o", "", "write JSON results here instead of stdout")
		keep            = pflag.Bool("keep", false, "keep the index file instead of removing it on exit")
	)
	pflag.Parse()

	if *format != bfi.Format128 && *format != bfi.Format256 {
		fmt.Fprintf(os.Stderr, "bfi-bench: --format must be 128 or 256, got %d\n", *format)
		os.Exit(1)
	}

	if !*keep {
		defer os.Remove(*path)
	}

	idx, err := bfi.OpenFile(*path, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi-bench: open: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	runtime.GC()

	insertStart := time.Now()
	samples := make([][]byte, 0, *lookupSamples)
	for i := 0; i < *records; i++ {
		values := make([][]byte, *valuesPerRecord)
		for j := range values {
			values[j] = generateAlphanumeric(24)
		}
		if err := idx.Insert(uint32(i+1), values); err != nil {
			fmt.Fprintf(os.Stderr, "bfi-bench: insert record %d: %v\n", i, err)
			os.Exit(1)
		}
		if len(samples) < *lookupSamples {
			samples = append(samples, values[0])
		}
	}
	insertElapsed := time.Since(insertStart)

	lookupStart := time.Now()
	for _, value := range samples {
		if _, err := idx.Lookup([][]byte{value}); err != nil {
			fmt.Fprintf(os.Stderr, "bfi-bench: lookup: %v\n", err)
			os.Exit(1)
		}
	}
	lookupElapsed := time.Since(lookupStart)

	stat, err := idx.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi-bench: stat: %v\n", err)
		os.Exit(1)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	res := result{
		Timestamp:       time.Now().Format(time.RFC3339),
		GoVersion:       runtime.Version(),
		Format:          *format,
		Records:         *records,
		ValuesPerRecord: *valuesPerRecord,
		InsertSeconds:   insertElapsed.Seconds(),
		LookupSeconds:   lookupElapsed.Seconds(),
		FileSizeBytes:   stat.Size,
		AllocMB:         float64(mem.Alloc) / (1024 * 1024),
	}

	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfi-bench: encode results: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "bfi-bench: write %s: %v\n", *out, err)
		os.Exit(1)
	}
}

// generateAlphanumeric creates a random alphanumeric string of the given
// length, used to synthesize attribute values for the benchmark load.
func generateAlphanumeric(length int) []byte {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			panic(err)
		}
		result[i] = charset[n.Int64()]
	}
	return result
}
