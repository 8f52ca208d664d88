// Command generate-baseline writes the same seed benchmark entries as
// create-baseline, without their category fields, but defaults to paths relative to this tool's own
// directory, for invocation via `go run` from within bench/tools/cmd.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func main() {
	// Determine output path
	outputPath := "../../benchmark_history/baseline.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	// Create benchmark summary structure
	results := []map[string]interface{}{
		{
			"name":          "Insert",
			"operations":    26672,
			"ns_per_op":     44242.0,
			"bytes_per_op":  712,
			"allocs_per_op": 6,
		},
		{
			"name":          "Lookup",
			"operations":    49908,
			"ns_per_op":     23266.0,
			"bytes_per_op":  8000,
			"allocs_per_op": 1000,
		},
		{
			"name":          "SimpleInsert",
			"operations":    42428938,
			"ns_per_op":     31.78,
			"bytes_per_op":  0,
			"allocs_per_op": 0,
		},
		{
			"name":          "SimpleLookup",
			"operations":    54210948,
			"ns_per_op":     21.85,
			"bytes_per_op":  8,
			"allocs_per_op": 1,
		},
		{
			"name":       "TenThousandRecords",
			"operations": 10000,
			"ns_per_op":  1256.23,
			"metrics": map[string]float64{
				"insertion_rate":         45000.5,
				"random_lookup_rate":     80000.8,
				"sequential_lookup_rate": 95000.2,
				"bytes_per_record":       24.5,
				"file_size_mb":           0.245,
			},
		},
		{
			"name":       "UUIDRecords",
			"operations": 100000,
			"ns_per_op":  16818.18,
			"metrics": map[string]float64{
				"insertion_rate":  35000.75,
				"retrieval_rate":  70000.25,
				"validation_rate": 60000.50,
				"bytes_per_record": 116.8,
				"file_size_mb":    11.68,
			},
		},
		{
			"name":       "MillionRecords",
			"operations": 1000000,
			"ns_per_op":  295.10,
			"metrics": map[string]float64{
				"insertion_rate":    425000.25,
				"verification_rate": 850000.50,
				"bytes_per_record":  24.8,
				"file_size_mb":      24.8,
			},
		},
		{
			"name":       "TenMillionRecords",
			"operations": 10000000,
			"ns_per_op":  225.31,
			"metrics": map[string]float64{
				"insertion_rate":     550000.75,
				"random_lookup_rate": 950000.25,
				"bytes_per_record":   24.2,
				"file_size_mb":       242.0,
			},
		},
	}

	// Create summary object
	summary := map[string]interface{}{
		"timestamp":  time.Now().Format(time.RFC3339),
		"commit_id":  "baseline",
		"branch":     "main",
		"go_version": "go1.20",
		"results":    results,
	}

	// Convert to JSON
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Printf("Error creating JSON: %v\n", err)
		os.Exit(1)
	}

	// Create directory if it doesn't exist
	os.MkdirAll("../../benchmark_history", 0755)

	// Write baseline file
	err = os.WriteFile(outputPath, jsonData, 0644)
	if err != nil {
		fmt.Printf("Error writing baseline file: %v\n", err)
		os.Exit(1)
	}

	// Also write latest.json with the same data
	latestPath := "../../benchmark_history/latest.json"
	err = os.WriteFile(latestPath, jsonData, 0644)
	if err != nil {
		fmt.Printf("Error writing latest file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created baseline benchmark file at %s\n", outputPath)
	fmt.Printf("Created latest benchmark file at %s\n", latestPath)
}
