// bench - TSION benchmark runner
//
// Measures what structural deduplication buys on real documents.
// For each JSON file given on the command line it reports minified
// JSON size, TSION payload size, and both after zstd, as a CSV row.
//
// Usage:
//
//	bench file.json [file.json ...]
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/Neumenon/tsion/tsion"
)

type caseResult struct {
	name       string
	jsonBytes  int
	tsionBytes int
	jsonZstd   int
	tsionZstd  int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: bench file.json [file.json ...]")
		os.Exit(1)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init zstd: %v\n", err)
		os.Exit(1)
	}
	defer enc.Close()

	var results []caseResult
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}

		v, err := tsion.FromJSON(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: parse error: %v\n", path, err)
			continue
		}

		payload := tsion.Encode(v)

		// Minify the JSON for a fair byte comparison.
		minified, err := tsion.ToJSON(v)
		if err != nil {
			// NaN/Inf cannot re-enter JSON; fall back to the input,
			// compacted when it parses, raw otherwise.
			minified = data
			if compact, cerr := compactJSON(data); cerr == nil {
				minified = compact
			}
		}

		results = append(results, caseResult{
			name:       path,
			jsonBytes:  len(minified),
			tsionBytes: len(payload),
			jsonZstd:   len(enc.EncodeAll(minified, nil)),
			tsionZstd:  len(enc.EncodeAll([]byte(payload), nil)),
		})
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "no usable cases")
		os.Exit(1)
	}

	fmt.Println("name,json_bytes,tsion_bytes,saved_pct,json_zstd,tsion_zstd,saved_zstd_pct")
	var totalJSON, totalTsion int
	for _, r := range results {
		fmt.Printf("%s,%d,%d,%.1f,%d,%d,%.1f\n",
			r.name, r.jsonBytes, r.tsionBytes, pct(r.jsonBytes, r.tsionBytes),
			r.jsonZstd, r.tsionZstd, pct(r.jsonZstd, r.tsionZstd))
		totalJSON += r.jsonBytes
		totalTsion += r.tsionBytes
	}

	fmt.Fprintf(os.Stderr, "\n%d cases: %d JSON bytes -> %d TSION bytes (%.1f%% saved)\n",
		len(results), totalJSON, totalTsion, pct(totalJSON, totalTsion))
}

func pct(before, after int) float64 {
	if before == 0 {
		return 0
	}
	return float64(before-after) / float64(before) * 100
}

func compactJSON(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
