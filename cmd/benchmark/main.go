// Benchmark tool for replaying a customer CSV against a running Reloan server.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/customers.csv -url http://localhost:8080
//
// This tool:
//   1. Reads customer IDs from a customer CSV (the same file used for seeding)
//   2. Requests dynamic pricing for each customer
//   3. Reports latency, throughput and the distribution of final rates
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// PricingRequest is the Reloan API request format.
type PricingRequest struct {
	CustomerID      string  `json:"customerId"`
	LoanAmount      float64 `json:"loanAmount,omitempty"`
	RequestedTenure int     `json:"requestedTenure,omitempty"`
}

// PricingResponse is the subset of the Reloan API response we report on.
type PricingResponse struct {
	CustomerID         string   `json:"customerId"`
	BaseRate           float64  `json:"baseRate"`
	FinalInterestRate  float64  `json:"finalInterestRate"`
	RateAdjustment     float64  `json:"rateAdjustment"`
	ExplanationFactors []string `json:"explanationFactors"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TotalProcessed int64
	TotalErrors    int64

	ProcessingTimeMs int64

	mu    sync.Mutex
	rates []float64
}

func (m *Metrics) addRate(rate float64) {
	m.mu.Lock()
	m.rates = append(m.rates, rate)
	m.mu.Unlock()
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to customer CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "Reloan base URL")
	limit := flag.Int("limit", 0, "Maximum customers to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	verbose := flag.Bool("verbose", false, "Print each pricing result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/customers.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║           RELOAN BENCHMARK - Dynamic Pricing Replay           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:    %s\n", *csvPath)
	fmt.Printf("Reloan URL:  %s\n", *baseURL)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Limit:       %d\n", *limit)
	fmt.Println()

	// Check Reloan is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Reloan not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Reloan is running:")
		fmt.Println("  RELOAN_SEED_CSV=customers.csv go run cmd/reloan/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Reloan is healthy")

	// Read customer IDs
	fmt.Printf("\nReading customer IDs from %s...\n", *csvPath)
	customerIDs, err := readCustomerIDs(*csvPath, *limit)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d customers\n", len(customerIDs))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(customerIDs, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readCustomerIDs(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idCol := -1
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(col)) == "customer_id" {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("customer_id column not found")
	}

	var ids []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		id := strings.TrimSpace(record[idCol])
		if id == "" {
			continue
		}
		ids = append(ids, id)

		if limit > 0 && len(ids) >= limit {
			break
		}
	}

	return ids, nil
}

func runBenchmark(customerIDs []string, baseURL string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	// Create work channel
	work := make(chan string, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for customerID := range work {
				start := time.Now()
				result, err := evaluatePricing(client, baseURL, customerID)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", customerID, err)
					}
					continue
				}

				metrics.addRate(result.FinalInterestRate)

				if verbose {
					fmt.Printf("✓ %-10s | Base: %5.2f%% | Final: %5.2f%% | Adj: %+5.2f | Factors: %d\n",
						customerID,
						result.BaseRate,
						result.FinalInterestRate,
						result.RateAdjustment,
						len(result.ExplanationFactors),
					)
				}
			}
		}()
	}

	// Send work
	for _, id := range customerIDs {
		work <- id
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func evaluatePricing(client *http.Client, baseURL, customerID string) (*PricingResponse, error) {
	body, err := json.Marshal(PricingRequest{CustomerID: customerID})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/pricing/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result PricingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	if len(m.rates) > 0 {
		sort.Float64s(m.rates)

		var sum float64
		for _, r := range m.rates {
			sum += r
		}
		avg := sum / float64(len(m.rates))
		p50 := m.rates[len(m.rates)/2]

		fmt.Printf("\n📈 RATE DISTRIBUTION\n")
		fmt.Printf("   Min Rate:     %.2f%%\n", m.rates[0])
		fmt.Printf("   Median Rate:  %.2f%%\n", p50)
		fmt.Printf("   Avg Rate:     %.2f%%\n", avg)
		fmt.Printf("   Max Rate:     %.2f%%\n", m.rates[len(m.rates)-1])

		// Histogram over 1-point buckets
		buckets := map[int]int{}
		for _, r := range m.rates {
			buckets[int(math.Floor(r))]++
		}
		var keys []int
		for k := range buckets {
			keys = append(keys, k)
		}
		sort.Ints(keys)

		fmt.Println("\n   Final rate histogram:")
		for _, k := range keys {
			count := buckets[k]
			bar := strings.Repeat("█", 1+count*40/len(m.rates))
			fmt.Printf("   %2d-%2d%%  %-42s %d\n", k, k+1, bar, count)
		}
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		rps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f req/sec\n", rps)
	}

	fmt.Println()
}
