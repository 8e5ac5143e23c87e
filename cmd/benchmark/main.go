package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	userBase    int64
)

// Metrics
var (
	totalRequests uint64
	successOK     uint64
	failBadReq    uint64
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.Int64Var(&userBase, "user-base", 1_000_000, "First synthetic user id")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark | Workers: %d | Duration: %s", concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, userBase+int64(i))
	}

	wg.Wait()
	printResults(time.Since(start))
}

// worker runs full deposit conversations: menu command, then an amount.
func worker(wg *sync.WaitGroup, start time.Time, userID int64) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		send(client, userID, "💳 Deposit")
		amount := fmt.Sprintf("%d.%02d", 1+rand.Intn(1000), rand.Intn(100))
		send(client, userID, amount)
	}
}

func send(client *http.Client, userID int64, text string) {
	payload := map[string]interface{}{
		"conversation_id": userID,
		"user_id":         userID,
		"username":        fmt.Sprintf("bench-%d", userID),
		"text":            text,
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", targetURL+"/api/v1/messages", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddUint64(&failOther, 1)
		return
	}
	resp.Body.Close()

	atomic.AddUint64(&totalRequests, 1)
	switch resp.StatusCode {
	case http.StatusOK:
		atomic.AddUint64(&successOK, 1)
	case http.StatusBadRequest:
		atomic.AddUint64(&failBadReq, 1)
	default:
		atomic.AddUint64(&failOther, 1)
	}
}

func printResults(elapsed time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	fmt.Println("\n--- Benchmark Results ---")
	fmt.Printf("Elapsed:       %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Messages:      %d\n", total)
	fmt.Printf("OK:            %d\n", atomic.LoadUint64(&successOK))
	fmt.Printf("Bad Requests:  %d\n", atomic.LoadUint64(&failBadReq))
	fmt.Printf("Other Errors:  %d\n", atomic.LoadUint64(&failOther))
	if elapsed > 0 {
		fmt.Printf("Throughput:    %.1f msg/s\n", float64(total)/elapsed.Seconds())
	}
}
