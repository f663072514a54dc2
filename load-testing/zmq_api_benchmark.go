package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-zeromq/zmq4"
)

// Mirrors of the API payloads, kept local so the tool builds standalone.
type ApiRequest struct {
	Action string `json:"action,omitempty"`
	ID     uint32 `json:"id,omitempty"`
	Value  uint32 `json:"value,omitempty"`
}

type ApiResponse struct {
	Tuple   TupleResponse `json:"tuple"`
	Success bool          `json:"success,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type TupleResponse struct {
	ID    uint32 `json:"id,omitempty"`
	Value uint32 `json:"value,omitempty"`
}

type RequestResult struct {
	Duration time.Duration
	Success  bool
	TimedOut bool
}

type BenchmarkStats struct {
	TotalRequests      int64
	SuccessfulRequests int64
	TimeoutRequests    int64
	ErrorRequests      int64
	ResponseTimes      []time.Duration
	StartTime          time.Time
	EndTime            time.Time
	mu                 sync.Mutex
}

func (b *BenchmarkStats) AddResult(result RequestResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	atomic.AddInt64(&b.TotalRequests, 1)
	if result.TimedOut {
		atomic.AddInt64(&b.TimeoutRequests, 1)
	} else if result.Success {
		atomic.AddInt64(&b.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&b.ErrorRequests, 1)
	}
	b.ResponseTimes = append(b.ResponseTimes, result.Duration)
}

func (b *BenchmarkStats) CalculatePercentiles() map[string]time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.ResponseTimes) == 0 {
		return make(map[string]time.Duration)
	}
	sort.Slice(b.ResponseTimes, func(i, j int) bool {
		return b.ResponseTimes[i] < b.ResponseTimes[j]
	})
	return map[string]time.Duration{
		"p50": b.ResponseTimes[int(float64(len(b.ResponseTimes))*0.50)],
		"p90": b.ResponseTimes[int(float64(len(b.ResponseTimes))*0.90)],
		"p99": b.ResponseTimes[int(float64(len(b.ResponseTimes))*0.99)],
	}
}

func (b *BenchmarkStats) GetRPS() float64 {
	duration := b.EndTime.Sub(b.StartTime).Seconds()
	if duration == 0 {
		return 0
	}
	return float64(b.TotalRequests) / duration
}

func (b *BenchmarkStats) GetSuccessRate() float64 {
	if b.TotalRequests == 0 {
		return 0
	}
	return float64(b.SuccessfulRequests) / float64(b.TotalRequests) * 100
}

type ZmqClient struct {
	socket  zmq4.Socket
	timeout time.Duration
}

func NewZmqClient(address string, timeout time.Duration) (*ZmqClient, error) {
	socket := zmq4.NewReq(context.Background())
	if err := socket.Dial(address); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return &ZmqClient{socket: socket, timeout: timeout}, nil
}

func (c *ZmqClient) SendRequest(req ApiRequest) (ApiResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return ApiResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := c.socket.Send(zmq4.NewMsgFrom(payload)); err != nil {
		return ApiResponse{}, fmt.Errorf("failed to send request: %w", err)
	}

	msgChan := make(chan zmq4.Msg, 1)
	errChan := make(chan error, 1)
	go func() {
		msg, err := c.socket.Recv()
		if err != nil {
			errChan <- err
			return
		}
		msgChan <- msg
	}()

	select {
	case msg := <-msgChan:
		var resp ApiResponse
		if err := json.Unmarshal(msg.Bytes(), &resp); err != nil {
			return ApiResponse{}, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return resp, nil
	case err := <-errChan:
		return ApiResponse{}, err
	case <-time.After(c.timeout):
		return ApiResponse{}, fmt.Errorf("request timeout")
	}
}

func (c *ZmqClient) Close() error {
	return c.socket.Close()
}

func worker(id int, address string, timeout, duration time.Duration,
	stats *BenchmarkStats, wg *sync.WaitGroup) {
	defer wg.Done()

	client, err := NewZmqClient(address, timeout)
	if err != nil {
		log.Printf("Worker %d failed to create client: %v", id, err)
		return
	}
	defer client.Close()

	endTime := time.Now().Add(duration)
	actions := []string{"SAVE", "GET", "DELETE"}

	for time.Now().Before(endTime) {
		action := actions[rand.Intn(len(actions))]
		req := ApiRequest{
			Action: action,
			ID:     uint32(id*1000 + rand.Intn(1000)),
			Value:  rand.Uint32(),
		}

		start := time.Now()
		resp, err := client.SendRequest(req)
		elapsed := time.Since(start)

		stats.AddResult(RequestResult{
			Duration: elapsed,
			Success:  err == nil && resp.Success,
			TimedOut: err != nil && err.Error() == "request timeout",
		})

		time.Sleep(1 * time.Millisecond)
	}

	log.Printf("Worker %d completed", id)
}

func printResults(stats *BenchmarkStats) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("BENCHMARK RESULTS")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Duration: %v\n", stats.EndTime.Sub(stats.StartTime))
	fmt.Printf("Total Requests: %d\n", stats.TotalRequests)
	fmt.Printf("Successful Requests: %d\n", stats.SuccessfulRequests)
	fmt.Printf("Failed Requests: %d\n", stats.ErrorRequests)
	fmt.Printf("Timeout Requests: %d\n", stats.TimeoutRequests)
	fmt.Printf("Success Rate: %.2f%%\n", stats.GetSuccessRate())
	fmt.Printf("RPS: %.2f\n", stats.GetRPS())

	fmt.Println("\nRESPONSE TIME PERCENTILES:")
	percentiles := stats.CalculatePercentiles()
	for _, p := range []string{"p50", "p90", "p99"} {
		if d, exists := percentiles[p]; exists {
			fmt.Printf("%s: %v\n", p, d)
		}
	}
	fmt.Println(strings.Repeat("=", 60))
}

func main() {
	var (
		address  = flag.String("address", "tcp://localhost:5555", "ZMQ server address")
		workers  = flag.Int("workers", 10, "Number of worker goroutines")
		duration = flag.Duration("duration", 30*time.Second, "Test duration")
		timeout  = flag.Duration("timeout", 5*time.Second, "Request timeout")
	)
	flag.Parse()

	fmt.Printf("Starting benchmark with %d workers for %v against %s\n", *workers, *duration, *address)

	stats := &BenchmarkStats{StartTime: time.Now()}
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go worker(i, *address, *timeout, *duration, stats, &wg)
	}
	wg.Wait()
	stats.EndTime = time.Now()

	printResults(stats)
}
