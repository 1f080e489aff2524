// Command bench drives concurrent put/get traffic at a running flowcached
// instance over its HTTP adapter and reports throughput.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	n := flag.Int("n", 5000, "number of put/get pairs")
	conc := flag.Int("c", 32, "concurrency")
	valSize := flag.Int("val", 128, "value size in bytes")
	ttl := flag.Int("ttl", 0, "ttl seconds for puts (0 = engine default)")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	sem := make(chan struct{}, *conc)
	var wg sync.WaitGroup
	var hits, misses, errs int64

	start := time.Now()
	for i := 0; i < *n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			key := fmt.Sprintf("k%d", i)
			value := string(bytes.Repeat([]byte{byte('a' + i%26)}, *valSize))

			body := map[string]any{"key": key, "value": value}
			if *ttl > 0 {
				body["ttl"] = *ttl
			}
			buf, _ := json.Marshal(body)

			resp, err := client.Post(*addr+"/put", "application/json", bytes.NewReader(buf))
			if err != nil {
				atomic.AddInt64(&errs, 1)
				return
			}
			drain(resp)

			resp, err = client.Get(*addr + "/get?key=" + key)
			if err != nil {
				atomic.AddInt64(&errs, 1)
				return
			}
			if resp.StatusCode == http.StatusOK {
				atomic.AddInt64(&hits, 1)
			} else {
				atomic.AddInt64(&misses, 1)
			}
			drain(resp)
		}(i)
	}
	wg.Wait()
	dur := time.Since(start)

	total := *n * 2
	fmt.Printf("completed %d ops in %s (%.2f ops/s); gets: %d hit, %d miss, %d errors\n",
		total, dur, float64(total)/dur.Seconds(), hits, misses, errs)
}

func drain(resp *http.Response) {
	if resp == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
