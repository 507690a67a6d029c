package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dnsscience/dnsasync/dnsmsg"
	"github.com/dnsscience/dnsasync/txn"
)

var (
	target   = flag.String("target", "127.0.0.1:53", "Nameserver address")
	workers  = flag.Int("workers", 10, "Number of concurrent workers, each its own Client")
	domain   = flag.String("domain", "example.com.", "Domain to query")
	duration = flag.Duration("duration", 10*time.Second, "Test duration")
	timeout  = flag.Duration("timeout", time.Second, "Per-query timeout")
)

func main() {
	flag.Parse()

	log.Printf("Starting benchmark against %s with %d workers for %v", *target, *workers, *duration)

	name := dnsmsg.MustParseName(*domain)
	var count uint64
	var errors uint64
	start := time.Now()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c, err := txn.Connect(splitHost(*target), splitPort(*target), txn.Config{})
			if err != nil {
				log.Printf("connect error: %v", err)
				return
			}
			defer c.Close()

			for {
				select {
				case <-done:
					return
				default:
					ctx, cancel := context.WithTimeout(context.Background(), *timeout)
					_, err := c.SendQuery(ctx, name, dnsmsg.TypeA, dnsmsg.ClassIN, *timeout)
					cancel()
					if err != nil {
						atomic.AddUint64(&errors, 1)
						continue
					}
					atomic.AddUint64(&count, 1)
				}
			}
		}()
	}

	time.Sleep(*duration)
	close(done)
	wg.Wait()

	totalTime := time.Since(start)
	qps := float64(count) / totalTime.Seconds()

	fmt.Printf("\n--- Results ---\n")
	fmt.Printf("Total Queries:  %d\n", count)
	fmt.Printf("Total Errors:   %d\n", errors)
	fmt.Printf("Duration:       %.2fs\n", totalTime.Seconds())
	fmt.Printf("QPS:            %.2f\n", qps)
}

func splitHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

func splitPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 53
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 53
	}
	return port
}
