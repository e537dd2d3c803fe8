package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

func TestInsert(c Config) {

	if c.Base == "" {
		start, stop, _ := CreateServer(&c)
		defer stop()
		go start()
	}

	collection := CreateCollection(c.Base)
	client := NewClient()

	var done int64
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		for {
			select {
			case <-finished:
				return
			case <-time.After(time.Second):
				fmt.Println("collection size:", atomic.LoadInt64(&done))
			}
		}
	}()

	t0 := time.Now()
	Preload(client, c.Base, collection, c.N, c.Workers)
	atomic.StoreInt64(&done, c.N)

	took := time.Since(t0)
	fmt.Println("sent:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f rows/sec\n", float64(c.N)/took.Seconds())
}
