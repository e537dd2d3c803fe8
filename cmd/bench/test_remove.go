package main

import (
	"fmt"
	"net/http"
	"path"
	"sync/atomic"
	"time"

	"github.com/fulldump/lazylist/collection"
)

func TestRemove(c Config) {

	createServer := c.Base == ""

	var start, stop func()
	var dataDir string
	if createServer {
		start, stop, dataDir = CreateServer(&c)
		go start()
	}

	collectionName := CreateCollection(c.Base)
	client := NewClient()

	fmt.Println("Preload documents...")
	Preload(client, c.Base, collectionName, c.N, c.Workers)

	removeURL := fmt.Sprintf("%s/v1/collections/%s:remove", c.Base, collectionName)

	t0 := time.Now()
	worker := int64(-1)
	Parallel(c.Workers, func() {
		w := atomic.AddInt64(&worker, 1)

		// Remove all documents belonging to this worker
		status, err := Post(client, removeURL, JSON{
			"filter": JSON{"worker": w},
			"limit":  -1,
		}, nil)
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			return
		}
		if status != http.StatusOK {
			fmt.Println("ERROR: bad status:", status)
		}
	})

	took := time.Since(t0)
	fmt.Println("removed:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f rows/sec\n", float64(c.N)/took.Seconds())

	if !createServer {
		return
	}

	stop() // Stop the server

	t1 := time.Now()
	col, err := collection.OpenCollection(path.Join(dataDir, collectionName))
	if err != nil {
		fmt.Println("ERROR: open collection:", err.Error())
		return
	}
	defer col.Close()
	tookOpen := time.Since(t1)
	fmt.Println("rows left:", col.Len())
	fmt.Println("open took:", tookOpen)
	fmt.Printf("Throughput Open: %.2f rows/sec\n", float64(c.N)/tookOpen.Seconds())
}
