package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

type viewResponse struct {
	Id    string `json:"id"`
	Stats struct {
		Fetches int `json:"fetches"`
	} `json:"stats"`
}

type sliceResponse struct {
	From  int   `json:"from"`
	Items []any `json:"items"`
}

// TestScroll reads every row of a sorted view, one window at a time, the way
// a table being scrolled would. Each worker owns its own view.
func TestScroll(c Config) {

	if c.Base == "" {
		start, stop, _ := CreateServer(&c)
		defer stop()
		go start()
	}

	collection := CreateCollection(c.Base)
	client := NewClient()

	fmt.Println("Preload documents...")
	Preload(client, c.Base, collection, c.N, c.Workers)

	var rows, fetches, errors int64

	t0 := time.Now()
	Parallel(c.Workers, func() {

		view := viewResponse{}
		status, err := Post(client, c.Base+"/v1/views", JSON{
			"collection": collection,
			"page_size":  c.PageSize,
			"sort":       "-name",
		}, &view)
		if err != nil || status != http.StatusCreated {
			fmt.Println("ERROR: create view:", status, err)
			atomic.AddInt64(&errors, 1)
			return
		}

		viewURL := c.Base + "/v1/views/" + view.Id
		for from := 0; ; from += c.Window {
			page := sliceResponse{}
			status, err := Post(client, viewURL+":slice", JSON{"from": from, "to": from + c.Window}, &page)
			if err != nil || status != http.StatusOK {
				fmt.Println("ERROR: slice:", status, err)
				atomic.AddInt64(&errors, 1)
				return
			}
			atomic.AddInt64(&rows, int64(len(page.Items)))
			if len(page.Items) < c.Window {
				break
			}
		}

		resp, err := client.Get(viewURL)
		if err != nil {
			fmt.Println("ERROR: get view:", err.Error())
			atomic.AddInt64(&errors, 1)
			return
		}
		defer resp.Body.Close()
		view = viewResponse{}
		err = json.NewDecoder(resp.Body).Decode(&view)
		if err != nil {
			fmt.Println("ERROR: decode view:", err.Error())
			atomic.AddInt64(&errors, 1)
			return
		}
		atomic.AddInt64(&fetches, int64(view.Stats.Fetches))
	})

	took := time.Since(t0)
	fmt.Println("rows read:", rows)
	fmt.Println("backend fetches:", fetches)
	fmt.Println("errors:", errors)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f rows/sec\n", float64(rows)/took.Seconds())
}
