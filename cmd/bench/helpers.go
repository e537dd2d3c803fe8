package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fulldump/lazylist/bootstrap"
	"github.com/fulldump/lazylist/configuration"
)

type JSON = map[string]any

func Parallel(workers int, f func()) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "lazylist_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

func NewClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
		Timeout: 30 * time.Second,
	}
}

// Post sends payload as json and decodes the response into out (if not nil).
func Post(client *http.Client, url string, payload, out any) (int, error) {

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

func CreateCollection(base string) string {

	name := "col-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	status, err := Post(http.DefaultClient, base+"/v1/collections", JSON{"name": name}, nil)
	if err != nil {
		panic(err)
	}
	if status != http.StatusCreated {
		panic("create collection: unexpected status " + strconv.Itoa(status))
	}

	return name
}

// Preload inserts n documents spread over workers streams.
func Preload(client *http.Client, base, collection string, n int64, workers int) {

	items := n
	Parallel(workers, func() {

		r, w := io.Pipe()
		wb := bufio.NewWriterSize(w, 1*1024*1024)

		go func() {
			for {
				i := atomic.AddInt64(&items, -1)
				if i < 0 {
					break
				}
				fmt.Fprintf(wb, "{\"id\":%d,\"name\":\"name-%09d\",\"worker\":%d}\n", i, n-i, i%int64(workers))
			}
			wb.Flush()
			w.Close()
		}()

		req, err := http.NewRequest("POST", base+"/v1/collections/"+collection+":insert", r)
		if err != nil {
			fmt.Println("ERROR: new request:", err.Error())
			os.Exit(3)
		}

		resp, err := client.Do(req)
		if err != nil {
			fmt.Println("ERROR: do request:", err.Error())
			os.Exit(4)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	})
}

func CreateServer(c *Config) (start, stop func(), dir string) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dir = dir
	conf.ShowBanner = false
	c.Base = "http://" + conf.HttpAddr

	start, stop = bootstrap.Bootstrap(conf)
	return start, stop, dir
}
