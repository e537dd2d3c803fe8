package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test     string `usage:"name of the test: ALL | INSERT | SCROLL | REMOVE"`
	Base     string `usage:"base URL, empty starts an embedded server"`
	N        int64  `usage:"number of documents"`
	Workers  int    `usage:"number of workers"`
	PageSize int    `usage:"page size of the views"`
	Window   int    `usage:"rows requested per slice while scrolling"`
}

var cleanups []func()

func main() {

	defer func() {
		fmt.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:     "scroll",
		Base:     "",
		N:        100_000,
		Workers:  16,
		PageSize: 30,
		Window:   20,
	}
	goconfig.Read(&c)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestInsert(c)
		TestScroll(c)
		TestRemove(c)
	case "INSERT":
		TestInsert(c)
	case "SCROLL":
		TestScroll(c)
	case "REMOVE":
		TestRemove(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
