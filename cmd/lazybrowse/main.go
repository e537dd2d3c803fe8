package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fulldump/goconfig"

	"github.com/fulldump/lazylist/collection"
	"github.com/fulldump/lazylist/lazylist"
	"github.com/fulldump/lazylist/source"
)

type Config struct {
	Dir           string `usage:"data directory"`
	Collection    string `usage:"collection to browse"`
	Columns       string `usage:"comma separated fields to show, empty takes them from the first document"`
	Filter        string `usage:"json filter"`
	Sort          string `usage:"initial sort key, eg: -age,name"`
	PageSize      int    `usage:"rows fetched per page"`
	LockTimeoutMs int64  `usage:"milliseconds to wait for the list lock"`
}

func main() {

	c := Config{
		Dir:           "data",
		PageSize:      lazylist.DefaultPageSize,
		LockTimeoutMs: lazylist.DefaultLockTimeout.Milliseconds(),
	}
	goconfig.Read(&c)

	err := run(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		os.Exit(1)
	}
}

func run(c Config) error {

	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}

	filter := map[string]interface{}{}
	if c.Filter != "" {
		err := json.Unmarshal([]byte(c.Filter), &filter)
		if err != nil {
			return fmt.Errorf("bad filter: %w", err)
		}
	}

	col, err := collection.OpenCollection(path.Join(c.Dir, c.Collection))
	if err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	defer col.Close()

	src := source.New(col, filter, c.PageSize)
	list := lazylist.NewConcurrentSortableLazyList[json.RawMessage](
		src, src, c.PageSize,
		time.Duration(c.LockTimeoutMs)*time.Millisecond,
		lazylist.ParseSort(c.Sort)...,
	).WithEqual(source.EqualJSON)

	columns := splitColumns(c.Columns)
	if len(columns) == 0 {
		columns, err = guessColumns(context.Background(), list)
		if err != nil {
			return err
		}
	}

	m := newModel(list, c.Collection, columns)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func splitColumns(s string) []string {
	columns := []string{}
	for _, column := range strings.Split(s, ",") {
		column = strings.TrimSpace(column)
		if column != "" {
			columns = append(columns, column)
		}
	}
	return columns
}
