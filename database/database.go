package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fulldump/lazylist/collection"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

var (
	ErrCollectionNotFound      = errors.New("collection not found")
	ErrCollectionAlreadyExists = errors.New("collection already exists")
)

type Config struct {
	Dir string
}

// Database is a directory of collection log files, one per collection.
type Database struct {
	Config      *Config
	status      string
	statusMutex sync.RWMutex
	collections map[string]*collection.Collection
	mutex       sync.RWMutex
	exit        chan struct{}
}

func NewDatabase(config *Config) *Database {
	return &Database{
		Config:      config,
		status:      StatusOpening,
		collections: map[string]*collection.Collection{},
		exit:        make(chan struct{}),
	}
}

func (db *Database) GetStatus() string {
	db.statusMutex.RLock()
	defer db.statusMutex.RUnlock()
	return db.status
}

func (db *Database) setStatus(status string) {
	db.statusMutex.Lock()
	db.status = status
	db.statusMutex.Unlock()
}

func (db *Database) CreateCollection(name string) (*collection.Collection, error) {

	if !validName(name) {
		return nil, fmt.Errorf("invalid collection name '%s'", name)
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	_, exists := db.collections[name]
	if exists {
		return nil, ErrCollectionAlreadyExists
	}

	col, err := collection.OpenCollection(path.Join(db.Config.Dir, name))
	if err != nil {
		return nil, err
	}

	db.collections[name] = col

	return col, nil
}

func (db *Database) GetCollection(name string) (*collection.Collection, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	col, exists := db.collections[name]
	if !exists {
		return nil, ErrCollectionNotFound
	}

	return col, nil
}

// ListCollections returns the collection names sorted.
func (db *Database) ListCollections() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (db *Database) DropCollection(name string) error {

	db.mutex.Lock()
	col, exists := db.collections[name]
	if exists {
		delete(db.collections, name)
	}
	db.mutex.Unlock()

	if !exists {
		return ErrCollectionNotFound
	}

	err := col.Drop()
	if err != nil {
		return fmt.Errorf("drop collection '%s': %w", name, err)
	}

	return nil
}

// validName rejects names that would escape the data directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func (db *Database) Load() error {

	dir := db.Config.Dir
	log.Printf("Loading database %s...\n", dir)

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filename != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := strings.TrimPrefix(strings.TrimPrefix(filename, dir), "/")
		if strings.HasPrefix(name, ".") {
			// hidden files are not collections
			return nil
		}

		t0 := time.Now()
		col, err := collection.OpenCollection(filename)
		if err != nil {
			log.Printf("ERROR: open collection '%s': %s\n", filename, err.Error())
			return err
		}
		log.Println(name, col.Len(), time.Since(t0))

		db.mutex.Lock()
		db.collections[name] = col
		db.mutex.Unlock()

		return nil
	})

	if err != nil {
		db.setStatus(StatusClosing)
		return err
	}

	db.setStatus(StatusOperating)

	return nil
}

// Start loads the database and blocks until Stop is called.
func (db *Database) Start() error {

	go db.Load()

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.setStatus(StatusClosing)

	db.mutex.Lock()
	defer db.mutex.Unlock()

	var lastErr error
	for name, col := range db.collections {
		log.Printf("Closing '%s'...\n", name)
		err := col.Close()
		if err != nil {
			log.Printf("ERROR: close(%s): %s\n", name, err.Error())
			lastErr = err
		}
	}

	return lastErr
}
