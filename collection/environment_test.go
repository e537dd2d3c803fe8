package collection

import (
	"path"
	"testing"
)

type JSON = map[string]interface{}

func Environment(t *testing.T, f func(filename string)) {
	f(path.Join(t.TempDir(), "collection"))
}
