package collection

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/fulldump/biff"
)

type User struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

func TestInsert(t *testing.T) {
	Environment(t, func(filename string) {

		// Setup
		c, _ := OpenCollection(filename)
		defer c.Close()

		// Run
		c.Insert(map[string]interface{}{
			"hello": "world",
		})

		// Check
		fileContent, _ := os.ReadFile(filename)
		command := &Command{}
		json.Unmarshal(fileContent, command)
		AssertEqual(command.Name, CommandInsert)
		AssertEqual(string(command.Payload), `{"hello":"world"}`)
	})
}

func TestCollection_Insert_Concurrency(t *testing.T) {
	Environment(t, func(filename string) {

		c, _ := OpenCollection(filename)
		defer c.Close()

		n := 100

		wg := &sync.WaitGroup{}
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Insert(map[string]interface{}{"hello": "world"})
			}()
		}

		wg.Wait()

		AssertEqual(c.Len(), n)
		for i, row := range c.Rows {
			AssertEqual(row.I, i)
		}
	})
}

func TestInsertClosed(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		c.Close()

		_, err := c.Insert(JSON{"a": 1})
		AssertEqual(err, ErrClosed)
	})
}

func TestIndex(t *testing.T) {
	Environment(t, func(filename string) {
		// Setup
		c, _ := OpenCollection(filename)
		defer c.Close()
		c.Insert(&User{"1", "Pablo"})
		c.Insert(&User{"2", "Sara"})

		// Run
		err := c.Index(&CreateIndexOptions{Field: "id"})

		// Check
		AssertNil(err)
		user := &User{}
		errFindBy := c.FindBy("id", "2", user)
		AssertNil(errFindBy)
		AssertEqual(user.Name, "Sara")
		AssertEqual(c.ListIndexes()[0].Type, IndexTypeMap)
	})
}

func TestIndexConflict(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		defer c.Close()
		c.Insert(&User{"1", "Pablo"})
		c.Insert(&User{"1", "Sara"})

		err := c.Index(&CreateIndexOptions{Field: "id"})

		AssertNotNil(err)
		AssertEqual(len(c.Indexes), 0)
	})
}

func TestInsertAfterIndex(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		defer c.Close()

		c.Index(&CreateIndexOptions{Field: "id"})
		c.Insert(&User{"1", "Pablo"})
		_, err := c.Insert(&User{"1", "Other Pablo"})

		AssertNotNil(err)
		AssertEqual(c.Len(), 1)
		user := &User{}
		AssertNil(c.FindBy("id", "1", user))
		AssertEqual(user.Name, "Pablo")
	})
}

func TestIndexMultiValue(t *testing.T) {
	type Account struct {
		Id    string   `json:"id"`
		Email []string `json:"email"`
	}
	Environment(t, func(filename string) {
		newAccount := &Account{"1", []string{"pablo@hotmail.com", "p18@yahoo.com"}}
		c, _ := OpenCollection(filename)
		defer c.Close()
		c.Insert(newAccount)

		indexErr := c.Index(&CreateIndexOptions{Field: "email"})

		AssertNil(indexErr)
		u := &Account{}
		c.FindBy("email", "p18@yahoo.com", u)
		AssertEqual(u.Id, newAccount.Id)
	})
}

func TestIndexSparse(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		defer c.Close()
		c.Insert(map[string]interface{}{"id": "1"})

		errIndex := c.Index(&CreateIndexOptions{Field: "email", Sparse: true})
		AssertNil(errIndex)
		AssertEqual(len(c.Indexes["email"].Index.(*IndexMap).Entries), 0)

		errIndex = c.Index(&CreateIndexOptions{Name: "email2", Field: "email"})
		AssertNotNil(errIndex)
	})
}

func TestRemoveKeepsOrder(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		defer c.Close()

		rows := []*Row{}
		for _, name := range []string{"a", "b", "c", "d"} {
			row, _ := c.Insert(JSON{"name": name})
			rows = append(rows, row)
		}

		AssertNil(c.Remove(rows[1]))
		AssertNotNil(c.Remove(rows[1]))

		names := []string{}
		c.Traverse(func(row *Row) bool {
			item := JSON{}
			json.Unmarshal(row.Payload, &item)
			names = append(names, item["name"].(string))
			return true
		})
		AssertEqual(names, []string{"a", "c", "d"})
		AssertEqual(rows[3].I, 2)
	})
}

func TestPersistenceInsertAndIndex(t *testing.T) {
	Environment(t, func(filename string) {

		// Setup
		c, _ := OpenCollection(filename)
		c.Insert(map[string]interface{}{"id": "1", "name": "Pablo", "email": []string{"pablo@email.com", "pablo2018@yahoo.com"}})
		c.Index(&CreateIndexOptions{Field: "email"})
		c.Insert(map[string]interface{}{"id": "2", "name": "Sara", "email": []string{"sara@email.com", "sara.jimenez8@yahoo.com"}})
		c.Close()

		// Run
		c, _ = OpenCollection(filename)
		defer c.Close()
		user := struct {
			Id    string
			Name  string
			Email []string
		}{}
		findByErr := c.FindBy("email", "sara@email.com", &user)

		// Check
		AssertNil(findByErr)
		AssertEqual(user.Id, "2")
	})
}

func TestPersistenceDelete(t *testing.T) {
	Environment(t, func(filename string) {

		// Setup
		c, _ := OpenCollection(filename)
		c.Index(&CreateIndexOptions{Field: "email"})
		c.Insert(map[string]interface{}{"id": "1", "name": "Pablo", "email": []string{"pablo@email.com", "pablo2018@yahoo.com"}})
		row, _ := c.Insert(map[string]interface{}{"id": "2", "name": "Sara", "email": []string{"sara@email.com", "sara.jimenez8@yahoo.com"}})
		c.Insert(map[string]interface{}{"id": "3", "name": "Ana", "email": []string{"ana@email.com", "ana@yahoo.com"}})
		err := c.Remove(row)
		AssertNil(err)
		c.Close()

		// Run
		c, _ = OpenCollection(filename)
		defer c.Close()
		user := struct {
			Id    string
			Name  string
			Email []string
		}{}
		findByErr := c.FindBy("email", "sara@email.com", &user)

		// Check
		AssertNotNil(findByErr)
		AssertEqual(findByErr.Error(), "email 'sara@email.com' not found")
		AssertEqual(c.Len(), 2)
		AssertEqual(string(c.Rows[1].Payload), `{"email":["ana@email.com","ana@yahoo.com"],"id":"3","name":"Ana"}`)
	})
}

func TestPersistenceUpdate(t *testing.T) {
	Environment(t, func(filename string) {

		// Setup
		c, _ := OpenCollection(filename)
		c.Index(&CreateIndexOptions{Field: "id"})
		row, _ := c.Insert(map[string]interface{}{"id": "1", "name": "Pablo"})
		AssertNil(c.Patch(row, map[string]interface{}{"name": "Jaime"}))
		c.Close()

		// Run
		c, _ = OpenCollection(filename)
		defer c.Close()
		user := &User{}
		findByErr := c.FindBy("id", "1", user)

		// Check
		AssertNil(findByErr)
		AssertEqual(user.Name, "Jaime")
		AssertEqual(c.Len(), 1)
	})
}

func TestPatchIndexConflict(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		defer c.Close()
		c.Index(&CreateIndexOptions{Field: "id"})
		c.Insert(&User{"1", "Pablo"})
		row, _ := c.Insert(&User{"2", "Sara"})

		err := c.Patch(row, JSON{"id": "1"})
		AssertNotNil(err)

		user := &User{}
		AssertNil(c.FindBy("id", "2", user))
		AssertEqual(user.Name, "Sara")
	})
}

func TestPersistenceDropIndex(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		c.Index(&CreateIndexOptions{Field: "id"})
		c.Insert(&User{"1", "Pablo"})
		AssertNil(c.DropIndex("id"))
		AssertNotNil(c.DropIndex("id"))
		c.Close()

		c, _ = OpenCollection(filename)
		defer c.Close()
		AssertEqual(len(c.Indexes), 0)
		_, err := c.Insert(&User{"1", "Pablo again"})
		AssertNil(err)
	})
}

func TestCompact(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		c.Index(&CreateIndexOptions{Name: "by-name", Type: IndexTypeBTree, Fields: []string{"name"}})
		for _, name := range []string{"c", "a", "b"} {
			row, _ := c.Insert(JSON{"name": name})
			c.Patch(row, JSON{"seen": true})
		}
		c.Remove(c.Rows[0])

		AssertNil(c.Compact())
		c.Insert(JSON{"name": "d"})
		c.Close()

		content, _ := os.ReadFile(filename)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		AssertEqual(len(lines), 4)

		c, _ = OpenCollection(filename)
		defer c.Close()
		AssertEqual(c.Len(), 3)
		AssertEqual(c.ListIndexes()[0].Name, "by-name")
		AssertEqual(c.Indexes["by-name"].Index.(*IndexBtree).Len(), 3)
	})
}

func TestCompactWhileInserting(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		c.Insert(JSON{"name": "a"})

		// Keep the file busy so both writers queue up behind it
		c.fileMutex.Lock()

		compacted := make(chan error)
		go func() {
			compacted <- c.Compact()
		}()
		time.Sleep(20 * time.Millisecond)

		inserted := make(chan error)
		go func() {
			_, err := c.Insert(JSON{"name": "b"})
			inserted <- err
		}()
		time.Sleep(20 * time.Millisecond)

		c.fileMutex.Unlock()
		AssertNil(<-compacted)
		AssertNil(<-inserted)
		AssertEqual(c.Len(), 2)
		c.Close()

		c, _ = OpenCollection(filename)
		defer c.Close()
		AssertEqual(c.Len(), 2)
		AssertEqual(string(c.Rows[1].Payload), `{"name":"b"}`)
	})
}

func TestPersistenceConcurrentRemove(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)

		rows := []*Row{}
		for i := 0; i < 50; i++ {
			row, _ := c.Insert(JSON{"n": i})
			rows = append(rows, row)
		}

		wg := &sync.WaitGroup{}
		for i := 0; i < 50; i += 2 {
			wg.Add(1)
			go func(row *Row) {
				defer wg.Done()
				AssertNil(c.Remove(row))
			}(rows[i])
		}
		wg.Wait()

		want := []string{}
		for _, row := range c.Rows {
			want = append(want, string(row.Payload))
		}
		AssertEqual(len(want), 25)
		c.Close()

		c, _ = OpenCollection(filename)
		defer c.Close()
		got := []string{}
		for _, row := range c.Rows {
			got = append(got, string(row.Payload))
		}
		AssertEqual(got, want)
	})
}

func TestDrop(t *testing.T) {
	Environment(t, func(filename string) {
		c, _ := OpenCollection(filename)
		c.Insert(JSON{"a": 1})

		AssertNil(c.Drop())

		_, err := os.Stat(filename)
		AssertTrue(os.IsNotExist(err))
	})
}
