package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// decodeAll reads every document of an NDJSON body.
func decodeAll(body []byte) []interface{} {
	result := []interface{}{}
	d := json.NewDecoder(bytes.NewReader(body))
	for {
		var item interface{}
		err := d.Decode(&item)
		if err == io.EOF {
			return result
		}
		if err != nil {
			panic(err)
		}
		result = append(result, item)
	}
}

// Acceptance exercises the whole HTTP API. apiRequest builds a request to the
// /v1 path given.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create collection", func(a *biff.A) {
		resp := apiRequest("POST", "/collections").
			WithBodyJson(JSON{
				"name": "my-collection",
			}).Do()
		Save(resp, "Create collection", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		expectedBody := JSON{
			"name":    "my-collection",
			"total":   0,
			"indexes": 0,
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)

		a.Alternative("Create collection twice", func(a *biff.A) {
			resp := apiRequest("POST", "/collections").
				WithBodyJson(JSON{
					"name": "my-collection",
				}).Do()
			Save(resp, "Create collection - conflict", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Retrieve collection", func(a *biff.A) {
			resp := apiRequest("GET", "/collections/my-collection").Do()
			Save(resp, "Retrieve collection", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("List collections", func(a *biff.A) {
			resp := apiRequest("GET", "/collections").Do()
			Save(resp, "List collections", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedBody})
		})

		a.Alternative("Drop collection", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/my-collection:dropCollection").
				Do()
			Save(resp, "Drop collection", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped collection", func(a *biff.A) {
				resp := apiRequest("GET", "/collections/my-collection").
					Do()
				Save(resp, "Get collection - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Insert one", func(a *biff.A) {
			myDocument := JSON{
				"id":      "my-id",
				"name":    "Fulanez",
				"address": "Elm Street 11",
			}
			resp := apiRequest("POST", "/collections/my-collection:insert").
				WithBodyJson(myDocument).Do()
			Save(resp, "Insert one", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), myDocument)

			a.Alternative("Find with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:find").
					WithBodyJson(JSON{
						"skip":  0,
						"limit": 1,
						"filter": JSON{
							"name": "Fulanez",
						},
					}).Do()
				Save(resp, "Find - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), myDocument)
			})
		})

		a.Alternative("Insert malformed", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/my-collection:insert").
				WithBodyString(`{"id": ]`).Do()
			Save(resp, "Insert - malformed", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Insert many", func(a *biff.A) {

			myDocuments := []JSON{
				{"id": "1", "name": "Alfonso"},
				{"id": "2", "name": "Gerardo"},
				{"id": "3", "name": "Alfonso"},
			}

			body := ""
			for _, myDocument := range myDocuments {
				myDocument, _ := json.Marshal(myDocument)
				body += string(myDocument) + "\n"
			}
			resp := apiRequest("POST", "/collections/my-collection:insert").
				WithBodyString(body).Do()
			Save(resp, "Insert many", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(decodeAll(resp.BodyBytes()), myDocuments)

			a.Alternative("Find all sorted", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:find").
					WithBodyJson(JSON{
						"limit": 10,
						"sort":  []string{"-name", "id"},
					}).Do()
				Save(resp, "Find - sorted", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(decodeAll(resp.BodyBytes()), []JSON{
					myDocuments[1], myDocuments[0], myDocuments[2],
				})
			})

			a.Alternative("Create index", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:createIndex").
					WithBodyJson(JSON{"name": "my-index", "type": "map", "field": "id"}).Do()
				Save(resp, "Create index", ``)

				expectedIndex := JSON{"name": "my-index", "type": "map", "field": "id"}
				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), expectedIndex)

				a.Alternative("Get index", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:getIndex").
						WithBodyJson(JSON{
							"name": "my-index",
						}).Do()
					Save(resp, "Retrieve index", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), expectedIndex)
				})

				a.Alternative("List indexes", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:listIndexes").Do()
					Save(resp, "List indexes", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedIndex})
				})

				a.Alternative("Drop index", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:dropIndex").
						WithBodyJson(JSON{"name": "my-index"}).Do()
					Save(resp, "Drop index", ``)
					biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

					resp = apiRequest("POST", "/collections/my-collection:dropIndex").
						WithBodyJson(JSON{"name": "my-index"}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Insert - unique index conflict", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:insert").
						WithBodyJson(myDocuments[0]).Do()
					Save(resp, "Insert - unique index conflict", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"error": JSON{
							"description": "Conflict",
							"message":     "index 'my-index': index conflict: field 'id' with value '1'",
						},
					})
				})

				a.Alternative("Find by index", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:find").
						WithBodyJson(JSON{
							"index": "my-index",
							"value": "2",
						}).Do()
					Save(resp, "Find - by unique index", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), myDocuments[1])
				})

				a.Alternative("Find - index not found", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:find").
						WithBodyJson(JSON{
							"index": "invented",
							"value": "2",
						}).Do()
					Save(resp, "Find - index not found", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Remove by index", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:remove").
						WithBodyJson(JSON{
							"index": "my-index",
							"value": "2",
						}).Do()
					Save(resp, "Remove - by index", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), myDocuments[1])
				})

				a.Alternative("Patch by index", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:patch").
						WithBodyJson(JSON{
							"index": "my-index",
							"value": "3",
							"patch": JSON{
								"name": "Pedro",
							},
						}).Do()
					Save(resp, "Patch - by index", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{"id": "3", "name": "Pedro"})

					resp = apiRequest("POST", "/collections/my-collection:find").
						WithBodyJson(JSON{"limit": 10}).Do()
					biff.AssertEqualJson(decodeAll(resp.BodyBytes()), []JSON{
						myDocuments[0],
						myDocuments[1],
						{"id": "3", "name": "Pedro"},
					})
				})

				a.Alternative("Size and compact", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/my-collection:size").Do()
					Save(resp, "Size", ``)

					size := struct {
						Rows    int   `json:"rows"`
						Indexes int   `json:"indexes"`
						Disk    int64 `json:"disk"`
					}{}
					json.Unmarshal(resp.BodyBytes(), &size)
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(size.Rows, 3)
					biff.AssertEqual(size.Indexes, 1)
					biff.AssertTrue(size.Disk > 0)

					resp = apiRequest("POST", "/collections/my-collection:compact").Do()
					Save(resp, "Compact", ``)

					json.Unmarshal(resp.BodyBytes(), &size)
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(size.Rows, 3)
					biff.AssertTrue(size.Disk > 0)
				})
			})

			a.Alternative("Remove by filter", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:remove").
					WithBodyJson(JSON{
						"limit": 10,
						"filter": JSON{
							"name": "Alfonso",
						},
					}).Do()
				Save(resp, "Remove - by filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(decodeAll(resp.BodyBytes()), []JSON{
					myDocuments[0],
					myDocuments[2],
				})

				resp = apiRequest("POST", "/collections/my-collection:find").
					WithBodyJson(JSON{"limit": 10}).Do()
				biff.AssertEqualJson(decodeAll(resp.BodyBytes()), []JSON{
					myDocuments[1],
				})
			})

			a.Alternative("Patch by filter", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:patch").
					WithBodyJson(JSON{
						"limit": 10,
						"filter": JSON{
							"name": "Alfonso",
						},
						"patch": JSON{
							"country": "es",
						},
					}).Do()
				Save(resp, "Patch - by filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/collections/my-collection:find").
					WithBodyJson(JSON{"limit": 10}).Do()
				biff.AssertEqualJson(decodeAll(resp.BodyBytes()), []JSON{
					{"id": "1", "name": "Alfonso", "country": "es"},
					myDocuments[1],
					{"id": "3", "name": "Alfonso", "country": "es"},
				})
			})

			a.Alternative("Patch without patch", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/my-collection:patch").
					WithBodyJson(JSON{"limit": 10}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Create view", func(a *biff.A) {
				resp := apiRequest("POST", "/views").
					WithBodyJson(JSON{
						"collection": "my-collection",
						"page_size":  2,
						"sort":       "name",
					}).Do()
				Save(resp, "Create view", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				view := resp.BodyJson().(JSON)
				viewId := view["id"].(string)
				biff.AssertEqualJson(view["sort"], []JSON{{"property": "name", "ascending": true}})
				biff.AssertEqualJson(view["page_size"], 2)
				biff.AssertEqualJson(view["stats"], JSON{"fetches": 0, "counts": 0, "last_first_row": -1})

				a.Alternative("List views", func(a *biff.A) {
					resp := apiRequest("GET", "/views").Do()
					Save(resp, "List views", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					views := resp.BodyJson().([]interface{})
					biff.AssertEqual(len(views), 1)
					biff.AssertEqual(views[0].(JSON)["id"], viewId)
				})

				a.Alternative("Size", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":size").Do()
					Save(resp, "View size", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{"size": 3})
				})

				a.Alternative("Get item", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":get").
						WithBodyJson(JSON{"index": 1}).Do()
					Save(resp, "View get", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"index": 1,
						"found": true,
						"item":  myDocuments[2],
					})

					resp = apiRequest("GET", "/views/"+viewId).Do()
					Save(resp, "Retrieve view", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson().(JSON)["stats"], JSON{
						"fetches":        1,
						"counts":         0,
						"last_first_row": 0,
					})
				})

				a.Alternative("Get out of range", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":get").
						WithBodyJson(JSON{"index": 7}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"index": 7,
						"found": false,
						"item":  nil,
					})
				})

				a.Alternative("Slice", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":slice").
						WithBodyJson(JSON{"from": 1, "to": 10}).Do()
					Save(resp, "View slice", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"from":  1,
						"items": []JSON{myDocuments[2], myDocuments[1]},
					})
				})

				a.Alternative("Slice - bad range", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":slice").
						WithBodyJson(JSON{"from": 5, "to": 1}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				})

				a.Alternative("IndexOf", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":indexOf").
						WithBodyJson(JSON{"item": JSON{"name": "Gerardo", "id": "2"}}).Do()
					Save(resp, "View indexOf", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{"index": 2})
				})

				a.Alternative("Sort", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":sort").
						WithBodyJson(JSON{"sort": "-name,-id"}).Do()
					Save(resp, "View sort", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson().(JSON)["sort"], []JSON{
						{"property": "name", "ascending": false},
						{"property": "id", "ascending": false},
					})

					resp = apiRequest("POST", "/views/"+viewId+":slice").
						WithBodyJson(JSON{"from": 0, "to": 3}).Do()
					biff.AssertEqualJson(resp.BodyJson().(JSON)["items"], []JSON{
						myDocuments[1], myDocuments[2], myDocuments[0],
					})
				})

				a.Alternative("Writes refresh the view", func(a *biff.A) {
					apiRequest("POST", "/views/"+viewId+":size").Do()

					apiRequest("POST", "/collections/my-collection:insert").
						WithBodyJson(JSON{"id": "4", "name": "Beatriz"}).Do()

					resp := apiRequest("POST", "/views/"+viewId+":size").Do()
					biff.AssertEqualJson(resp.BodyJson(), JSON{"size": 4})

					resp = apiRequest("POST", "/views/"+viewId+":get").
						WithBodyJson(JSON{"index": 2}).Do()
					biff.AssertEqualJson(resp.BodyJson().(JSON)["item"], JSON{"id": "4", "name": "Beatriz"})
				})

				a.Alternative("Reset", func(a *biff.A) {
					resp := apiRequest("POST", "/views/"+viewId+":reset").
						WithBodyJson(JSON{"count": true}).Do()
					Save(resp, "View reset", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusNoContent)
				})

				a.Alternative("Delete view", func(a *biff.A) {
					resp := apiRequest("DELETE", "/views/"+viewId).Do()
					Save(resp, "Delete view", ``)
					biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

					resp = apiRequest("GET", "/views/"+viewId).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Drop collection drops the view", func(a *biff.A) {
					apiRequest("POST", "/collections/my-collection:dropCollection").Do()

					resp := apiRequest("POST", "/views/"+viewId+":size").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})
			})

			a.Alternative("Create view with filter", func(a *biff.A) {
				resp := apiRequest("POST", "/views").
					WithBodyJson(JSON{
						"collection": "my-collection",
						"filter":     JSON{"name": "Alfonso"},
					}).Do()
				Save(resp, "Create view - filter", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				viewId := resp.BodyJson().(JSON)["id"].(string)

				resp = apiRequest("POST", "/views/"+viewId+":slice").
					WithBodyJson(JSON{"from": 0, "to": 10}).Do()
				biff.AssertEqualJson(resp.BodyJson().(JSON)["items"], []JSON{
					myDocuments[0], myDocuments[2],
				})
			})
		})

		a.Alternative("Create view - bad page size", func(a *biff.A) {
			resp := apiRequest("POST", "/views").
				WithBodyJson(JSON{
					"collection": "my-collection",
					"page_size":  -1,
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})
	})

	a.Alternative("Find with collection not found", func(a *biff.A) {
		resp := apiRequest("POST", "/collections/your-collection:find").
			WithBodyJson(JSON{}).Do()
		Save(resp, "Find - collection not found", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"error": JSON{
				"message":     "collection not found",
				"description": "Not found",
			},
		})
	})

	a.Alternative("Create view - collection not found", func(a *biff.A) {
		resp := apiRequest("POST", "/views").
			WithBodyJson(JSON{"collection": "your-collection"}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("Insert on not existing collection", func(a *biff.A) {
		resp := apiRequest("POST", "/collections/my-collection:insert").
			WithBodyJson(JSON{"id": "my-id"}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)

		resp = apiRequest("POST", "/collections/my-collection:find").
			WithBodyJson(JSON{}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqual(resp.BodyString(), "{\"id\":\"my-id\"}\n")
	})

	a.Alternative("Create index on not existing collection", func(a *biff.A) {
		resp := apiRequest("POST", "/collections/my-collection:createIndex").
			WithBodyJson(JSON{
				"type":  "btree",
				"name":  "by-name",
				"field": "name",
			}).Do()

		// btree indexes need "fields"
		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
	})
}
