package service

import (
	"encoding/json"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/fulldump/apitest"
)

// Save writes a markdown page documenting one request/response pair when
// API_EXAMPLES_PATH is set. Acceptance runs double as API documentation.
func Save(response *apitest.Response, title, description string) {

	examplesPath := os.Getenv("API_EXAMPLES_PATH")
	if examplesPath == "" {
		return
	}

	request := response.Request

	query := ""
	if request.URL.RawQuery != "" {
		query = "?" + request.URL.RawQuery
	}
	requestBody := formatJSON(response.BodyRequestString())

	md := &strings.Builder{}
	md.WriteString("# " + title + "\n")
	md.WriteString(cropIndentation(description) + "\n")

	// curl
	md.WriteString("Curl example:\n\n```sh\ncurl ")
	if request.Method != "GET" {
		md.WriteString("-X " + request.Method + " ")
	}
	md.WriteString(`"https://example.com` + request.URL.Path + query + `"`)
	for _, k := range sortedKeys(request.Header) {
		for _, v := range request.Header[k] {
			md.WriteString(" \\\n-H \"" + k + ": " + v + "\"")
		}
	}
	if requestBody != "" {
		md.WriteString(" \\\n-d '" + requestBody + "'")
	}
	md.WriteString("\n```\n\n\n")

	// raw http
	md.WriteString("HTTP request/response example:\n\n```http\n")
	md.WriteString(request.Method + " " + request.URL.Path + query + " " + request.Proto + "\n")
	md.WriteString("Host: example.com\n")
	for _, k := range sortedKeys(request.Header) {
		for _, v := range request.Header[k] {
			md.WriteString(k + ": " + v + "\n")
		}
	}
	md.WriteString("\n" + requestBody + "\n\n")

	md.WriteString(response.Proto + " " + response.Status + "\n")
	for _, k := range sortedKeys(response.Header) {
		if k == "Date" {
			md.WriteString("Date: Mon, 15 Aug 2022 02:08:13 GMT\n")
			continue
		}
		for _, v := range response.Header[k] {
			md.WriteString(k + ": " + v + "\n")
		}
	}
	md.WriteString("\n" + formatJSON(response.BodyString()) + "\n```\n\n\n")

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examplesPath, path.Clean(filename))
	log.Println("Saving", p)
	err := os.WriteFile(p, []byte(md.String()), 0666)
	if err != nil {
		log.Println("Saving err:", err)
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatJSON(body string) string {

	var i interface{}
	err := json.Unmarshal([]byte(body), &i)
	if err != nil {
		return body
	}

	b, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		return body
	}

	return string(b)
}

// cropIndentation removes the tabs that indent a multiline description in
// the test source.
func cropIndentation(d string) string {

	lines := strings.Split(d, "\n")

	minTabs := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		if minTabs < 0 || tabs < minTabs {
			minTabs = tabs
		}
	}
	if minTabs <= 0 {
		return d
	}

	prefix := strings.Repeat("\t", minTabs)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}
