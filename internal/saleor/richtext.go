package saleor

import (
	"encoding/json"
	"strings"
)

// richText wraps plain text as an EditorJS document, the format Saleor uses
// for description fields.
func richText(s string) string {
	if s == "" {
		return ""
	}
	type block struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	doc := struct {
		Blocks []block `json:"blocks"`
	}{}
	for _, para := range strings.Split(s, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		doc.Blocks = append(doc.Blocks, block{Type: "paragraph", Data: map[string]string{"text": para}})
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

// plainText flattens an EditorJS document to its paragraph texts. Input that
// is not an EditorJS document is returned unchanged.
func plainText(s string) string {
	if s == "" || s == "null" {
		return ""
	}
	var doc struct {
		Blocks []struct {
			Data struct {
				Text string `json:"text"`
			} `json:"data"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return s
	}
	lines := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		if b.Data.Text != "" {
			lines = append(lines, b.Data.Text)
		}
	}
	return strings.Join(lines, "\n")
}
