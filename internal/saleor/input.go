package saleor

import "strings"

// input is a GraphQL input object under construction. Unset optional
// values are left out so the instance keeps its current value.
type input map[string]any

func (in input) str(key, v string) {
	if v != "" {
		in[key] = v
	}
}

func (in input) boolean(key string, v *bool) {
	if v != nil {
		in[key] = *v
	}
}

func (in input) integer(key string, v *int) {
	if v != nil {
		in[key] = *v
	}
}

// with returns a copy of in with key set. An empty key only copies.
func (in input) with(key string, v any) input {
	out := make(input, len(in)+1)
	for k, val := range in {
		out[k] = val
	}
	if key != "" {
		out[key] = v
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mutationField extracts the top-level field name from a mutation document
func mutationField(doc string) string {
	_, body, ok := strings.Cut(doc, "{")
	if !ok {
		return ""
	}
	body = strings.TrimSpace(body)
	if i := strings.IndexAny(body, "( {"); i >= 0 {
		return body[:i]
	}
	return body
}
