package apperr

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type partialErr struct{}

func (partialErr) Error() string { return "2 of 3 stages completed" }
func (partialErr) ErrorKind() Kind { return KindPartialDeployment }
func (partialErr) DetailLines() []string { return []string{"✓ Channels", "✗ Products"} }

func TestClassify_TypedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"local config", LocalConfig("config.yml", errors.New("yaml: line 3")), KindLocalConfig},
		{"remote config", RemoteConfig(errors.New("boom")), KindRemoteConfig},
		{"remote timeout", RemoteTimeout(time.Second), KindRemoteConfig},
		{"validation", Validation("bad"), KindValidation},
		{"wrapped typed", fmt.Errorf("stage \"Products\" failed: %w", Network(errors.New("dial"))), KindNetwork},
		{"kinded", fmt.Errorf("deploy: %w", partialErr{}), KindPartialDeployment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassify_MessageHeuristics(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"GraphQL request failed: 401 Unauthorized", KindAuthentication},
		{"Invalid token provided", KindAuthentication},
		{"dial tcp 127.0.0.1:8000: connect: connection refused", KindNetwork},
		{"getaddrinfo ENOTFOUND shop.example.com", KindNetwork},
		{"context deadline exceeded", KindNetwork},
		{"validation failed for field slug", KindValidation},
		{"something odd happened", KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(errors.New(tt.msg)))
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCodeFor(nil))
	assert.Equal(t, ExitUnexpected, ExitCodeFor(errors.New("weird")))
	assert.Equal(t, ExitAuthentication, ExitCodeFor(errors.New("403 forbidden")))
	assert.Equal(t, ExitNetwork, ExitCodeFor(errors.New("connection refused")))
	assert.Equal(t, ExitValidation, ExitCodeFor(Validation("duplicate slug")))
	assert.Equal(t, ExitValidation, ExitCodeFor(LocalConfig("x.yml", errors.New("parse"))))
	assert.Equal(t, ExitPartialFailure, ExitCodeFor(partialErr{}))
	assert.Equal(t, ExitNetwork, ExitCodeFor(RemoteTimeout(time.Second)))
	assert.Equal(t, ExitAuthentication, ExitCodeFor(RemoteConfig(errors.New("401 unauthorized"))))
}

func TestSuggest_CategoryNotFound(t *testing.T) {
	s := Suggest(`Category "shoes" not found`)
	require.NotEmpty(t, s)
	assert.Contains(t, s[0], `category "shoes"`)
	assert.Contains(t, s[0], "categories section")

	s = Suggest("Category not found")
	require.NotEmpty(t, s)
	assert.Contains(t, s[0], "the category")
}

func TestSuggest_OtherRules(t *testing.T) {
	assert.Contains(t, Suggest(`product type "Book" not found`)[0], `product type "Book"`)
	assert.Contains(t, Suggest(`channel "eu" was not found`)[0], `channel "eu"`)
	assert.Contains(t, Suggest(`attribute "Author" is a page attribute, not a product attribute`)[0], "defined for pages")
	assert.Contains(t, Suggest("HTTP 429 Too Many Requests")[0], "rate limiting")
	assert.Nil(t, Suggest("nothing matches here"))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Validation("duplicate key").With("entity", "Products").With("key", "tee")
	Render(&buf, err, false)

	out := buf.String()
	assert.Contains(t, out, "Validation error: duplicate key")
	assert.Contains(t, out, "entity: Products")
	assert.Contains(t, out, "key: tee")
	assert.Contains(t, out, "Suggested actions:")
	assert.Contains(t, out, "1. Fix the reported fields")
	assert.NotContains(t, out, "Original error:")
}

func TestRender_VerboseAndDetailLines(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, fmt.Errorf("deploy: %w", partialErr{}), true)

	out := buf.String()
	assert.Contains(t, out, "Deployment partially completed")
	assert.Contains(t, out, "✓ Channels")
	assert.Contains(t, out, "✗ Products")
	assert.Contains(t, out, "Original error:")
}
