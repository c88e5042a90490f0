package getconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRefs_TypedCopy(t *testing.T) {
	tree := mustMapping(t, `
a:
  deeper:
    value: test
copied: ${self.a.deeper}
port: 8080
portCopy: ${self.port}
`)

	got, err := ResolveRefs(tree, tree)
	require.NoError(t, err)

	copied, _ := got.Get("copied")
	assert.Equal(t, map[string]any{"value": "test"}, copied.Interface())
	portCopy, _ := got.Get("portCopy")
	assert.Equal(t, Scalar{V: 8080}, portCopy)

	// The copy is independent of its origin.
	copied.(*Mapping).Set("value", Scalar{V: "changed"})
	v, _ := got.Lookup("a", "deeper", "value")
	assert.Equal(t, Scalar{V: "test"}, v)
}

func TestResolveRefs_Embedded(t *testing.T) {
	tree := mustMapping(t, `
a:
  deeper:
    value: test
  port: 5432
  list: [1, 2]
  off: false
shallow: some ${self.a.deeper.value}
addr: "host:${self.a.port}"
list: "items=${self.a.list}"
obj: "obj=${self.a.deeper}"
flag: "enabled=${self.a.off}"
both: "${self.a.deeper.value}-${self.a.port}"
`)

	got, err := ResolveRefs(tree, tree)
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"shallow", "some test"},
		{"addr", "host:5432"},
		{"list", "items=[1,2]"},
		{"obj", `obj={"value":"test"}`},
		{"flag", "enabled=false"},
		{"both", "test-5432"},
	}
	for _, tt := range tests {
		v, ok := got.Get(tt.path)
		if !ok {
			t.Errorf("%s missing", tt.path)
			continue
		}
		if v != (Scalar{V: tt.want}) {
			t.Errorf("%s = %v, want %q", tt.path, v.Interface(), tt.want)
		}
	}
}

func TestResolveRefs_SequenceIndex(t *testing.T) {
	tree := mustMapping(t, `
servers: [alpha, beta]
primary: ${self.servers.1}
`)

	got, err := ResolveRefs(tree, tree)
	require.NoError(t, err)
	v, _ := got.Get("primary")
	assert.Equal(t, Scalar{V: "beta"}, v)
}

func TestResolveRefs_InsideSequence(t *testing.T) {
	tree := mustMapping(t, `
name: app
tags:
  - ${self.name}
  - "v-${self.name}"
`)

	got, err := ResolveRefs(tree, tree)
	require.NoError(t, err)
	tags, _ := got.Get("tags")
	assert.Equal(t, []any{"app", "v-app"}, tags.Interface())
}

func TestResolveRefs_Missing(t *testing.T) {
	tree := mustMapping(t, `bad: ${self.nope}`)

	_, err := ResolveRefs(tree, tree)
	var missing *MissingPropertyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope", missing.Path)
	assert.Equal(t, ErrCodeMissingProperty, ErrorCode(err))
}

func TestResolveRefs_NoRescan(t *testing.T) {
	tree := mustMapping(t, `
a: ${self.b}
b: ${self.c}
c: final
`)

	got, err := ResolveRefs(tree, tree)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "${self.c}", "b": "final", "c": "final"}, got.Interface())
}

func TestResolveRefs_SeparateRoot(t *testing.T) {
	root := mustMapping(t, "region: eu-west-1")
	tree := mustMapping(t, `bucket: "logs-${self.region}"`)

	got, err := ResolveRefs(tree, root)
	require.NoError(t, err)
	v, _ := got.Get("bucket")
	assert.Equal(t, Scalar{V: "logs-eu-west-1"}, v)
}

func TestStringify(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		in   Value
		want string
	}{
		{Scalar{V: "s"}, "s"},
		{Scalar{V: 42}, "42"},
		{Scalar{V: 1.5}, "1.5"},
		{Scalar{V: true}, "true"},
		{Scalar{}, "null"},
		{Scalar{V: ts}, "2024-01-02T03:04:05Z"},
		{Sequence{Scalar{V: "a"}}, `["a"]`},
		{NewMapping(), "{}"},
	}

	for _, tt := range tests {
		got, err := stringify(tt.in)
		if err != nil {
			t.Errorf("stringify(%v) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
