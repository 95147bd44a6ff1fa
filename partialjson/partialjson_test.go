package partialjson_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/wizard/partialjson"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  any
		ok    bool
	}{
		{"empty", "", nil, false},
		{"whitespace", "  \n", nil, false},
		{"not json", "Sure! Here you go", nil, false},
		{"open object", "{", map[string]any{}, true},
		{"dangling key", `{"na`, map[string]any{}, true},
		{"key without value", `{"name":`, map[string]any{}, true},
		{"unterminated string", `{"name":"Str`, map[string]any{"name": "Str"}, true},
		{"complete pair", `{"name":"Stress"`, map[string]any{"name": "Stress"}, true},
		{"dangling comma", `{"a":1,`, map[string]any{"a": 1.0}, true},
		{"truncated number", `{"a":12`, map[string]any{"a": 12.0}, true},
		{"truncated exponent", `{"a":1e`, map[string]any{}, true},
		{"partial literal", `{"a":tr`, map[string]any{}, true},
		{"complete literals", `[true,false,null`, []any{true, false, nil}, true},
		{"nested arrays", `{"data":{"items":[{"id":"c1"},{"id":"c`, map[string]any{
			"data": map[string]any{"items": []any{
				map[string]any{"id": "c1"},
				map[string]any{"id": "c"},
			}},
		}, true},
		{"dangling escape", `"a\`, "a", true},
		{"partial unicode escape", `"caf\u00`, "caf", true},
		{"unicode escape", `"caf\u00e9"`, "caf\u00e9", true},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600", true},
		{"split surrogate pair", `"x\ud83d\ud`, "x", true},
		{"escaped quote", `"say \"hi`, `say "hi`, true},
		{"split utf8", "\"caf\xc3", "caf", true},
		{"code fence", "```json\n{\"a\":[1", map[string]any{"a": []any{1.0}}, true},
		{"fence only", "```json", nil, false},
		{"trailing content", `{"a":1} and more`, map[string]any{"a": 1.0}, true},
		{"trailing comma", `[1,2,]`, []any{1.0, 2.0}, true},
		{"bad token", `{"a":x}`, nil, false},
		{"missing colon", `{"a" 1}`, nil, false},
		{"bare key", `{a:1}`, nil, false},
		{"bad escape", `"\q"`, nil, false},
		{"minus only", `-`, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := partialjson.TryParse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTryParse_EveryPrefix(t *testing.T) {
	t.Parallel()

	doc := `{"data":{"potential_causes":[{"cause_id":"c1","name_localized":"Work-related stress","relevancy":4.5,"tags":["a","b"],"flag":true,"none":null}]}}`
	var want any
	require.NoError(t, json.Unmarshal([]byte(doc), &want))

	for i := 1; i < len(doc); i++ {
		v, ok := partialjson.TryParse(doc[:i])
		require.Truef(t, ok, "prefix %q", doc[:i])
		require.IsType(t, map[string]any{}, v)
	}
	got, ok := partialjson.TryParse(doc)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestTryParse_PrefixProperty(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	// Every prefix is reparsed, so keep documents small.
	parameters.MaxSize = 6
	properties := gopter.NewProperties(parameters)

	properties.Property("prefixes of a valid document always parse", prop.ForAll(
		func(names []string, score float64) bool {
			items := make([]any, len(names))
			for i, n := range names {
				items[i] = map[string]any{"id": n, "score": score, "text": "\"quoted\" \\ " + n}
			}
			data, err := json.Marshal(map[string]any{"items": items})
			if err != nil {
				return false
			}
			doc := string(data)
			for i := 1; i <= len(doc); i++ {
				if _, ok := partialjson.TryParse(doc[:i]); !ok {
					return false
				}
			}
			var want any
			if err := json.Unmarshal(data, &want); err != nil {
				return false
			}
			got, _ := partialjson.TryParse(doc)
			return assert.ObjectsAreEqual(want, got)
		},
		gen.SliceOf(gen.AnyString()),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

func TestExtractArrayAtPath(t *testing.T) {
	t.Parallel()

	parsed, ok := partialjson.TryParse(`{"data":{"potential_causes":[{"cause_id":"c1"}],"meta":{}`)
	require.True(t, ok)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		arr, ok := partialjson.ExtractArrayAtPath(parsed, "data.potential_causes")
		require.True(t, ok)
		assert.Equal(t, []any{map[string]any{"cause_id": "c1"}}, arr)
	})

	t.Run("not yet streamed", func(t *testing.T) {
		t.Parallel()
		_, ok := partialjson.ExtractArrayAtPath(parsed, "data.potential_symptoms")
		assert.False(t, ok)
	})

	t.Run("not an array", func(t *testing.T) {
		t.Parallel()
		_, ok := partialjson.ExtractArrayAtPath(parsed, "data.meta")
		assert.False(t, ok)
	})

	t.Run("root array", func(t *testing.T) {
		t.Parallel()
		arr, ok := partialjson.ExtractArrayAtPath([]any{1.0}, "")
		require.True(t, ok)
		assert.Len(t, arr, 1)
	})
}
