package toolset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"toolbelt/internal/domain"
)

type issueParams struct {
	Title    string   `json:"title"`
	Labels   []string `json:"labels,omitempty"`
	Priority int      `json:"priority"`
}

func TestSerializeParamsPrimitives(t *testing.T) {
	out, err := serializeParams(map[string]any{
		"str":   "value",
		"num":   42,
		"ratio": 0.5,
		"flag":  true,
		"none":  nil,
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"str":   "value",
		"num":   42,
		"ratio": 0.5,
		"flag":  true,
		"none":  nil,
	}, out)
}

func TestSerializeParamsStruct(t *testing.T) {
	out, err := serializeParams(map[string]any{
		"issue": issueParams{Title: "bug", Labels: []string{"p0"}, Priority: 1},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"issue": map[string]any{
			"title":    "bug",
			"labels":   []any{"p0"},
			"priority": float64(1),
		},
	}, out)
}

func TestSerializeParamsPointerAndNested(t *testing.T) {
	issue := &issueParams{Title: "nested"}
	out, err := serializeParams(map[string]any{
		"wrapped": map[string]any{
			"issue": issue,
			"ids":   []int{1, 2, 3},
		},
	})
	require.NoError(t, err)

	wrapped := out["wrapped"].(map[string]any)
	require.Equal(t, "nested", wrapped["issue"].(map[string]any)["title"])
	require.Equal(t, []any{1, 2, 3}, wrapped["ids"])
}

func TestSerializeParamsNilPointer(t *testing.T) {
	var issue *issueParams
	out, err := serializeParams(map[string]any{"issue": issue})
	require.NoError(t, err)
	require.Nil(t, out["issue"])
}

func TestSerializeParamsUnsupported(t *testing.T) {
	_, err := serializeParams(map[string]any{
		"ch": make(chan int),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrUnsupportedParam)

	_, err = serializeParams(map[string]any{
		"bad_keys": map[int]string{1: "one"},
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedParam)
}

func TestSerializeParamsNilMap(t *testing.T) {
	out, err := serializeParams(nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}
