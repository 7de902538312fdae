package toolset

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolbelt/internal/domain"
)

func TestRedirectWholeResponse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	writer := newOutputWriter(dir, true, nil)

	response := map[string]any{"successful": true, "data": "payload"}
	out := writer.redirect(domain.Slug("GITHUB_CREATE_ISSUE"), "default", response)

	file, ok := out["file"].(string)
	require.True(t, ok)
	require.Contains(t, out["message"], file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var persisted map[string]any
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Equal(t, "payload", persisted["data"])
}

func TestRedirectExtractsEmbeddedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	writer := newOutputWriter(dir, false, nil)

	content := base64.StdEncoding.EncodeToString([]byte("report body"))
	response := map[string]any{
		"successful": true,
		"report": map[string]any{
			"name":    "report.txt",
			"content": content,
		},
	}
	out := writer.redirect(domain.Slug("MYTOOL_EXPORT"), "default", response)

	path, ok := out["report"].(string)
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "report body", string(data))
	require.Equal(t, true, out["successful"])
}

func TestRedirectLeavesPlainResponse(t *testing.T) {
	writer := newOutputWriter(filepath.Join(t.TempDir(), "outputs"), false, nil)

	response := map[string]any{"successful": true, "data": map[string]any{"count": 3}}
	out := writer.redirect(domain.Slug("MYTOOL_COUNT"), "default", response)
	require.Equal(t, response, out)
}

func TestRedirectIgnoresBadBase64(t *testing.T) {
	writer := newOutputWriter(filepath.Join(t.TempDir(), "outputs"), false, nil)

	response := map[string]any{
		"attachment": map[string]any{"name": "x.bin", "content": "not-base64!!"},
	}
	out := writer.redirect(domain.Slug("MYTOOL_EXPORT"), "default", response)
	require.Equal(t, response, out)
}

func TestRedirectNoDirConfigured(t *testing.T) {
	writer := newOutputWriter("", true, nil)
	response := map[string]any{"successful": true}
	require.Equal(t, response, writer.redirect(domain.Slug("MYTOOL_RUN"), "default", response))
}
