package filetool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"toolbelt/internal/dispatch"
)

func newTestDispatcher(t *testing.T, workdir string) *dispatch.Dispatcher {
	t.Helper()
	d := dispatch.NewDispatcher(dispatch.DispatcherOptions{
		Env: dispatch.NewHostEnv(workdir),
	})
	require.NoError(t, d.Register(New()))
	return d
}

func TestCreateFile(t *testing.T) {
	workdir := t.TempDir()
	d := newTestDispatcher(t, workdir)

	response, err := d.Execute(context.Background(), "FILETOOL_CREATE_FILE",
		map[string]any{"file_path": "notes/todo.txt"}, nil)
	require.NoError(t, err)
	require.Equal(t, true, response["successful"])

	created, ok := response["file"].(string)
	require.True(t, ok)
	require.Equal(t, filepath.Join(workdir, "notes", "todo.txt"), created)
	_, err = os.Stat(created)
	require.NoError(t, err)
}

func TestCreateFileInvalidPath(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())

	for _, path := range []string{"", "   ", ".", ".."} {
		response, err := d.Execute(context.Background(), "FILETOOL_CREATE_FILE",
			map[string]any{"file_path": path}, nil)
		require.NoError(t, err)
		require.Equal(t, false, response["successful"])
		require.NotEmpty(t, response["error"])
	}
}

func TestWriteAndReadFile(t *testing.T) {
	workdir := t.TempDir()
	d := newTestDispatcher(t, workdir)

	response, err := d.Execute(context.Background(), "FILETOOL_WRITE_FILE",
		map[string]any{"file_path": "out.txt", "content": "written content"}, nil)
	require.NoError(t, err)
	require.Equal(t, true, response["successful"])

	response, err = d.Execute(context.Background(), "FILETOOL_READ_FILE",
		map[string]any{"file_path": "out.txt"}, nil)
	require.NoError(t, err)
	require.Equal(t, true, response["successful"])
	require.Equal(t, "written content", response["content"])
}

func TestReadMissingFile(t *testing.T) {
	d := newTestDispatcher(t, t.TempDir())

	response, err := d.Execute(context.Background(), "FILETOOL_READ_FILE",
		map[string]any{"file_path": "absent.txt"}, nil)
	require.NoError(t, err)
	require.Equal(t, false, response["successful"])
	require.Contains(t, response["error"], "read file")
}
