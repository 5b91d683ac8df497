package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/pescheckit/sway-mirror/internal/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestFile returns a File whose /proc lookups go to a fake tree.
func newTestFile(t *testing.T) (*File, string) {
	t.Helper()
	dir := t.TempDir()
	procRoot := filepath.Join(dir, "proc")
	require.NoError(t, os.MkdirAll(procRoot, 0o755))
	return &File{path: filepath.Join(dir, "state", fileName), procRoot: procRoot}, procRoot
}

func fakeProcess(t *testing.T, procRoot string, pid int, comm string) {
	t.Helper()
	dir := filepath.Join(procRoot, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0o644))
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		name    string
		runtime string
		state   string
		home    string
		want    string
	}{
		{"runtime dir wins", "/run/user/1000", "/home/u/.state", "/home/u", "/run/user/1000/sway-mirror.pid"},
		{"state home", "", "/home/u/.state", "/home/u", "/home/u/.state/sway-mirror.pid"},
		{"home fallback", "", "", "/home/u", "/home/u/.local/state/sway-mirror.pid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_RUNTIME_DIR", tt.runtime)
			t.Setenv("XDG_STATE_HOME", tt.state)
			t.Setenv("HOME", tt.home)
			assert.Equal(t, tt.want, DefaultPath())
		})
	}
}

func TestWriteReadRemove(t *testing.T) {
	f, _ := newTestFile(t)

	pid, err := f.Read()
	require.NoError(t, err)
	assert.Zero(t, pid, "missing file reads as no PID")

	require.NoError(t, f.Write())
	pid, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, f.Remove())
	require.NoError(t, f.Remove(), "removing twice is fine")
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRunningDetectsLiveInstance(t *testing.T) {
	f, procRoot := newTestFile(t)
	fakeProcess(t, procRoot, os.Getpid(), ProcessName)
	require.NoError(t, f.Write())

	pid, running, err := f.Running()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRunningRemovesStaleFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		comm    string
	}{
		{"other process", strconv.Itoa(os.Getpid()), "bash"},
		{"no such process", "999999999", ""},
		{"garbage", "not-a-pid", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, procRoot := newTestFile(t)
			if tt.comm != "" {
				fakeProcess(t, procRoot, os.Getpid(), tt.comm)
			}
			require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o755))
			require.NoError(t, os.WriteFile(f.Path(), []byte(tt.content), 0o644))

			_, running, err := f.Running()
			require.NoError(t, err)
			assert.False(t, running)
			_, err = os.Stat(f.Path())
			assert.True(t, os.IsNotExist(err), "stale PID file is removed")
		})
	}
}

func TestAcquire(t *testing.T) {
	f, _ := newTestFile(t)
	require.NoError(t, f.Acquire())

	pid, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireFailsWhenRunning(t *testing.T) {
	f, procRoot := newTestFile(t)
	// PID 1 exists on every Linux system; kill(1, 0) may be refused for
	// unprivileged users, in which case the instance does not count as live.
	fakeProcess(t, procRoot, 1, ProcessName)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o755))
	require.NoError(t, os.WriteFile(f.Path(), []byte("1\n"), 0o644))

	if !f.isMirrorProcess(1) {
		t.Skip("cannot signal PID 1 in this environment")
	}

	err := f.Acquire()
	assert.ErrorIs(t, err, errdefs.ErrAlreadyRunning)
}

func TestStopErrors(t *testing.T) {
	f, procRoot := newTestFile(t)

	_, err := f.Stop(0)
	assert.ErrorIs(t, err, errdefs.ErrNotRunning)

	fakeProcess(t, procRoot, os.Getpid(), "bash")
	require.NoError(t, f.Write())

	pid, err := f.Stop(time.Millisecond)
	assert.ErrorIs(t, err, errdefs.ErrStalePIDFile)
	assert.Equal(t, os.Getpid(), pid)
	_, statErr := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, os.WriteFile(f.Path(), []byte("junk"), 0o644))
	_, err = f.Stop(0)
	assert.ErrorIs(t, err, errdefs.ErrStalePIDFile)
}

func TestStaleFileRemoveErrorsSurface(t *testing.T) {
	errReadOnly := errors.New("read-only file system")
	failingFile := func(t *testing.T, content string) *File {
		f, procRoot := newTestFile(t)
		fakeProcess(t, procRoot, os.Getpid(), "bash")
		require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o755))
		require.NoError(t, os.WriteFile(f.Path(), []byte(content), 0o644))
		f.remove = func(string) error { return errReadOnly }
		return f
	}

	t.Run("running other process", func(t *testing.T) {
		f := failingFile(t, strconv.Itoa(os.Getpid()))
		_, running, err := f.Running()
		assert.False(t, running)
		assert.ErrorIs(t, err, errReadOnly)
	})

	t.Run("stop other process", func(t *testing.T) {
		f := failingFile(t, strconv.Itoa(os.Getpid()))
		_, err := f.Stop(0)
		assert.ErrorIs(t, err, errdefs.ErrStalePIDFile)
		assert.ErrorIs(t, err, errReadOnly)
	})

	t.Run("stop garbage", func(t *testing.T) {
		f := failingFile(t, "junk")
		_, err := f.Stop(0)
		assert.ErrorIs(t, err, errdefs.ErrStalePIDFile)
		assert.ErrorIs(t, err, errReadOnly)
	})
}
