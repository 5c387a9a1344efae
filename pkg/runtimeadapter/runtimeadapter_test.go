package runtimeadapter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willdeuschle/cruise/pkg/container"
)

// fakeRunc writes an executable shell script standing in for runc. body is
// the script's command body; it can inspect $1, $2, ... the way runc would
// see its own subcommand and arguments.
func fakeRunc(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runc script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-runc")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestGenerateSpecRewritesArgsAndTerminal(t *testing.T) {
	runc := fakeRunc(t, `
bundle=""
while [ "$#" -gt 0 ]; do
  case "$1" in
    --bundle) bundle="$2"; shift 2 ;;
    *) shift ;;
  esac
done
cat > "$bundle/config.json" <<'EOF'
{"process":{"args": ["sh"],"terminal": true}}
EOF
`)
	a := New(runc)
	bundle := t.TempDir()

	err := a.GenerateSpec(bundle, "/bin/echo", []string{"hi", "there"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(bundle, "config.json"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"args": ["/bin/echo", "hi", "there"]`)
	assert.Contains(t, content, `"terminal": false`)
	assert.NotContains(t, content, `"terminal": true`)
}

func TestGenerateSpecFailsWhenRuntimeFails(t *testing.T) {
	runc := fakeRunc(t, `exit 1`)
	a := New(runc)

	err := a.GenerateSpec(t.TempDir(), "/bin/echo", nil)
	require.Error(t, err)
	rerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, RuntimeInvoke, rerr.Kind)
	assert.Equal(t, MethodSpec, rerr.Method)
}

func TestCreateDoesNotWaitForCompletion(t *testing.T) {
	runc := fakeRunc(t, `sleep 1`)
	a := New(runc)

	begin := time.Now()
	err := a.Create(t.TempDir(), "container.pidfile", "id-1")
	require.NoError(t, err)
	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}

func TestStartDoesNotWaitForCompletion(t *testing.T) {
	runc := fakeRunc(t, `sleep 1`)
	a := New(runc)

	begin := time.Now()
	err := a.Start("id-1")
	require.NoError(t, err)
	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}

func TestKillWaitsAndPropagatesFailure(t *testing.T) {
	runc := fakeRunc(t, `exit 3`)
	a := New(runc)

	err := a.Kill("id-1")
	require.Error(t, err)
	rerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, MethodKill, rerr.Method)
	assert.Equal(t, "id-1", rerr.ContainerID)
}

func TestDeleteWaitsForCompletion(t *testing.T) {
	runc := fakeRunc(t, `exit 0`)
	a := New(runc)

	require.NoError(t, a.Delete("id-1"))
}

func TestStateParsesRunningStatus(t *testing.T) {
	runc := fakeRunc(t, `echo '{"status":"running","id":"id-1"}'`)
	a := New(runc)

	status, err := a.State("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Running, status)
}

func TestStatePausingMapsToRunning(t *testing.T) {
	runc := fakeRunc(t, `echo '{"status":"pausing"}'`)
	a := New(runc)

	status, err := a.State("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Running, status)
}

func TestStateUnrecognizedMapsToUnknown(t *testing.T) {
	runc := fakeRunc(t, `echo '{"status":"zombie"}'`)
	a := New(runc)

	status, err := a.State("id-1")
	require.NoError(t, err)
	assert.Equal(t, container.Unknown, status)
}

func TestStateEmptyOutputIsNotFound(t *testing.T) {
	runc := fakeRunc(t, `true`)
	a := New(runc)

	_, err := a.State("id-1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestStateInvalidJSONErrors(t *testing.T) {
	runc := fakeRunc(t, `echo 'not json'`)
	a := New(runc)

	_, err := a.State("id-1")
	require.Error(t, err)
	rerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, RuntimeStatusParse, rerr.Kind)
}
