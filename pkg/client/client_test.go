package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/willdeuschle/cruise/pkg/api"
	"github.com/willdeuschle/cruise/pkg/manager"
)

func fakeRunc(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runc script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-runc")
	script := `#!/bin/sh
case "$1" in
  spec)
    shift
    bundle=""
    while [ "$#" -gt 0 ]; do
      case "$1" in
        --bundle) bundle="$2"; shift 2 ;;
        *) shift ;;
      esac
    done
    echo '{"process":{"args": ["sh"],"terminal": true}}' > "$bundle/config.json"
    ;;
  state) echo '{"status":"created"}' ;;
  *) exit 0 ;;
esac
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func startTestServer(t *testing.T) string {
	t.Helper()
	mgr, err := manager.New(manager.Config{RootDir: t.TempDir(), RuntimePath: fakeRunc(t)})
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := api.NewServer(mgr)
	addr := lis.Addr().String()
	go srv.ServeListener(lis)
	t.Cleanup(srv.Stop)

	return addr
}

func TestClientListContainersEmpty(t *testing.T) {
	addr := startTestServer(t)

	c, err := NewClient(addr)
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	list, err := c.ListContainers(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
