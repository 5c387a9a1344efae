package api

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/willdeuschle/cruise/pkg/manager"
	"github.com/willdeuschle/cruise/pkg/rpc"
)

func fakeRunc(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runc script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-runc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// dialServer starts a Server on an ephemeral loopback port and returns a
// client dialed against it with the JSON codec content-subtype.
func dialServer(t *testing.T, mgr *manager.ContainerManager) rpc.ContainerManagerClient {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(mgr)
	go srv.ServeListener(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return rpc.NewContainerManagerClient(conn)
}

func TestCreateGetDeleteOverRPC(t *testing.T) {
	runc := fakeRunc(t, `
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
`)
	mgr, err := manager.New(manager.Config{RootDir: t.TempDir(), RuntimePath: runc})
	require.NoError(t, err)

	rootfs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(rootfs, "marker"), []byte("x"), 0o644))

	client := dialServer(t, mgr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	createResp, err := client.CreateContainer(ctx, &rpc.CreateContainerRequest{
		Name:       "c",
		Command:    "/bin/echo",
		Args:       []string{"hi"},
		RootfsPath: rootfs,
	})
	require.NoError(t, err)
	require.NotEmpty(t, createResp.ContainerID)

	getResp, err := client.GetContainer(ctx, &rpc.ContainerIDRequest{ContainerID: createResp.ContainerID})
	require.NoError(t, err)
	require.Equal(t, "Created", getResp.Status)
	require.Equal(t, "Not started yet.", getResp.StartedAt)

	delResp, err := client.DeleteContainer(ctx, &rpc.ContainerIDRequest{ContainerID: createResp.ContainerID})
	require.NoError(t, err)
	require.True(t, delResp.Success)

	_, err = client.GetContainer(ctx, &rpc.ContainerIDRequest{ContainerID: createResp.ContainerID})
	require.Error(t, err)
}
