package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/config"
	"go.viam.com/waypoints/logging"
)

func testApp(out *bytes.Buffer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func TestRejectsMissingOrInvalidSide(t *testing.T) {
	for _, args := range [][]string{
		{"trajectory-markers"},
		{"trajectory-markers", "middle"},
		{"trajectory-markers", "left", "right"},
	} {
		var out bytes.Buffer
		err := testApp(&out).Run(args)
		test.That(t, err, test.ShouldNotBeNil)
		var exitErr cli.ExitCoder
		test.That(t, errors.As(err, &exitErr), test.ShouldBeTrue)
		test.That(t, exitErr.ExitCode(), test.ShouldEqual, 2)
		test.That(t, out.String(), test.ShouldContainSubstring, "<left|right>")
	}
}

func TestRejectsBadConfig(t *testing.T) {
	var out bytes.Buffer
	err := testApp(&out).Run([]string{"trajectory-markers", "--config", filepath.Join(t.TempDir(), "missing.json"), "left"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "reading config file")
}

func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.That(t, err, test.ShouldBeNil)
	addr := listener.Addr().String()
	test.That(t, listener.Close(), test.ShouldBeNil)
	return addr
}

func TestRunServesSession(t *testing.T) {
	addr := freeAddress(t)
	t.Setenv("WAYPOINTS_WEB_BIND_ADDRESS", addr)
	t.Setenv("WAYPOINTS_ARCHIVE_PATH", filepath.Join(t.TempDir(), "archive.db"))
	cfg, err := config.Load("")
	test.That(t, err, test.ShouldBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, arm.Right, cfg, logging.NewTestLogger(t))
	}()

	testutils.WaitForAssertionWithSleep(t, 10*time.Millisecond, 200, func(tb testing.TB) {
		tb.Helper()
		resp, err := http.Post("http://"+addr+"/marker/menu/place_marker_over_gripper", "application/json", nil)
		test.That(tb, err, test.ShouldBeNil)
		defer resp.Body.Close()
		test.That(tb, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	})
	for _, entry := range []string{"add_point", "update_planning_scene", "plan_arm", "publish_trajectory"} {
		resp, err := http.Post("http://"+addr+"/marker/menu/"+entry, "application/json", nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
		test.That(t, resp.Body.Close(), test.ShouldBeNil)
	}
	resp, err := http.Get("http://" + addr + "/archive")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)
	test.That(t, resp.Body.Close(), test.ShouldBeNil)

	cancel()
	test.That(t, <-done, test.ShouldBeNil)
}
