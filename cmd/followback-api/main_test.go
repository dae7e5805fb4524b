package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/followback/internal/command"
)

func quietLogs(t *testing.T) {
	t.Helper()
	orig := command.LogWriter
	command.LogWriter = io.Discard
	t.Cleanup(func() { command.LogWriter = orig })
}

func stubListen(t *testing.T, fn func(addr string, handler http.Handler) error) {
	t.Helper()
	orig := listenAndServe
	t.Cleanup(func() { listenAndServe = orig })
	listenAndServe = fn
}

func TestRunStartsServer(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	t.Setenv("FOLLOWBACK_SWEEPER", "off")

	called := false
	stubListen(t, func(addr string, handler http.Handler) error {
		called = true
		if addr != "127.0.0.1:0" {
			t.Fatalf("unexpected addr: %s", addr)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for field, content := range map[string]string{
			"followers_file": `[]`,
			"following_file": `{"relationships_following":[{"string_list_data":[{"href":"x","value":"X"}]}]}`,
		} {
			fw, _ := mw.CreateFormFile(field, field+".json")
			_, _ = io.WriteString(fw, content)
		}
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || rr.Body.String() != `{"x":"X"}` {
			t.Fatalf("unexpected upload response: %d %s", rr.Code, rr.Body.String())
		}
		return nil
	})

	if err := run(context.Background(), []string{"followback-api", "--addr", "127.0.0.1:0", "--upload-dir", uploadDir}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !called {
		t.Fatal("listenAndServe not called")
	}
	if _, err := os.Stat(uploadDir); err != nil {
		t.Fatalf("expected upload dir created at startup: %v", err)
	}
}

func TestRunWithSweeperStopsCleanly(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	t.Setenv("FOLLOWBACK_UPLOAD_DIR", t.TempDir())
	t.Setenv("FOLLOWBACK_SWEEPER", "on")

	stubListen(t, func(string, http.Handler) error { return nil })
	if err := run(context.Background(), []string{"followback-api"}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestRunConfigError(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	t.Setenv("FOLLOWBACK_SWEEP_INTERVAL", "bad")
	stubListen(t, func(string, http.Handler) error {
		t.Fatal("server should not start")
		return nil
	})
	if err := run(context.Background(), []string{"followback-api"}); err == nil {
		t.Fatal("expected config error")
	}
}

func TestRunInvalidLockMode(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	t.Setenv("FOLLOWBACK_UPLOAD_DIR", t.TempDir())
	t.Setenv("FOLLOWBACK_LOCK", "zookeeper")
	if err := run(context.Background(), []string{"followback-api"}); err == nil {
		t.Fatal("expected lock config error")
	}
}

func TestRunListenError(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	t.Setenv("FOLLOWBACK_UPLOAD_DIR", t.TempDir())
	t.Setenv("FOLLOWBACK_SWEEPER", "off")

	stubListen(t, func(string, http.Handler) error { return http.ErrServerClosed })
	if err := run(context.Background(), []string{"followback-api"}); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestMainCallsRun(t *testing.T) {
	quietLogs(t)
	t.Chdir(t.TempDir())
	t.Setenv("FOLLOWBACK_UPLOAD_DIR", t.TempDir())
	t.Setenv("FOLLOWBACK_SWEEPER", "off")

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"followback-api"}
	stubListen(t, func(string, http.Handler) error { return nil })

	main()
}
