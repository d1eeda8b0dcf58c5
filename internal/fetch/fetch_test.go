package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vsh/internal/config"
	"vsh/internal/vsh"
)

func testConfig() config.FetchConfig {
	return config.FetchConfig{TimeoutSeconds: 5, UserAgent: "vsh-test", MaxBytes: 1024}
}

func TestRestyFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes.txt":
			io.WriteString(w, "line one\r\nline two\n")
		case "/agent":
			io.WriteString(w, r.Header.Get("User-Agent"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		case "/big":
			io.WriteString(w, strings.Repeat("x", 4096))
		case "/created":
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, "made")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewRestyFetcher(testConfig(), nil)

	tests := []struct {
		name     string
		path     string
		want     string
		wantFail bool
	}{
		{name: "body returned verbatim", path: "/notes.txt", want: "line one\r\nline two\n"},
		{name: "user agent sent", path: "/agent", want: "vsh-test"},
		{name: "empty body", path: "/empty", want: ""},
		{name: "not found", path: "/missing", wantFail: true},
		{name: "non-200 success status", path: "/created", wantFail: true},
		{name: "body over limit", path: "/big", wantFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fetch(context.Background(), srv.URL+tt.path)
			if tt.wantFail {
				if !errors.Is(err, vsh.ErrConnectionFailed) {
					t.Errorf("Fetch() error = %v, want ErrConnectionFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRestyFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRestyFetcher(testConfig(), nil).Fetch(context.Background(), url+"/x")
	if !errors.Is(err, vsh.ErrConnectionFailed) {
		t.Errorf("Fetch() error = %v, want ErrConnectionFailed", err)
	}
}

func TestRestyFetcher_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRestyFetcher(testConfig(), nil).Fetch(ctx, srv.URL)
	if !errors.Is(err, vsh.ErrConnectionFailed) {
		t.Errorf("Fetch() error = %v, want ErrConnectionFailed", err)
	}
}
