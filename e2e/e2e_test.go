//go:build integration

package e2e_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adamwoolhether/apiclient"
	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/config"
	"github.com/adamwoolhether/apiclient/internal/validate"
)

// -------------------------------------------------------------------------
// Types
// -------------------------------------------------------------------------

// widgetError is the domain error kind the tests build clients with.
type widgetError struct {
	msg string
}

func (e *widgetError) Error() string { return e.msg }

func newWidgetError(msg string) *widgetError { return &widgetError{msg: msg} }

type user struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type itemResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type validateReq struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

const downloadContent = "hello, this is test download content!"

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func newTestApp(t *testing.T) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /echo", echoHandler)
	mux.HandleFunc("GET /items/{id}/{name}", itemHandler)
	mux.HandleFunc("GET /error/not-found", notFoundHandler)
	mux.HandleFunc("POST /upload", uploadHandler)
	mux.HandleFunc("GET /download", downloadHandler)
	mux.HandleFunc("GET /whoami", whoamiHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL
}

func newClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client[*widgetError] {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	c, err := apiclient.New(baseURL, "Bearer e2e", newWidgetError, append([]client.Option{client.WithLogger(log)}, opts...)...)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// -------------------------------------------------------------------------
// Handlers
// -------------------------------------------------------------------------

func echoHandler(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

func itemHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, itemResp{
		ID:   r.PathValue("id"),
		Name: r.PathValue("name"),
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "widget not found", http.StatusNotFound)
}

func uploadHandler(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile(client.FileFieldName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "%s:%d", hdr.Filename, len(b))
}

func downloadHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(downloadContent)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, downloadContent)
}

func whoamiHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"authorization": r.Header.Get("Authorization"),
		"user_agent":    r.Header.Get("User-Agent"),
		"request_id":    r.Header.Get("X-Request-Id"),
	})
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_JSONRoundTrip(t *testing.T) {
	c := newClient(t, newTestApp(t))

	sent := user{Name: "Alice", Email: "alice@test.com", Age: 30}

	got, err := client.Post[user](t.Context(), c, "echo", sent)
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	if got != sent {
		t.Errorf("round-trip mismatch:\n  got:  %+v\n  want: %+v", got, sent)
	}
}

func TestE2E_PathParams(t *testing.T) {
	c := newClient(t, newTestApp(t)+"/items/")

	got, err := client.Get[itemResp](t.Context(), c, "42/widget")
	if err != nil {
		t.Fatalf("executing request: %v", err)
	}

	if diff := cmp.Diff(itemResp{ID: "42", Name: "widget"}, got); diff != "" {
		t.Errorf("unexpected item (-want +got):\n%s", diff)
	}
}

func TestE2E_ErrorResponse(t *testing.T) {
	c := newClient(t, newTestApp(t))

	_, err := client.Get[itemResp](t.Context(), c, "error/not-found")

	var we *widgetError
	if !errors.As(err, &we) {
		t.Fatalf("expected *widgetError, got %T: %v", err, err)
	}

	if exp := "[error/not-found] (404): widget not found\n"; we.Error() != exp {
		t.Errorf("message = %q, want %q", we.Error(), exp)
	}
}

func TestE2E_Validation(t *testing.T) {
	c := newClient(t, newTestApp(t), client.WithValidation())

	_, err := client.Post[validateReq](t.Context(), c, "echo", validateReq{Email: "nope"})

	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected validate.FieldErrors, got %T: %v", err, err)
	}
	if len(fieldErrs) != 2 {
		t.Errorf("expected 2 field errors, got %v", fieldErrs.Fields())
	}
}

func TestE2E_Upload(t *testing.T) {
	c := newClient(t, newTestApp(t))

	content, err := c.SendRaw(t.Context(), http.MethodPost, "upload", client.File(strings.NewReader("twelve bytes"), "notes.txt"))
	if err != nil {
		t.Fatalf("uploading: %v", err)
	}

	got, err := content.Text()
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if got != "notes.txt:12" {
		t.Errorf("response = %q, want %q", got, "notes.txt:12")
	}
}

func TestE2E_Download(t *testing.T) {
	c := newClient(t, newTestApp(t))

	sum := sha256.Sum256([]byte(downloadContent))
	dest := filepath.Join(t.TempDir(), "downloaded.txt")

	err := c.Download(t.Context(), "download", dest,
		client.WithChecksum(sha256.New(), hex.EncodeToString(sum[:])),
		client.WithProgress(),
	)
	if err != nil {
		t.Fatalf("downloading: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != downloadContent {
		t.Errorf("content = %q, want %q", got, downloadContent)
	}
}

func TestE2E_FullStackFromConfig(t *testing.T) {
	baseURL := newTestApp(t)
	reg := prometheus.NewRegistry()

	cfg := config.Config{
		BaseURL:         baseURL,
		Token:           "token-verbatim",
		Timeout:         5 * time.Second,
		UserAgent:       "e2e/1.0",
		RequestIDHeader: "X-Request-ID",
		Throttle:        config.Throttle{RPS: 50, Burst: 5},
	}

	c, err := apiclient.NewFromConfig(cfg, newWidgetError, client.WithMetrics(reg))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	defer c.Close()

	for range 3 {
		got, err := client.Get[map[string]string](context.Background(), c, "whoami")
		if err != nil {
			t.Fatalf("executing request: %v", err)
		}

		if got["authorization"] != "token-verbatim" {
			t.Errorf("authorization = %q", got["authorization"])
		}
		if got["user_agent"] != "e2e/1.0" {
			t.Errorf("user agent = %q", got["user_agent"])
		}
		if got["request_id"] == "" {
			t.Error("expected a request id")
		}
	}

	exp := `
# HELP apiclient_requests_total API requests partitioned by status code and method.
# TYPE apiclient_requests_total counter
apiclient_requests_total{code="200",method="get"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(exp), "apiclient_requests_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}
