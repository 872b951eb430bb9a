package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcap107/caparezzology/internal/config"
)

func TestCredentialsCommandListsNamesOnly(t *testing.T) {
	dir := t.TempDir()
	for name, secret := range map[string]string{
		"genius_key.id": "s3cret\n",
		"client.id":     "abc",
		"notes.txt":     "ignored",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(secret), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	cfg := config.Default()
	cfg.LogLevel = "error"
	root := newRootCmd(&cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--credentials-dir", dir, "credentials"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := "client\tX-Client-ID\ngenius_key\tAuthorization\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	root := newRootCmd(&cfg)
	root.SetArgs([]string{"--http-timeout", "0s", "credentials"})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected validation error for zero timeout")
	}
}

func TestScrapeCSVUnknownCredential(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "songs.csv")
	body := "title,url,primary_artist\nFuori dal tunnel,https://genius.com/x,Caparezza\n"
	if err := os.WriteFile(csvPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.Default()
	cfg.LogLevel = "error"
	root := newRootCmd(&cfg)
	root.SetArgs([]string{"--credentials-dir", dir, "scrape", "csv", "--auth", "genius_key", "-o", dir, csvPath})

	err := root.ExecuteContext(context.Background())
	if err == nil || err.Error() != `credential "genius_key" not found` {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestFetchWritesCSVAndLogsOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/artists/7":
			_, _ = w.Write([]byte(`{"response":{"artist":{"id":7,"name":"Caparezza","url":"https://genius.com/artists/Caparezza"}}}`))
		case "/artists/7/songs":
			_, _ = w.Write([]byte(`{"response":{"songs":[
				{"id":1,"title":"Fuori dal tunnel","url":"https://genius.com/a","primary_artist":{"id":7,"name":"Caparezza"}},
				{"id":2,"title":"Vieni a ballare in Puglia","url":"https://genius.com/b"}
			],"next_page":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "genius_key.id"), []byte("tok\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	csvPath := filepath.Join(dir, "songs.csv")
	logPath := filepath.Join(dir, "run.log")

	cfg := config.Default()
	root := newRootCmd(&cfg)
	root.SetArgs([]string{
		"--credentials-dir", dir, "--log-file", logPath,
		"fetch", "--api-base-url", srv.URL, "--artist-id", "7", "--page-interval", "0s", "-o", csvPath,
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(b), "Vieni a ballare in Puglia,https://genius.com/b,") {
		t.Fatalf("unexpected CSV:\n%s", b)
	}

	logs, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile log failed: %v", err)
	}
	if n := strings.Count(string(logs), "Saved 2 songs"); n != 1 {
		t.Fatalf("expected one save line, got %d:\n%s", n, logs)
	}
}
