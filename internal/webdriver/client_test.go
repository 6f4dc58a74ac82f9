package webdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newSessionHandler(t *testing.T, sessionID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wd/hub/session" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var req newSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Capabilities.AlwaysMatch.BrowserName() == "" {
			t.Error("request missing browserName capability")
		}

		fmt.Fprintf(w, `{"value":{"sessionId":%q,"capabilities":{}}}`, sessionID)
	}
}

func TestNewSession(t *testing.T) {
	srv := httptest.NewServer(newSessionHandler(t, "abc-123"))
	defer srv.Close()

	client, err := New(context.Background(), srv.URL+"/wd/hub", Capabilities{"browserName": "chrome"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.SessionID() != "abc-123" {
		t.Errorf("SessionID = %q, want abc-123", client.SessionID())
	}
	if client.URL() != srv.URL+"/wd/hub" {
		t.Errorf("URL = %q", client.URL())
	}
}

func TestNewSessionProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"value":{"error":"session not created","message":"no such browser"}}`)
	}))
	defer srv.Close()

	_, err := New(context.Background(), srv.URL, Capabilities{"browserName": "chrome"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsConnError(err) {
		t.Error("protocol error must not be classified as transient")
	}
}

func TestNewSessionConnRefused(t *testing.T) {
	// Grab a port with nothing listening on it.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(context.Background(), addr+"/wd/hub", Capabilities{"browserName": "chrome"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsConnError(err) {
		t.Errorf("dial failure should be *ConnError, got %T: %v", err, err)
	}

	var ce *ConnError
	if !errors.As(err, &ce) {
		t.Fatal("errors.As should unwrap ConnError")
	}
	if ce.Unwrap() == nil {
		t.Error("ConnError should carry the underlying cause")
	}
}

func TestQuit(t *testing.T) {
	var quitPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/wd/hub/session", newSessionHandler(t, "abc-123"))
	mux.HandleFunc("/wd/hub/session/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			quitPath = r.URL.Path
		}
		fmt.Fprint(w, `{"value":null}`)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New(context.Background(), srv.URL+"/wd/hub", Capabilities{"browserName": "firefox"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Quit(context.Background()); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	if quitPath != "/wd/hub/session/abc-123" {
		t.Errorf("Quit hit %q, want /wd/hub/session/abc-123", quitPath)
	}
}
