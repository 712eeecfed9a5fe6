package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"recitebot/internal/client"
	"recitebot/internal/studyset"
)

func TestSaveBookSuccess(t *testing.T) {
	var received struct {
		BookName string             `json:"bookName"`
		Chapters []studyset.Chapter `json:"chapters"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/save-book" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "book saved as Bio.json"})
	}))
	defer server.Close()

	chapters := studyset.SampleChapters()
	msg, err := client.New(server.URL+"/", client.WithToken("tok")).SaveBook(context.Background(), "Bio", chapters)
	if err != nil {
		t.Fatalf("SaveBook returned error: %v", err)
	}
	if msg != "book saved as Bio.json" {
		t.Fatalf("unexpected message %q", msg)
	}
	if received.BookName != "Bio" {
		t.Fatalf("unexpected book name %q", received.BookName)
	}
	if diff := cmp.Diff(chapters, received.Chapters); diff != "" {
		t.Fatalf("unexpected chapters (-want +got):\n%s", diff)
	}
}

func TestSaveBookFailureCarriesServerMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"X"}`, "X"},
		{"empty body", ``, "save failed"},
		{"not json", `<html>oops</html>`, "save failed"},
		{"blank error", `{"error":"  "}`, "save failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.New(server.URL).SaveBook(context.Background(), "Bio", studyset.SampleChapters())
			var respErr *client.ResponseError
			if !errors.As(err, &respErr) {
				t.Fatalf("expected *ResponseError, got %v", err)
			}
			if respErr.StatusCode != http.StatusBadRequest || respErr.Message != tt.want {
				t.Fatalf("unexpected error %+v", respErr)
			}
		})
	}
}

func TestSaveBookRejectsEmptyBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := client.New(server.URL)
	if _, err := c.SaveBook(context.Background(), "Bio", nil); !errors.Is(err, client.ErrNoChapters) {
		t.Fatalf("expected ErrNoChapters, got %v", err)
	}
	if _, err := c.ProcessText(context.Background(), " \n"); !errors.Is(err, client.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestSaveBookTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := client.New(url).SaveBook(context.Background(), "Bio", studyset.SampleChapters())
	var respErr *client.ResponseError
	if err == nil || errors.As(err, &respErr) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestProcessText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "Hello world." {
			t.Errorf("unexpected text %q", body["text"])
		}
		_, _ = w.Write([]byte(`[{"Title":"Ch1","Content":"Hello world."}]`))
	}))
	defer server.Close()

	c := client.New(server.URL)
	chapters, err := c.ProcessText(context.Background(), "Hello world.")
	if err != nil {
		t.Fatalf("ProcessText returned error: %v", err)
	}
	want := []studyset.Chapter{{Title: "Ch1", Content: "Hello world."}}
	if diff := cmp.Diff(want, chapters); diff != "" {
		t.Fatalf("unexpected chapters (-want +got):\n%s", diff)
	}

	raw, err := c.Process(context.Background(), "Hello world.")
	if err != nil || raw != `[{"Title":"Ch1","Content":"Hello world."}]` {
		t.Fatalf("Process = %q, %v", raw, err)
	}
}

func TestProcessTextFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.New(server.URL).ProcessText(context.Background(), "text")
	var respErr *client.ResponseError
	if !errors.As(err, &respErr) || respErr.Message != "processing failed" {
		t.Fatalf("expected generic processing failure, got %v", err)
	}
}
