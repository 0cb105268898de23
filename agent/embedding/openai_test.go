package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openaisdk.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := openaisdk.NewClient(
		option.WithAPIKey("sk-test"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &client
}

func TestEmbedReturnsVector(t *testing.T) {
	t.Parallel()

	var gotInput []string
	var gotDimensions int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var body struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotInput = body.Input
		gotDimensions = body.Dimensions
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,-1]}],"usage":{"prompt_tokens":3,"total_tokens":3}}`)
	})

	e := NewOpenAI(client, "text-embedding-3-small", 3)
	got := e.Embed(context.Background(), "where is\nthe mensa ")

	want := []float32{0.5, 0.25, -1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vector[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(gotInput) != 1 || gotInput[0] != "where is the mensa" {
		t.Fatalf("unexpected request input: %#v", gotInput)
	}
	if gotDimensions != 3 {
		t.Fatalf("dimensions = %d, want 3", gotDimensions)
	}
}

func TestEmbedEmptyTextSkipsBackend(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	e := NewOpenAI(client, "text-embedding-3-small", 1536)
	got := e.Embed(context.Background(), " \n ")
	assertZero(t, got, 1536)
	if calls.Load() != 0 {
		t.Fatalf("backend called %d times for blank input", calls.Load())
	}
}

func TestEmbedBackendErrorDegradesToZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`)
	})

	e := NewOpenAI(client, "text-embedding-3-small", 1536)
	assertZero(t, e.Embed(context.Background(), "opening hours"), 1536)
}

func TestEmbedWrongDimensionsDegradesToZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"m","data":[{"object":"embedding","index":0,"embedding":[1,2]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`)
	})

	e := NewOpenAI(client, "text-embedding-3-small", 4)
	assertZero(t, e.Embed(context.Background(), "hello"), 4)
}

func TestEmbedNilClient(t *testing.T) {
	t.Parallel()

	e := NewOpenAI(nil, "text-embedding-3-small", 8)
	assertZero(t, e.Embed(context.Background(), "hello"), 8)

	if _, err := e.EmbedStrings(context.Background(), []string{"hello"}); err == nil || !strings.Contains(err.Error(), "openai client") {
		t.Fatalf("EmbedStrings() error = %v, want missing client", err)
	}
}

func assertZero(t *testing.T, v []float32, n int) {
	t.Helper()
	if len(v) != n {
		t.Fatalf("len = %d, want %d", len(v), n)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("vector[%d] = %v, want 0", i, x)
		}
	}
}
