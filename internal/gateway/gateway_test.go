package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Post(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		wantErr  bool
		want     string
	}{
		{
			name:     "success with body",
			status:   http.StatusOK,
			response: `{"statusCode":"SUCCESS"}`,
			want:     `{"statusCode":"SUCCESS"}`,
		},
		{
			name:   "success with empty body",
			status: http.StatusOK,
			want:   "",
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			wantErr: true,
		},
		{
			name:    "client error",
			status:  http.StatusBadRequest,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				buf, _ := io.ReadAll(r.Body)
				gotBody = string(buf)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client := NewClient()
			got, err := client.Post(context.Background(), server.URL, `{"DeviceId":"D1"}`)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Post() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Post() = %q, want %q", got, tt.want)
			}
			if gotBody != `{"DeviceId":"D1"}` {
				t.Errorf("Post() sent body %q, want the raw payload", gotBody)
			}
		})
	}
}

func TestClient_Post_EmptyURL(t *testing.T) {
	client := NewClient()

	_, err := client.Post(context.Background(), "", "")
	if err == nil {
		t.Fatal("Post() should return error for empty url")
	}
	if !strings.Contains(err.Error(), "url is required") {
		t.Errorf("Post() error = %v, want url required message", err)
	}
}

func TestClient_Post_TransportError(t *testing.T) {
	client := NewClient()

	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := client.Post(context.Background(), url, ""); err == nil {
		t.Error("Post() should return error on transport failure")
	}
}
