package notion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidateDatabaseID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"compact hex", "1234567890abcdef1234567890abcdef", "1234567890abcdef1234567890abcdef", true},
		{"dashed form", "12345678-90ab-cdef-1234-567890abcdef", "1234567890abcdef1234567890abcdef", true},
		{"with spaces", " 1234567890abcdef1234567890abcdef ", "1234567890abcdef1234567890abcdef", true},
		{"too short", "1234abcd", "", false},
		{"uppercase rejected", "1234567890ABCDEF1234567890ABCDEF", "", false},
		{"empty", "", "", false},
		{"non hex", "zzzz567890abcdef1234567890abcdef", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateDatabaseID(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidatePageID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"dashed uuid", "12345678-90ab-cdef-1234-567890abcdef", true},
		{"compact hex", "1234567890abcdef1234567890abcdef", true},
		{"misplaced dashes", "123456-7890ab-cdef-1234-567890abcdef", false},
		{"too short", "12345678-90ab", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidatePageID(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestQueryDatabaseDecodesRecords(t *testing.T) {
	dbID := strings.Repeat("a", 32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/databases/"+dbID+"/query" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Notion-Version"); got != apiVersion {
			t.Fatalf("unexpected api version header: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		w.Write([]byte(`{
			"results": [
				{"id": "page-1", "url": "https://x/1", "created_time": "2025-01-01T00:00:00.000Z", "properties": {}},
				{"id": "page-2", "url": "https://x/2", "created_time": "2025-01-02T00:00:00.000Z", "properties": {}}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Token: "secret", APIRoot: server.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	records, err := client.QueryDatabase(context.Background(), dbID, "", "")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "page-1" || records[1].ID != "page-2" {
		t.Fatalf("unexpected record ids: %+v", records)
	}
}

func TestCallStatusErrorIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(Config{Token: "bad", APIRoot: server.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	_, err = client.QueryDatabase(context.Background(), strings.Repeat("a", 32), "", "")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}
