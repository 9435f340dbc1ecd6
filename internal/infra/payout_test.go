package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPayoutClient_Transfer(t *testing.T) {
	t.Run("successful transfer", func(t *testing.T) {
		var received map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("Expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected JSON content type, got %q", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"status": "ok", "reference": "tx-1"})
		}))
		defer server.Close()

		client := NewPayoutClient(server.URL, "USD", 5*time.Second)
		if err := client.Transfer(context.Background(), "S", 1234); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}

		if received["account"] != "S" {
			t.Errorf("account = %v, want S", received["account"])
		}
		// 1234 cents travel as 12.34 currency units; shopspring/decimal
		// marshals as a quoted string by default.
		if received["amount"] != "12.34" {
			t.Errorf("amount = %v, want \"12.34\"", received["amount"])
		}
		if received["currency"] != "USD" {
			t.Errorf("currency = %v, want USD", received["currency"])
		}
	})

	t.Run("gateway error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "insufficient float", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewPayoutClient(server.URL, "USD", 5*time.Second)
		if err := client.Transfer(context.Background(), "S", 100); err == nil {
			t.Error("Expected error for 502 response")
		}
	})

	t.Run("gateway rejection in body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "rejected"})
		}))
		defer server.Close()

		client := NewPayoutClient(server.URL, "USD", 5*time.Second)
		if err := client.Transfer(context.Background(), "S", 100); err == nil {
			t.Error("Expected error for rejected status")
		}
	})

	t.Run("unreachable gateway", func(t *testing.T) {
		client := NewPayoutClient("http://127.0.0.1:1", "USD", time.Second)
		if err := client.Transfer(context.Background(), "S", 100); err == nil {
			t.Error("Expected error for unreachable gateway")
		}
	})
}
