//go:build e2e

// Package e2e contains end-to-end tests against running services:
// ingestion → Kafka → pairgen → PostgreSQL, read back through ingestion.
//
// Prerequisites:
//   - PostgreSQL running
//   - Kafka running with the document-occurrences topic
//   - ingestion and pairgen started with the same config, pairgen with
//     WP_SERVER_PORT=8083 and WP_METRICS_PORT=9091
//
// Run with:
//
//	go test -v -tags=e2e -timeout=120s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

type e2eConfig struct {
	IngestionURL string
	PairgenURL   string
}

func loadE2EConfig() e2eConfig {
	return e2eConfig{
		IngestionURL: envOrDefault("E2E_INGESTION_URL", "http://localhost:8081"),
		PairgenURL:   envOrDefault("E2E_PAIRGEN_URL", "http://localhost:8083"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

// TestServiceHealth verifies both services respond to health checks.
func TestServiceHealth(t *testing.T) {
	cfg := loadE2EConfig()

	services := []struct {
		name string
		url  string
	}{
		{"ingestion /health", cfg.IngestionURL + "/health"},
		{"ingestion /ready", cfg.IngestionURL + "/ready"},
		{"pairgen /health", cfg.PairgenURL + "/health"},
		{"pairgen /ready", cfg.PairgenURL + "/ready"},
	}

	client := &http.Client{Timeout: 5 * time.Second}

	for _, svc := range services {
		t.Run(svc.name, func(t *testing.T) {
			resp, err := client.Get(svc.url)
			if err != nil {
				t.Skipf("service unavailable: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("expected 200, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

// TestSynchronousPairs checks the four-word example against a live service.
func TestSynchronousPairs(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 5 * time.Second}

	payload := `{"occurrences":[["This","d1",0],["is","d1",1],["a","d1",2],["test","d1",3]]}`
	resp, err := client.Post(cfg.IngestionURL+"/api/v1/pairs", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Skipf("ingestion service unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Count != 6 {
		t.Errorf("expected 6 pairs, got %d", result.Count)
	}
}

// TestIngestAndReadPairs ingests a document and polls until pairgen has
// stored its pairs.
func TestIngestAndReadPairs(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	if _, err := client.Get(cfg.IngestionURL + "/health"); err != nil {
		t.Skipf("ingestion service unavailable: %v", err)
	}

	docID := fmt.Sprintf("e2e-%d", time.Now().UnixNano())
	payload := fmt.Sprintf(`{"document_id":%q,"title":"Quick","body":"brown fox jumps"}`, docID)
	resp, err := client.Post(cfg.IngestionURL+"/api/v1/documents", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ingest request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	t.Log("waiting for pairs to be stored...")
	var count int
	for attempt := 0; attempt < 30; attempt++ {
		time.Sleep(1 * time.Second)

		pairsResp, err := client.Get(cfg.IngestionURL + "/api/v1/documents/" + docID + "/pairs")
		if err != nil {
			t.Logf("attempt %d: request failed: %v", attempt, err)
			continue
		}
		if pairsResp.StatusCode == http.StatusServiceUnavailable {
			pairsResp.Body.Close()
			t.Skip("ingestion has no pair store configured")
		}
		var result struct {
			Count int `json:"count"`
		}
		json.NewDecoder(pairsResp.Body).Decode(&result)
		pairsResp.Body.Close()

		if result.Count > 0 {
			count = result.Count
			t.Logf("pairs stored after %d seconds", attempt+1)
			break
		}
	}

	if count == 0 {
		t.Log("pairs not stored within 30s; pairgen may not be connected to the same broker")
		return
	}
	if count != 6 {
		t.Errorf("expected 6 pairs, got %d", count)
	}
}
