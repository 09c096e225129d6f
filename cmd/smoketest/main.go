// smoketest checks a running server end to end.
// Run with: go run ./cmd/smoketest
// Targets SMOKE_BASE_URL, or http://localhost:$PORT (default 3000).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func baseURL() string {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		return v
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return "http://localhost:" + port
}

func main() {
	base := baseURL()
	passed := 0
	failed := 0

	run := func(name string, fn func(string) error) {
		fmt.Printf("  %-52s", name)
		if err := fn(base); err != nil {
			fmt.Printf("FAIL — %v\n", err)
			failed++
		} else {
			fmt.Printf("OK\n")
			passed++
		}
	}

	fmt.Printf("\n── %s ─────────────────────────────────────────\n", base)
	run("GET /health returns 200 + {status:healthy}", checkHealth)
	run("POST /check-client unknown email is {match:false}", checkClientMiss)
	run("POST /chat without userMessage returns 400", checkChatValidation)
	run("GET /regions lists Alabama", checkRegionList)
	run("GET /regions/alabama.json has a form library", checkRegion)

	fmt.Printf("\n%d passed, %d failed\n\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func checkHealth(base string) error {
	code, body, err := call(http.MethodGet, base+"/health", nil)
	if err != nil {
		return fmt.Errorf("could not reach server (is it running?): %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", code)
	}
	var v map[string]string
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if v["status"] != "healthy" {
		return fmt.Errorf("expected status=healthy, got %q", v["status"])
	}
	return nil
}

func checkClientMiss(base string) error {
	code, body, err := call(http.MethodPost, base+"/check-client",
		map[string]string{"email": "smoke-test-nobody@example.invalid"})
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("expected 200, got %d: %s", code, body)
	}
	var v struct {
		Match bool `json:"match"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if v.Match {
		return fmt.Errorf("expected match=false")
	}
	return nil
}

func checkChatValidation(base string) error {
	code, body, err := call(http.MethodPost, base+"/chat", map[string]string{"userMessage": ""})
	if err != nil {
		return err
	}
	if code != http.StatusBadRequest {
		return fmt.Errorf("expected 400, got %d: %s", code, body)
	}
	return nil
}

func checkRegionList(base string) error {
	code, body, err := call(http.MethodGet, base+"/regions", nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", code)
	}
	var v struct {
		Regions []string `json:"regions"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	for _, r := range v.Regions {
		if r == "Alabama" {
			return nil
		}
	}
	return fmt.Errorf("Alabama missing from %v", v.Regions)
}

func checkRegion(base string) error {
	code, body, err := call(http.MethodGet, base+"/regions/alabama.json", nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", code)
	}
	var v struct {
		Name  string         `json:"regionName"`
		Forms map[string]any `json:"formLibrary"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if v.Name != "Alabama" || len(v.Forms) == 0 {
		return fmt.Errorf("unexpected bundle: name=%q forms=%d", v.Name, len(v.Forms))
	}
	return nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func call(method, url string, payload any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return resp.StatusCode, b, err
}
