package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/signet-dev/signet/internal/document"
	"github.com/signet-dev/signet/internal/home"
	"github.com/signet-dev/signet/internal/match"
	"github.com/signet-dev/signet/internal/providers"
	"github.com/signet-dev/signet/internal/server/endpoints"
	"github.com/signet-dev/signet/internal/store"
)

// mockExtractionResponse is a well-formed model reply for the signing
// extraction prompt. The claimed counts are deliberately wrong so the test
// also covers server-side normalization.
const mockExtractionResponse = `{
	"status": "success",
	"message": "Found 2 signing rules",
	"sections_found": [
		{"section_name": "Signing Authority", "section_number": "4.2", "location": "page 1"}
	],
	"total_rules": 99,
	"approved_count": 99,
	"approved_rules": [],
	"all_rules": [
		{"rule_number": 1, "rule_text": "Contracts up to $50,000", "checkbox_content": "[X] Approved", "section": "Signing Authority", "is_approved": true},
		{"rule_number": 2, "rule_text": "Contracts above $50,000", "checkbox_content": "[ ] Approved", "section": "Signing Authority", "is_approved": false}
	]
}`

// TestServer_FullLifecycle starts a real server against a temp home
// directory and walks the whole API surface over HTTP.
func TestServer_FullLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}

	port := "18090"
	srv, err := New(Config{
		Host: "127.0.0.1",
		Port: port,
		Home: h,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// The extraction endpoint resolves providers by name; register a mock
	// so no real API key is needed.
	mock := providers.NewMockClient()
	mock.ResponseText = mockExtractionResponse
	srv.Registry().Register("mock", mock)

	serverErr := make(chan error, 1)
	serverCtx, serverCancel := context.WithCancel(ctx)

	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 15*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	t.Run("health_endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var health endpoints.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("health.Status = %q, want %q", health.Status, "ok")
		}
	})

	t.Run("ready_endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/ready")
		if err != nil {
			t.Fatalf("ready check failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("ready status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var health endpoints.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("health.Status = %q, want %q", health.Status, "ok")
		}
		if health.Database != "ok" {
			t.Errorf("health.Database = %q, want %q", health.Database, "ok")
		}
	})

	t.Run("status_endpoint", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/status")
		if err != nil {
			t.Fatalf("status check failed: %v", err)
		}
		defer resp.Body.Close()

		var status endpoints.StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if status.Server != "running" {
			t.Errorf("status.Server = %q, want %q", status.Server, "running")
		}
		if status.Database != "healthy" {
			t.Errorf("status.Database = %q, want %q", status.Database, "healthy")
		}
		if len(status.Providers) != 1 || status.Providers[0] != "mock" {
			t.Errorf("status.Providers = %v, want [mock]", status.Providers)
		}
	})

	var docID string

	t.Run("upload_document", func(t *testing.T) {
		text := "The following officers may sign contracts.\f[X] Approved: Contracts up to $50,000"
		doc := uploadDocument(t, baseURL, "authority.txt", text)

		if doc.ID == "" {
			t.Fatal("uploaded document has no ID")
		}
		if doc.PageCount != 2 {
			t.Errorf("PageCount = %d, want 2", doc.PageCount)
		}
		docID = doc.ID
	})

	t.Run("get_document", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/documents/" + docID)
		if err != nil {
			t.Fatalf("get document failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get document status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var rec store.DocumentRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if rec.Filename != "authority.txt" {
			t.Errorf("Filename = %q, want %q", rec.Filename, "authority.txt")
		}
		if len(rec.Pages) != 2 {
			t.Errorf("len(Pages) = %d, want 2", len(rec.Pages))
		}
	})

	t.Run("get_page", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/documents/" + docID + "/pages/2")
		if err != nil {
			t.Fatalf("get page failed: %v", err)
		}
		defer resp.Body.Close()

		var page endpoints.PageResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if page.Page != 2 || page.PageCount != 2 {
			t.Errorf("page = %d/%d, want 2/2", page.Page, page.PageCount)
		}
		if !strings.Contains(page.Text, "$50,000") {
			t.Errorf("page text = %q, want rule text", page.Text)
		}
	})

	t.Run("get_page_out_of_range", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/documents/" + docID + "/pages/9")
		if err != nil {
			t.Fatalf("get page failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	var extractionID string

	t.Run("extract", func(t *testing.T) {
		body, _ := json.Marshal(endpoints.ExtractRequest{Provider: "mock"})
		resp, err := http.Post(baseURL+"/api/documents/"+docID+"/extract", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			t.Fatalf("extract status = %d, body = %s", resp.StatusCode, raw)
		}

		var er endpoints.ExtractResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if er.Provider != "mock" {
			t.Errorf("Provider = %q, want %q", er.Provider, "mock")
		}
		if er.Result.Status != "success" {
			t.Errorf("Result.Status = %q, want %q", er.Result.Status, "success")
		}
		// Counts come from all_rules, not from what the model claimed.
		if er.Result.TotalRules != 2 {
			t.Errorf("TotalRules = %d, want 2", er.Result.TotalRules)
		}
		if er.Result.ApprovedCount != 1 {
			t.Errorf("ApprovedCount = %d, want 1", er.Result.ApprovedCount)
		}
		extractionID = er.ExtractionID
	})

	t.Run("list_extractions", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/extractions?document_id=" + docID)
		if err != nil {
			t.Fatalf("list extractions failed: %v", err)
		}
		defer resp.Body.Close()

		var exts []store.Extraction
		if err := json.NewDecoder(resp.Body).Decode(&exts); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(exts) != 1 {
			t.Fatalf("len(exts) = %d, want 1", len(exts))
		}
		if exts[0].ID != extractionID {
			t.Errorf("extraction ID = %q, want %q", exts[0].ID, extractionID)
		}
	})

	t.Run("export_extraction", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/extractions/" + extractionID + "/export")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("export status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		ct := resp.Header.Get("Content-Type")
		if !strings.Contains(ct, "spreadsheetml") {
			t.Errorf("Content-Type = %q, want an xlsx type", ct)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("failed to read export body: %v", err)
		}
		// XLSX files are zip archives.
		if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
			t.Error("export body is not a zip archive")
		}
	})

	t.Run("llm_calls_recorded", func(t *testing.T) {
		// Recording is fire-and-forget; give the goroutine a moment.
		deadline := time.Now().Add(5 * time.Second)
		for {
			calls, err := srv.Store().ListLLMCalls(ctx, store.LLMCallFilter{DocumentID: docID})
			if err != nil {
				t.Fatalf("ListLLMCalls() error = %v", err)
			}
			if len(calls) > 0 {
				if calls[0].PromptKey != "signing_extraction" {
					t.Errorf("PromptKey = %q, want %q", calls[0].PromptKey, "signing_extraction")
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("no LLM call recorded")
			}
			time.Sleep(50 * time.Millisecond)
		}
	})

	t.Run("similar_endpoint", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for _, name := range []string{"a.png", "b.png"} {
			part, err := mw.CreateFormFile("images", name)
			if err != nil {
				t.Fatalf("CreateFormFile() error = %v", err)
			}
			if err := png.Encode(part, image.NewGray(image.Rect(0, 0, 64, 64))); err != nil {
				t.Fatalf("png.Encode() error = %v", err)
			}
		}
		mw.Close()

		resp, err := http.Post(baseURL+"/api/similar", mw.FormDataContentType(), &buf)
		if err != nil {
			t.Fatalf("similar failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(resp.Body)
			t.Fatalf("similar status = %d, body = %s", resp.StatusCode, raw)
		}

		var result match.Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		// Featureless images never match.
		if result.Matches != 0 || result.Similar {
			t.Errorf("result = %+v, want 0 matches and not similar", result)
		}
		if result.Threshold != match.DefaultThreshold {
			t.Errorf("Threshold = %d, want %d", result.Threshold, match.DefaultThreshold)
		}
	})

	t.Run("delete_document", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodDelete, baseURL+"/api/documents/"+docID, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}

		getResp, err := http.Get(baseURL + "/api/documents/" + docID)
		if err != nil {
			t.Fatalf("get after delete failed: %v", err)
		}
		getResp.Body.Close()
		if getResp.StatusCode != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want %d", getResp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("is_running", func(t *testing.T) {
		if !srv.IsRunning() {
			t.Error("IsRunning() = false, want true")
		}
	})

	serverCancel()

	select {
	case err := <-serverErr:
		if err != nil {
			t.Logf("server returned error (expected during shutdown): %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("server did not shut down within timeout")
	}

	t.Run("not_running_after_shutdown", func(t *testing.T) {
		if srv.IsRunning() {
			t.Error("IsRunning() = true after shutdown, want false")
		}
	})
}

// TestServer_DoubleStart tests that starting a running server returns an error.
func TestServer_DoubleStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}

	port := "18091"
	srv, err := New(Config{Host: "127.0.0.1", Port: port, Home: h})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	go func() {
		_ = srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 15*time.Second); err != nil {
		t.Fatalf("server did not start: %v", err)
	}

	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() should return error")
	}
}

// TestServer_RequireInit verifies that API routes return 503 before the
// database is opened, while health stays reachable.
func TestServer_RequireInit(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}

	srv, err := New(Config{Home: h})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Drive the handler directly; the server was never started.
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/documents", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("api status before init = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status before init = %d, want %d", rec.Code, http.StatusOK)
	}
}

// uploadDocument posts a text file and returns the created document.
func uploadDocument(t *testing.T, baseURL, filename, content string) document.Document {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("failed to write upload body: %v", err)
	}
	mw.Close()

	resp, err := http.Post(baseURL+"/api/documents", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status = %d, body = %s", resp.StatusCode, raw)
	}

	var doc document.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	return doc
}

// waitForServer polls the server until it responds or timeout.
func waitForServer(ctx context.Context, baseURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/health", nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %s", timeout)
}
