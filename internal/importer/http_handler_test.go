package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func multipartUpload(t *testing.T, fileName, content, dryRun string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if dryRun != "" {
		if err := writer.WriteField("dryRun", dryRun); err != nil {
			t.Fatalf("failed to write dryRun field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHandlerImportsUpload(t *testing.T) {
	products := newStubProductRepo()
	interventions := &stubInterventionRepo{}
	handler := NewHTTPHandler(NewService(products, newStubOrgRepo(), interventions, nil))

	data := "produit;no_de_serie\nConsole XR;SN-001\n"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "parc.csv", data, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ProductsCreated != 1 || result.InterventionsCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(products.inserted) != 1 || len(interventions.inserted) != 1 {
		t.Fatalf("upload not written to store")
	}
}

func TestHandlerHonorsDryRunField(t *testing.T) {
	products := newStubProductRepo()
	interventions := &stubInterventionRepo{}
	handler := NewHTTPHandler(NewService(products, newStubOrgRepo(), interventions, nil))

	data := "produit;no_de_serie\nConsole XR;SN-001\n"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "parc.csv", data, "true"))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.DryRun || result.ProductsCreated != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(products.inserted) != 0 || len(interventions.inserted) != 0 {
		t.Fatalf("dry-run upload must not write to store")
	}
}

func TestHandlerRejectsNonPost(t *testing.T) {
	handler := NewHTTPHandler(NewService(newStubProductRepo(), newStubOrgRepo(), &stubInterventionRepo{}, nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/import", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
