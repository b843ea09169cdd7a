package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/document"
	"github.com/signet-dev/signet/internal/store"
	"github.com/signet-dev/signet/internal/svcctx"
)

// maxUploadMemory caps in-memory multipart parsing.
const maxUploadMemory = 100 << 20 // 100MB

// UploadDocumentEndpoint handles POST /api/documents with a multipart file
// upload. The file is parsed, its text stored per page, and the original
// kept on disk for page rendering and VQA.
type UploadDocumentEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentEndpoint)(nil)

func (e *UploadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadDocumentEndpoint) RequiresInit() bool { return true }

func (e *UploadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !document.Supported(header.Filename) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type: %s", header.Filename))
		return
	}

	doc, err := document.Parse(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse document: %v", err))
		return
	}

	// Keep the original on disk for page rendering and VQA.
	homeDir := svcctx.HomeFrom(r.Context())
	storedPath := homeDir.UploadPath(doc.ID, header.Filename)
	if err := os.MkdirAll(filepath.Dir(storedPath), 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create upload dir: %v", err))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to rewind upload: %v", err))
		return
	}
	dst, err := os.Create(storedPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store upload: %v", err))
		return
	}
	dst.Close()

	// Scanned PDFs carry no text layer; recover it with local OCR when enabled.
	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") && document.NeedsOCR(doc.Pages) {
		if cfgMgr := svcctx.ConfigManagerFrom(r.Context()); cfgMgr != nil && cfgMgr.Get().OCR.Enabled {
			cfg := cfgMgr.Get()
			if pages, ocrErr := ocrStoredPDF(r.Context(), storedPath, cfg.Defaults.RenderDPI, cfg.OCR.Languages); ocrErr != nil {
				if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
					logger.Warn("ocr fallback failed", "id", doc.ID, "error", ocrErr)
				}
			} else {
				doc.Pages = pages
			}
		}
	}

	st := svcctx.StoreFrom(r.Context())
	if err := st.SaveDocument(r.Context(), doc, storedPath); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save document: %v", err))
		return
	}

	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("document uploaded", "id", doc.ID, "filename", doc.Filename, "pages", doc.PageCount)
	}

	writeJSON(w, http.StatusCreated, doc)
}

// ocrStoredPDF rasterizes the stored PDF and runs tesseract on every page.
func ocrStoredPDF(ctx context.Context, pdfPath string, dpi int, languages []string) ([]string, error) {
	images, err := document.RenderPages(ctx, pdfPath, dpi)
	if err != nil {
		return nil, err
	}
	return document.OCRPages(ctx, images, languages)
}

func (e *UploadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document to the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var doc document.Document
			if err := client.PostFiles(cmd.Context(), "/api/documents", "file", args[:1], nil, &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
}

// ListDocumentsEndpoint handles GET /api/documents.
type ListDocumentsEndpoint struct{}

func (e *ListDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents", e.handler
}

func (e *ListDocumentsEndpoint) RequiresInit() bool { return true }

func (e *ListDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	docs, err := svcctx.StoreFrom(r.Context()).ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list documents: %v", err))
		return
	}
	if docs == nil {
		docs = []store.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (e *ListDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List uploaded documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var docs []store.DocumentRecord
			if err := client.Get(cmd.Context(), "/api/documents", &docs); err != nil {
				return err
			}
			return api.Output(docs)
		},
	}
}

// GetDocumentEndpoint handles GET /api/documents/{id}.
type GetDocumentEndpoint struct{}

func (e *GetDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}", e.handler
}

func (e *GetDocumentEndpoint) RequiresInit() bool { return true }

func (e *GetDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	rec, err := svcctx.StoreFrom(r.Context()).GetDocument(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load document: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *GetDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "document <id>",
		Short: "Get one document with its page text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var rec store.DocumentRecord
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0], &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
}

// DeleteDocumentEndpoint handles DELETE /api/documents/{id}.
type DeleteDocumentEndpoint struct{}

func (e *DeleteDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/documents/{id}", e.handler
}

func (e *DeleteDocumentEndpoint) RequiresInit() bool { return true }

func (e *DeleteDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st := svcctx.StoreFrom(r.Context())

	rec, err := st.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load document: %v", err))
		return
	}

	if err := st.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete document: %v", err))
		return
	}

	// Remove the stored upload as well; a leftover file only wastes disk.
	if rec.StoredPath != "" {
		if err := os.RemoveAll(filepath.Dir(rec.StoredPath)); err != nil {
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Warn("failed to remove upload files", "id", id, "error", err)
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-document <id>",
		Short: "Delete a document and its extractions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/documents/"+args[0]); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}

// PageResponse is the response for a single document page.
type PageResponse struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	PageCount  int    `json:"page_count"`
	Text       string `json:"text"`
}

// GetPageEndpoint handles GET /api/documents/{id}/pages/{page}. The web UI
// pager fetches one page of extracted text at a time.
type GetPageEndpoint struct{}

func (e *GetPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/documents/{id}/pages/{page}", e.handler
}

func (e *GetPageEndpoint) RequiresInit() bool { return true }

func (e *GetPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	page, err := strconv.Atoi(r.PathValue("page"))
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	rec, err := st.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load document: %v", err))
		return
	}
	if page > rec.PageCount {
		writeError(w, http.StatusNotFound, fmt.Sprintf("page %d out of range (document has %d pages)", page, rec.PageCount))
		return
	}

	text, err := st.GetPageText(r.Context(), id, page)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load page: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, PageResponse{
		DocumentID: id,
		Page:       page,
		PageCount:  rec.PageCount,
		Text:       text,
	})
}

func (e *GetPageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "page <document-id> <page>",
		Short: "Get the text of one document page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PageResponse
			if err := client.Get(cmd.Context(), "/api/documents/"+args[0]+"/pages/"+args[1], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
