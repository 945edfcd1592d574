package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/getai/ragstore/internal/adapter"
	"github.com/getai/ragstore/internal/adapter/utils"
	"github.com/getai/ragstore/internal/config"
	"github.com/getai/ragstore/internal/document"
	"github.com/getai/ragstore/internal/domain/docModel"
	"github.com/getai/ragstore/internal/rag"
	"github.com/getai/ragstore/pkg/logging"
)

var (
	handlerInstance *DocumentHandler //private singleton
	once            sync.Once
	logDH           *logging.Logger
)

type DocumentHandler struct {
	documentService *document.Service
	ragService      rag.Service
}

func InitDocumentHandler(documentService *document.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &DocumentHandler{
			documentService: documentService,
			ragService:      ragService,
		}
		logDH = logging.New("DocumentHandler")
		logDH.Info("Starting document handler")
	})
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// UploadDocumentHandler godoc
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, runs the duplicate gate, creates a PENDING processing record and queues a background ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The document to ingest (txt, pdf, md, csv, xlsx, xls)"
// @Success      202  {object}  api.UploadResponse    "Accepted - poll the status URL"
// @Failure      400  {object}  api.DocumentResponse  "Missing file, unsupported format or file too large"
// @Failure      409  {object}  api.DocumentResponse  "Duplicate of an existing document"
// @Failure      500  {object}  api.DocumentResponse  "Storage error"
// @Router       /documents/upload [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logDH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logDH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	filename := filepath.Base(fileMetadata.Filename)
	if !isSupportedExtension(filename) {
		WriteErrorResponse(w, http.StatusBadRequest, filename, "Unsupported document format")
		return
	}

	//the record keeps the original filename, the file on disk gets a unique one
	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%s-%s", utils.GetNewUUID(), filename))
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, filename, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, filename, "Write error")
		return
	}

	record, err := handlerInstance.documentService.CreateProcessingRecord(r.Context(), filename, tempFilePath)
	if err != nil {
		discardUpload(tempFilePath)
		var dup *docModel.DuplicateError
		if errors.As(err, &dup) {
			logDH.Info("Rejected duplicate upload", "filename", filename, "existingId", dup.ExistingId)
			writeJsonResponse(w, http.StatusConflict, adapter.ToDuplicateResponse(dup))
			return
		}
		logDH.Error("Failed to create processing record", "filename", filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, filename, "Could not register document")
		return
	}

	handlerInstance.documentService.Enqueue(record, traceIdOf(r))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(record))
}

// GetDocumentStatusHandler godoc
// @Summary      Get document processing status
// @Description  Retrieves the processing record for one uploaded document.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Processing record ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.DocumentResponse  "Document not found"
// @Router       /documents/status/{id} [get]
func GetDocumentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	logDH.Debug("Get Status Request:", "URL path", r.URL.Path)

	record, isFound := validateId(r, idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(record))
}

// ListDocumentsHandler godoc
// @Summary      List processing records
// @Description  Lists all processing records, optionally filtered by status.
// @Tags         Documents
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, PROCESSING, COMPLETED, FAILED)"
// @Success      200  {object}  api.DocumentListResponse
// @Failure      400  {object}  api.DocumentResponse  "Unknown status value"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	status := docModel.ProcessingStatus(r.URL.Query().Get("status"))
	if status != "" && !isKnownStatus(status) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Unknown status value")
		return
	}

	records, err := handlerInstance.documentService.List(r.Context(), status)
	if err != nil {
		logDH.Error("Failed to list records", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(records))
}

// RetryFailedHandler godoc
// @Summary      Retry failed documents
// @Description  Resets every FAILED record to PENDING and queues it for ingestion again.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.RetryResponse
// @Router       /documents/retry [post]
func RetryFailedHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	retried, err := handlerInstance.documentService.RetryFailed(r.Context(), traceIdOf(r))
	if err != nil {
		logDH.Error("Retry sweep failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not retry documents")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToRetryResponse(retried))
}
