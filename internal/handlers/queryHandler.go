package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/getai/ragstore/internal/adapter"
	"github.com/getai/ragstore/internal/api"
)

// QueryHandler godoc
// @Summary      Ask a question over the indexed documents
// @Description  Embeds the question, retrieves the most similar chunks and generates a grounded answer with source attributions. Served from cache when the same question was asked recently.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest  true  "Question with optional retrieval parameters"
// @Success      200      {object}  api.QueryResponse
// @Failure      400      {object}  api.DocumentResponse  "Missing question"
// @Failure      500      {object}  api.DocumentResponse  "Retrieval or generation failure"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logDH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.QueryRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logDH.Error("Couldn't close the query handler reader :", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Question == "" {
		logDH.Warn("Bad Query Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	answer, err := handlerInstance.ragService.Query(r.Context(), requestData.Question, requestData.MaxResults, requestData.SimilarityThreshold)
	if err != nil {
		logDH.Error("Query failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not answer the question")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(requestData.Question, answer))
}

// StatsHandler godoc
// @Summary      Corpus statistics
// @Description  Reports total chunk count, unique source files and the file types present in the vector store.
// @Tags         Query
// @Produce      json
// @Success      200  {object}  api.StatsResponse
// @Failure      500  {object}  api.DocumentResponse  "Vector store unavailable"
// @Router       /stats [get]
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	stats, err := handlerInstance.ragService.Stats(r.Context())
	if err != nil {
		logDH.Error("Stats collection failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not collect stats")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToStatsResponse(stats))
}
