package middleware

import (
	"net/http"
	"strconv"

	"github.com/getai/ragstore/internal/handlers"
	"github.com/getai/ragstore/internal/metrics"
	"github.com/getai/ragstore/pkg/logging"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logging.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var UploadDocumentHandler = Wrap(handlers.UploadDocumentHandler)
var GetDocumentStatusHandler = Wrap(handlers.GetDocumentStatusHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var RetryFailedHandler = Wrap(handlers.RetryFailedHandler)
var QueryHandler = Wrap(handlers.QueryHandler)
var StatsHandler = Wrap(handlers.StatsHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logging.New("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	re = rateLimiter(re)
	return re
}
