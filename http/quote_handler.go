package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"btl-quote/domain"
	"btl-quote/service"
)

const maxBodyBytes = 1 << 20

// QuoteCalculator prices quote requests.
type QuoteCalculator interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResult, error)
	Questions(category domain.PropertyCategory) (domain.QuestionSet, error)
}

// QuoteSubmitter delivers priced quotes.
type QuoteSubmitter interface {
	Submit(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error)
}

type QuoteHandler struct {
	quotes      QuoteCalculator
	submissions QuoteSubmitter
	log         *logrus.Logger
}

func NewQuoteHandler(quotes QuoteCalculator, submissions QuoteSubmitter, logger *logrus.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, submissions: submissions, log: logger}
}

func (h *QuoteHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.quotes.Quote(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *QuoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.submissions.Submit(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, result)
}

func (h *QuoteHandler) Questions(w http.ResponseWriter, r *http.Request) {
	category := domain.PropertyCategory(mux.Vars(r)["category"])

	set, err := h.quotes.Questions(category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, set)
}

func (h *QuoteHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *QuoteHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		h.log.WithError(err).WithField("path", r.URL.Path).Debug("invalid request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// fail maps service errors onto status codes.
func (h *QuoteHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	entry := h.log.WithError(err).WithField("path", r.URL.Path)

	switch {
	case errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrInvalidRetentionBand),
		errors.Is(err, service.ErrInvalidLoanMode),
		errors.Is(err, service.ErrInvalidClient),
		errors.Is(err, service.ErrNotQuotable):
		entry.Info("rejected request")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDeliveryFailed):
		entry.Error("quote delivery failed")
		writeError(w, http.StatusBadGateway, "quote could not be delivered")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		entry.Info("request cancelled")
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		entry.Error("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *QuoteHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	// Encode first so a failure does not leave a half-written 200.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.WithError(err).Error("failed to encode response")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("failed to write response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(errorResponse{Error: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
