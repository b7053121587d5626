package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/support"
	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/internal/service/chat"
	"github.com/w-h-a/support/internal/service/escalation"
	"github.com/w-h-a/support/internal/service/knowledge"
	"github.com/w-h-a/support/retriever"
	"github.com/w-h-a/support/storer"
	"github.com/w-h-a/support/ticketer"
	"go.uber.org/zap"
)

const (
	deliveryUnavailable = "Unable to reach support system. Please try again later."
	defaultSearchTopK   = 5
)

type chatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"session_id"`
	UserEmail string `json:"user_email" validate:"omitempty,email"`
	Category  string `json:"category"`
}

type escalationRequest struct {
	SessionId           string `json:"session_id" validate:"required"`
	UserEmail           string `json:"user_email" validate:"required,email"`
	UserName            string `json:"user_name"`
	ConversationSummary string `json:"conversation_summary"`
	OriginalQuery       string `json:"original_query" validate:"required"`
}

type knowledgeRequest struct {
	Id       string `json:"id"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category"`
	Product  string `json:"product"`
}

type searchRequest struct {
	Query    string `json:"query" validate:"required"`
	TopK     *int   `json:"top_k" validate:"omitempty,min=1,max=50"`
	Category string `json:"category"`
}

type handler struct {
	app    *support.Support
	logger *zap.Logger
	now    func() time.Time
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"timestamp":       h.now().UTC().Format(time.RFC3339),
		"rag_initialized": true,
		"version":         support.Version,
	})
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := h.app.Chat(r.Context(), support.ChatRequest{
		Message:   req.Message,
		SessionId: req.SessionId,
		UserEmail: req.UserEmail,
		Category:  req.Category,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) escalate(w http.ResponseWriter, r *http.Request) {
	var req escalationRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.app.Escalate(r.Context(), support.EscalationRequest{
		SessionId:           req.SessionId,
		UserEmail:           req.UserEmail,
		UserName:            req.UserName,
		ConversationSummary: req.ConversationSummary,
		OriginalQuery:       req.OriginalQuery,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) addKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if !decode(w, r, &req) {
		return
	}

	doc, err := h.app.AddKnowledge(r.Context(), storer.Document{
		Id:       req.Id,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Product:  req.Product,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Added: %s", doc.Title),
		"id":      doc.Id,
	})
}

func (h *handler) searchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}

	topK := defaultSearchTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	results, err := h.app.SearchKnowledge(r.Context(), req.Query, topK, req.Category)
	if err != nil {
		h.fail(w, err)
		return
	}

	if results == nil {
		results = []storer.Match{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (h *handler) clearKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ClearKnowledge(r.Context()); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "All documents deleted",
	})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Stats(r.Context()))
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"categories": h.app.Categories(),
	})
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, knowledge.ErrInvalidDocument),
		errors.Is(err, escalation.ErrInvalidRequest):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ticketer.ErrDeliveryFailed):
		writeJSON(w, http.StatusServiceUnavailable, detail{Detail: deliveryUnavailable, Retryable: true})
	case errors.Is(err, chat.ErrUnavailable):
		writeDetail(w, http.StatusServiceUnavailable, chat.ErrUnavailable.Error())
	case errors.Is(err, retriever.ErrUnavailable),
		errors.Is(err, embedder.ErrUnavailable),
		errors.Is(err, storer.ErrUnavailable):
		h.logger.Error("backend unavailable", zap.Error(err))
		writeDetail(w, http.StatusServiceUnavailable, "knowledge base is temporarily unavailable")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// NewHandler routes the public API onto app.
func NewHandler(app *support.Support, logger *zap.Logger) http.Handler {
	h := &handler{
		app:    app,
		logger: logger.Named("http"),
		now:    time.Now,
	}

	router := mux.NewRouter()

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", h.chat).Methods(http.MethodPost)
	api.HandleFunc("/escalate", h.escalate).Methods(http.MethodPost)
	api.HandleFunc("/knowledge/add", h.addKnowledge).Methods(http.MethodPost)
	api.HandleFunc("/knowledge/search", h.searchKnowledge).Methods(http.MethodPost)
	api.HandleFunc("/knowledge/clear", h.clearKnowledge).Methods(http.MethodDelete)
	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.categories).Methods(http.MethodGet)

	return router
}
