package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/openshelf/library-catalog/catalog"
)

const contentTypeJSON = "application/json; charset=utf-8"

type issueRequest struct {
	BookID   any    `json:"book_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

type returnRequest struct {
	BookID any `json:"book_id"`
}

type listBooksResponse struct {
	Success     bool           `json:"success"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  uint           `json:"totalPages"`
	TotalBooks  int64          `json:"totalBooks"`
	Books       []catalog.Book `json:"books"`
}

type addBookResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Book    catalog.Book `json:"book"`
}

type bookStructureResponse struct {
	Success    bool     `json:"success"`
	Attributes []string `json:"attributes"`
}

type transitionResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Book    catalog.Book        `json:"book"`
	Issue   catalog.IssueRecord `json:"issue"`
}

type listIssuedResponse struct {
	Success          bool                 `json:"success"`
	CurrentPage      int                  `json:"currentPage"`
	TotalPages       uint                 `json:"totalPages"`
	TotalIssuedBooks int64                `json:"totalIssuedBooks"`
	IssuedBooks      []catalog.IssuedBook `json:"issuedBooks"`
}

type issueHistoryResponse struct {
	Success      bool                   `json:"success"`
	IssueHistory []catalog.HistoryEntry `json:"issueHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Success: false, Message: message})
}

// respondInternalError hides the cause from the client and logs it.
func (h *Handler) respondInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if h.logger != nil {
		h.logger.Error(message,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}

	h.respondError(w, http.StatusInternalServerError, message)
}
