package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openshelf/library-catalog/catalog"
)

const defaultPageSize = 50

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	msgBookAdded            = "Book added successfully"
	msgBookIssued           = "Book issued successfully"
	msgBookReturned         = "Book returned successfully"
	msgNoValidBookData      = "No valid book data provided"
	msgIssueFieldsRequired  = "Book ID, User ID, and User Name are required"
	msgBookIDRequired       = "Book ID is required"
	msgBookNotFoundOrIssued = "Book not found or already issued"
	msgBookNotFoundOrOut    = "Book not found or not currently issued"
	msgIssueRecordNotFound  = "Issue record not found"
	msgErrorFetchingBooks   = "Error fetching books"
	msgErrorAddingBook      = "Error adding book"
	msgErrorIssuingBook     = "Error issuing book"
	msgErrorReturningBook   = "Error returning book"
	msgErrorFetchingIssued  = "Error fetching issued books"
	msgErrorFetchingHistory = "Error fetching issue history"
)

// CatalogStore is the narrow store surface the HTTP handlers depend on.
type CatalogStore interface {
	ListBooks(ctx context.Context, page int, pageSize int) ([]catalog.Book, int64, error)
	AddBook(ctx context.Context, schema catalog.Schema, fields map[string]any) (catalog.Book, error)
	IssueBook(ctx context.Context, bookID catalog.BookIDInt64, userID string, userName string) (catalog.Book, catalog.IssueRecord, error)
	ReturnBook(ctx context.Context, bookID catalog.BookIDInt64) (catalog.Book, catalog.IssueRecord, error)
	ListIssued(ctx context.Context, page int, pageSize int) ([]catalog.IssuedBook, int64, error)
	IssueHistory(ctx context.Context, filter catalog.HistoryFilter) ([]catalog.HistoryEntry, error)
}

// Handler serves the catalog HTTP API.
type Handler struct {
	store    CatalogStore
	schema   catalog.Schema
	pageSize int
	logger   *zap.Logger
}

// Option defines a functional option for configuring the Handler.
type Option func(*Handler)

// WithPageSize overrides the default listing page size.
func WithPageSize(pageSize int) Option {
	return func(h *Handler) {
		if pageSize > 0 {
			h.pageSize = pageSize
		}
	}
}

// MakeHandler builds the HTTP handler for the catalog API.
// The schema must be the one introspected at startup; it drives both the
// structure endpoint and the AddBook field validation.
func MakeHandler(store CatalogStore, schema catalog.Schema, logger *zap.Logger, options ...Option) http.Handler {
	h := &Handler{
		store:    store,
		schema:   schema,
		pageSize: defaultPageSize,
		logger:   logger,
	}

	for _, option := range options {
		option(h)
	}

	r := mux.NewRouter()

	r.HandleFunc("/api/books/structure", h.handleBookStructure).Methods(http.MethodGet)
	r.HandleFunc("/api/books/issued", h.handleListIssued).Methods(http.MethodGet)
	r.HandleFunc("/api/books/issue-history", h.handleIssueHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/books/issue", h.handleIssueBook).Methods(http.MethodPost)
	r.HandleFunc("/api/books/return", h.handleReturnBook).Methods(http.MethodPost)
	r.HandleFunc("/api/books", h.handleListBooks).Methods(http.MethodGet)
	r.HandleFunc("/api/books", h.handleAddBook).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return h.withRequestLogging(r)
}

func (h *Handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	books, totalCount, err := h.store.ListBooks(r.Context(), page, h.pageSize)
	if err != nil {
		h.respondInternalError(w, r, msgErrorFetchingBooks, err)
		return
	}

	h.respondJSON(w, http.StatusOK, listBooksResponse{
		Success:     true,
		CurrentPage: page,
		TotalPages:  catalog.TotalPagesUint(totalCount, h.pageSize),
		TotalBooks:  totalCount,
		Books:       books,
	})
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		h.respondError(w, http.StatusBadRequest, msgNoValidBookData)
		return
	}

	book, err := h.store.AddBook(r.Context(), h.schema, fields)
	if err != nil {
		if errors.Is(err, catalog.ErrNoRecognizedBookFields) {
			h.respondError(w, http.StatusBadRequest, msgNoValidBookData)
			return
		}

		h.respondInternalError(w, r, msgErrorAddingBook, err)

		return
	}

	h.respondJSON(w, http.StatusCreated, addBookResponse{
		Success: true,
		Message: msgBookAdded,
		Book:    book,
	})
}

func (h *Handler) handleBookStructure(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, bookStructureResponse{
		Success:    true,
		Attributes: h.schema.Columns(),
	})
}

func (h *Handler) handleIssueBook(w http.ResponseWriter, r *http.Request) {
	var request issueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.respondError(w, http.StatusBadRequest, msgIssueFieldsRequired)
		return
	}

	bookID, hasBookID := coerceBookID(request.BookID)
	if !hasBookID || request.UserID == "" || request.UserName == "" {
		h.respondError(w, http.StatusBadRequest, msgIssueFieldsRequired)
		return
	}

	book, issue, err := h.store.IssueBook(r.Context(), bookID, request.UserID, request.UserName)
	if err != nil {
		// The book-absent and the book-already-issued case deliberately share
		// one 404 response, matching the long-standing API behavior.
		if errors.Is(err, catalog.ErrBookNotFound) || errors.Is(err, catalog.ErrBookNotAvailable) {
			h.respondError(w, http.StatusNotFound, msgBookNotFoundOrIssued)
			return
		}

		h.respondInternalError(w, r, msgErrorIssuingBook, err)

		return
	}

	h.respondJSON(w, http.StatusOK, transitionResponse{
		Success: true,
		Message: msgBookIssued,
		Book:    book,
		Issue:   issue,
	})
}

func (h *Handler) handleReturnBook(w http.ResponseWriter, r *http.Request) {
	var request returnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.respondError(w, http.StatusBadRequest, msgBookIDRequired)
		return
	}

	bookID, hasBookID := coerceBookID(request.BookID)
	if !hasBookID {
		h.respondError(w, http.StatusBadRequest, msgBookIDRequired)
		return
	}

	book, issue, err := h.store.ReturnBook(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBookNotFound), errors.Is(err, catalog.ErrBookNotIssued):
			h.respondError(w, http.StatusNotFound, msgBookNotFoundOrOut)

		case errors.Is(err, catalog.ErrNoOpenIssueRecord):
			h.respondError(w, http.StatusNotFound, msgIssueRecordNotFound)

		default:
			h.respondInternalError(w, r, msgErrorReturningBook, err)
		}

		return
	}

	h.respondJSON(w, http.StatusOK, transitionResponse{
		Success: true,
		Message: msgBookReturned,
		Book:    book,
		Issue:   issue,
	})
}

func (h *Handler) handleListIssued(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)

	issuedBooks, totalCount, err := h.store.ListIssued(r.Context(), page, h.pageSize)
	if err != nil {
		h.respondInternalError(w, r, msgErrorFetchingIssued, err)
		return
	}

	h.respondJSON(w, http.StatusOK, listIssuedResponse{
		Success:          true,
		CurrentPage:      page,
		TotalPages:       catalog.TotalPagesUint(totalCount, h.pageSize),
		TotalIssuedBooks: totalCount,
		IssuedBooks:      issuedBooks,
	})
}

func (h *Handler) handleIssueHistory(w http.ResponseWriter, r *http.Request) {
	var filter catalog.HistoryFilter

	if rawBookID := r.URL.Query().Get("book_id"); rawBookID != "" {
		bookID, parseErr := strconv.ParseInt(rawBookID, 10, 64)
		if parseErr != nil {
			h.respondError(w, http.StatusBadRequest, msgBookIDRequired)
			return
		}

		filter.BookID = bookID
	}

	filter.UserID = r.URL.Query().Get("user_id")

	entries, err := h.store.IssueHistory(r.Context(), filter)
	if err != nil {
		h.respondInternalError(w, r, msgErrorFetchingHistory, err)
		return
	}

	h.respondJSON(w, http.StatusOK, issueHistoryResponse{
		Success:      true,
		IssueHistory: entries,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// pageFromQuery reads the page query parameter, defaulting to the first page.
func pageFromQuery(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}

	return page
}

// coerceBookID accepts the book id as JSON number or numeric string,
// because the browsing clients submit both.
func coerceBookID(value any) (catalog.BookIDInt64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), v == float64(int64(v)) && v > 0
	case string:
		bookID, err := strconv.ParseInt(v, 10, 64)
		return bookID, err == nil && bookID > 0
	default:
		return 0, false
	}
}
