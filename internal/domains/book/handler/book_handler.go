package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog/internal/domains/book/model"
	service "book-catalog/internal/domains/book/service"
	"book-catalog/internal/shared/middleware"
	"book-catalog/internal/shared/response"
	"book-catalog/pkg/logger"
)

// Handler - HTTP Handler
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListBooks - GET /api/v1/books
// Query params: price, search, ordering, page, page_size
func (h *Handler) ListBooks(c *gin.Context) {
	req, err := model.NewListBooksRequest(c.Request.URL.Query())
	if err != nil {
		handleBookError(c, err)
		return
	}

	data, err := h.service.ListBooks(c.Request.Context(), req)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// GetBook - GET /api/v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if err != nil {
		handleBookError(c, err)
		return
	}

	p, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// CreateBook - POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, response.BindingErrors(err))
		return
	}

	actorID, _ := middleware.GetUserID(c)
	p, err := h.service.CreateBook(c.Request.Context(), actorID, req)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, p)
}

// UpdateBook - PUT /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if err != nil {
		handleBookError(c, err)
		return
	}

	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, response.BindingErrors(err))
		return
	}

	actorID, _ := middleware.GetUserID(c)
	p, err := h.service.UpdateBook(c.Request.Context(), actorID, id, req)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// PatchBook - PATCH /api/v1/books/:id
func (h *Handler) PatchBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if err != nil {
		handleBookError(c, err)
		return
	}

	var req model.PatchBookRequest
	if err := response.BindPartialJSON(c, &req); err != nil {
		response.ValidationError(c, response.BindingErrors(err))
		return
	}

	actorID, _ := middleware.GetUserID(c)
	p, err := h.service.PatchBook(c.Request.Context(), actorID, id, req)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// DeleteBook - DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	id, err := model.ParseBookID(c.Param("id"))
	if err != nil {
		handleBookError(c, err)
		return
	}

	actorID, _ := middleware.GetUserID(c)
	if err := h.service.DeleteBook(c.Request.Context(), actorID, id); err != nil {
		handleBookError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ============================================
// ERROR MAPPING
// ============================================

var bookErrorMap = []struct {
	Err     error
	Status  int
	Code    string
	Message string
}{
	{model.ErrInvalidBookID, http.StatusNotFound, response.CodeNotFound, "Book not found"},
	{model.ErrBookNotFound, http.StatusNotFound, response.CodeNotFound, "Book not found"},
	{model.ErrAuthenticationRequired, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication credentials were not provided"},
	{model.ErrPermissionDenied, http.StatusForbidden, response.CodeForbidden, "You do not have permission to perform this action"},
}

func handleBookError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, verrs)
		return
	}

	for _, m := range bookErrorMap {
		if errors.Is(err, m.Err) {
			response.ErrorResponse(c, m.Status, m.Code, m.Message)
			return
		}
	}

	logger.FromContext(c.Request.Context()).Error().Err(err).
		Str("path", c.Request.URL.Path).
		Msg("[BookHandler] Unhandled error")
	response.InternalServerError(c)
}
