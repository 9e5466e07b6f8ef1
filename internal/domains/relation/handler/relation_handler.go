package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog/internal/domains/relation/model"
	service "book-catalog/internal/domains/relation/service"
	"book-catalog/internal/shared/middleware"
	"book-catalog/internal/shared/response"
	"book-catalog/pkg/logger"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// UpdateRelation - PUT /api/v1/book_relation/:book_id
func (h *Handler) UpdateRelation(c *gin.Context) {
	h.update(c, true)
}

// PatchRelation - PATCH /api/v1/book_relation/:book_id
func (h *Handler) PatchRelation(c *gin.Context) {
	h.update(c, false)
}

func (h *Handler) update(c *gin.Context, full bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication credentials were not provided")
		return
	}

	bookID, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil || bookID < 1 {
		handleRelationError(c, model.ErrInvalidBook)
		return
	}

	var req model.RelationRequest
	if full {
		err = c.ShouldBindJSON(&req)
	} else {
		err = response.BindPartialJSON(c, &req)
	}
	if err != nil {
		response.ValidationError(c, response.BindingErrors(err))
		return
	}

	rel, err := h.service.UpdateRelation(c.Request.Context(), userID, bookID, req, full)
	if err != nil {
		handleRelationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rel)
}

func handleRelationError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, verrs)
	case errors.Is(err, model.ErrBookNotFound), errors.Is(err, model.ErrInvalidBook):
		response.NotFound(c, "Book not found")
	case errors.Is(err, model.ErrUserNotFound):
		response.Unauthorized(c, "User not found")
	default:
		logger.FromContext(c.Request.Context()).Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("[RelationHandler] Unhandled error")
		response.InternalServerError(c)
	}
}
