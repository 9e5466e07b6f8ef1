package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/shared/middleware"
	"book-catalog/pkg/jwt"
)

type stubService struct {
	listReq   model.ListBooksRequest
	actorID   uuid.UUID
	bookReq   model.BookRequest
	patchReq  model.PatchBookRequest
	err       error
	projected *model.BookProjection
}

func (s *stubService) ListBooks(_ context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error) {
	s.listReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.ListBooksResponse{Count: 1, Page: req.Page, PageSize: req.PageSize, Results: []model.BookProjection{*s.projected}}, nil
}

func (s *stubService) GetBook(_ context.Context, id int64) (*model.BookProjection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projected, nil
}

func (s *stubService) CreateBook(_ context.Context, actorID uuid.UUID, req model.BookRequest) (*model.BookProjection, error) {
	s.actorID, s.bookReq = actorID, req
	if s.err != nil {
		return nil, s.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.projected, nil
}

func (s *stubService) UpdateBook(_ context.Context, actorID uuid.UUID, _ int64, req model.BookRequest) (*model.BookProjection, error) {
	s.actorID, s.bookReq = actorID, req
	if s.err != nil {
		return nil, s.err
	}
	return s.projected, nil
}

func (s *stubService) PatchBook(_ context.Context, actorID uuid.UUID, _ int64, req model.PatchBookRequest) (*model.BookProjection, error) {
	s.actorID, s.patchReq = actorID, req
	if s.err != nil {
		return nil, s.err
	}
	return s.projected, nil
}

func (s *stubService) DeleteBook(_ context.Context, actorID uuid.UUID, _ int64) error {
	s.actorID = actorID
	return s.err
}

func setupRouter(svc *stubService) (*gin.Engine, *jwt.Manager) {
	gin.SetMode(gin.TestMode)
	tokens := jwt.NewManager("test-secret", time.Hour, time.Hour)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())
	books := r.Group("/api/v1/books")
	books.GET("", middleware.OptionalAuthMiddleware(tokens), h.ListBooks)
	books.GET("/:id", middleware.OptionalAuthMiddleware(tokens), h.GetBook)
	books.POST("", middleware.AuthMiddleware(tokens), h.CreateBook)
	books.PUT("/:id", middleware.AuthMiddleware(tokens), h.UpdateBook)
	books.PATCH("/:id", middleware.AuthMiddleware(tokens), h.PatchBook)
	books.DELETE("/:id", middleware.AuthMiddleware(tokens), h.DeleteBook)
	return r, tokens
}

func request(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleProjection() *model.BookProjection {
	return &model.BookProjection{ID: 1, Name: "Test book 1", Price: "25.00", AuthorName: "Author 1", Readers: []model.Reader{}}
}

func TestListBooksParsesQuery(t *testing.T) {
	svc := &stubService{projected: sampleProjection()}
	r, _ := setupRouter(svc)

	w := request(r, http.MethodGet, "/api/v1/books?price=55&search=Author&ordering=-price,bogus&page=1&page_size=10", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "55", svc.listReq.Price.String())
	assert.Equal(t, "Author", svc.listReq.Search)
	assert.Equal(t, []string{"-price"}, svc.listReq.Ordering)
	assert.Equal(t, 10, svc.listReq.PageSize)

	var body struct {
		Success bool                    `json:"success"`
		Data    model.ListBooksResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Count)
	assert.Equal(t, "25.00", body.Data.Results[0].Price)
}

func TestListBooksInvalidPrice(t *testing.T) {
	r, _ := setupRouter(&stubService{projected: sampleProjection()})

	w := request(r, http.MethodGet, "/api/v1/books?price=cheap", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"VALIDATION_ERROR"`)
	assert.Contains(t, w.Body.String(), `"price"`)
}

func TestGetBookErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
		code   string
	}{
		{"not found", "/api/v1/books/7", model.ErrBookNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"non numeric id", "/api/v1/books/abc", nil, http.StatusNotFound, "NOT_FOUND"},
		{"store failure", "/api/v1/books/7", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := setupRouter(&stubService{err: tt.err, projected: sampleProjection()})
			w := request(r, http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestCreateBookRequiresAuth(t *testing.T) {
	r, _ := setupRouter(&stubService{projected: sampleProjection()})

	w := request(r, http.MethodPost, "/api/v1/books", "", `{"name":"x","price":"1","author_name":"y"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookPassesCaller(t *testing.T) {
	svc := &stubService{projected: sampleProjection()}
	r, tokens := setupRouter(svc)
	caller := uuid.New()
	token, err := tokens.GenerateAccessToken(caller.String(), "reader")
	require.NoError(t, err)

	w := request(r, http.MethodPost, "/api/v1/books", token, `{"name":"Dune","price":"25.00","author_name":"Herbert"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, caller, svc.actorID)
	assert.Equal(t, "Dune", svc.bookReq.Name)

	w = request(r, http.MethodPost, "/api/v1/books", token, `{"name":"Dune"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodPost, "/api/v1/books", token, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateBookForbidden(t *testing.T) {
	r, tokens := setupRouter(&stubService{err: model.ErrPermissionDenied})
	token, err := tokens.GenerateAccessToken(uuid.NewString(), "other")
	require.NoError(t, err)

	w := request(r, http.MethodPut, "/api/v1/books/1", token, `{"name":"x","price":"575","author_name":"y"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"FORBIDDEN","message":"You do not have permission to perform this action"}}`, w.Body.String())
}

func TestPatchBookDistinguishesNull(t *testing.T) {
	svc := &stubService{projected: sampleProjection()}
	r, tokens := setupRouter(svc)
	token, err := tokens.GenerateAccessToken(uuid.NewString(), "owner")
	require.NoError(t, err)

	w := request(r, http.MethodPatch, "/api/v1/books/1", token, `{"discount":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.patchReq.Discount.IsNull())
	assert.False(t, svc.patchReq.Price.Set)
}

func TestPatchBookEmptyBody(t *testing.T) {
	svc := &stubService{projected: sampleProjection()}
	r, tokens := setupRouter(svc)
	token, err := tokens.GenerateAccessToken(uuid.NewString(), "owner")
	require.NoError(t, err)

	w := request(r, http.MethodPatch, "/api/v1/books/1", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.patchReq.Name.Set)
	assert.False(t, svc.patchReq.Price.Set)
}

func TestDeleteBook(t *testing.T) {
	r, tokens := setupRouter(&stubService{})
	token, err := tokens.GenerateAccessToken(uuid.NewString(), "owner")
	require.NoError(t, err)

	w := request(r, http.MethodDelete, "/api/v1/books/1", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
