package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookhub/internal/dto"
	"bookhub/internal/middleware"
	"bookhub/internal/service"
)

type BookHandler struct {
	bookService service.BookService
	logger      *zap.Logger
}

func NewBookHandler(bookService service.BookService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// RegisterRoutes registers book-related routes. The listing and detail
// endpoints are public; everything else requires authentication.
func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	books := router.Group("/books")
	{
		books.GET("", h.List)
		books.GET("/mine", requireAuth, h.ListMine)
		books.GET("/:id", h.GetDetail)
		books.POST("", requireAuth, h.Create)
		books.PUT("/:id", requireAuth, h.Update)
		books.DELETE("/:id", requireAuth, h.Delete)
	}
}

// ListMine returns the current user's books
// GET /api/books/mine
func (h *BookHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	books, err := h.bookService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

// List returns one page of the catalogue
// GET /api/books?page=N
func (h *BookHandler) List(c *gin.Context) {
	// invalid or absent page falls back to 1
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.bookService.ListPage(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDetail returns a single book with its reviews and average rating
// GET /api/books/:id
func (h *BookHandler) GetDetail(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book ID"})
		return
	}

	detail, err := h.bookService.GetDetail(c.Request.Context(), bookID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Create adds a new book owned by the current user
// POST /api/books
func (h *BookHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// Update applies a partial update to a book the current user owns
// PUT /api/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book ID"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.UpdateBookDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), userID, bookID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes a book the current user owns, cascading to its reviews
// DELETE /api/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book ID"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), userID, bookID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}
