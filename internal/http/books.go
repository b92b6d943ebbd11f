package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booksearch/internal/catalog"
	"github.com/mrlokans/booksearch/internal/entities"
	"github.com/mrlokans/booksearch/internal/state"
)

// BooksView is the list-search projection returned to clients.
type BooksView struct {
	Books       []entities.BookSummary `json:"books"`
	PageCount   int                    `json:"page_count"`
	CurrentPage int                    `json:"current_page"`
	Status      state.Status           `json:"status"`
	Loading     bool                   `json:"loading"`
	Error       string                 `json:"error,omitempty"`
}

// BookView is the detail projection returned to clients.
type BookView struct {
	Book     entities.BookDetail `json:"book"`
	CoverURL string              `json:"cover_url,omitempty"`
	Status   state.Status        `json:"status"`
	Loading  bool                `json:"loading"`
	Error    string              `json:"error,omitempty"`
}

func newBooksView(s state.RootState) BooksView {
	return BooksView{
		Books:       state.SelectAllBooks(s),
		PageCount:   state.SelectNumberOfPages(s),
		CurrentPage: state.SelectPage(s),
		Status:      state.SelectBooksStatus(s),
		Loading:     state.IsBooksLoading(s),
		Error:       state.SelectBooksError(s),
	}
}

func newBookView(s state.RootState) BookView {
	book := state.SelectBook(s)
	return BookView{
		Book:     book,
		CoverURL: catalog.CoverURL(book.CoverID, "L"),
		Status:   state.SelectBookStatus(s),
		Loading:  state.IsBookLoading(s),
		Error:    state.SelectBookError(s),
	}
}

// SearchQuery is the query string accepted by GET /api/books.
type SearchQuery struct {
	Query string `form:"q" binding:"required"`
	Page  *int   `form:"page" binding:"omitempty,min=1"`
	Sort  string `form:"sort"`
}

// SetPageRequest is the body accepted by PUT /api/books/page.
type SetPageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// BooksController dispatches list-search actions against the session's store.
type BooksController struct {
	fetchTimeout time.Duration
}

func NewBooksController(fetchTimeout time.Duration) *BooksController {
	return &BooksController{fetchTimeout: fetchTimeout}
}

// Search handles GET /api/books?q=&page=&sort=
// A rejected fetch is still a 200; the view's status and error carry the failure.
func (bc *BooksController) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidationError(c, err)
		return
	}

	store, ok := requireStore(c)
	if !ok {
		return
	}

	page := store.Books.State().CurrentPage
	if q.Page != nil {
		page = *q.Page
	}

	ctx, cancel := withFetchTimeout(c.Request.Context(), bc.fetchTimeout)
	defer cancel()

	store.Books.Search(ctx, catalog.SearchRequest{Query: q.Query, Page: page, Sort: q.Sort})
	c.JSON(http.StatusOK, newBooksView(store.Snapshot()))
}

// State handles GET /api/books/state
func (bc *BooksController) State(c *gin.Context) {
	snapshot, ok := snapshotFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newBooksView(snapshot))
}

// SetPage handles PUT /api/books/page
func (bc *BooksController) SetPage(c *gin.Context) {
	var req SetPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	store, ok := requireStore(c)
	if !ok {
		return
	}
	store.Books.SetPage(req.Page)
	c.JSON(http.StatusOK, newBooksView(store.Snapshot()))
}

// ResetPage handles POST /api/books/page/reset
func (bc *BooksController) ResetPage(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	store.Books.ResetPage()
	c.JSON(http.StatusOK, newBooksView(store.Snapshot()))
}

// BookController dispatches detail actions against the session's store.
type BookController struct {
	fetchTimeout time.Duration
}

func NewBookController(fetchTimeout time.Duration) *BookController {
	return &BookController{fetchTimeout: fetchTimeout}
}

// FetchOne handles GET /api/book?key=/works/OL45804W
func (bc *BookController) FetchOne(c *gin.Context) {
	key := c.Query("key")
	if catalog.NormalizeKey(key) == "" {
		respondBadRequest(c, "key is required")
		return
	}

	store, ok := requireStore(c)
	if !ok {
		return
	}

	ctx, cancel := withFetchTimeout(c.Request.Context(), bc.fetchTimeout)
	defer cancel()

	store.Book.FetchOne(ctx, key)
	c.JSON(http.StatusOK, newBookView(store.Snapshot()))
}

// State handles GET /api/book/state
func (bc *BookController) State(c *gin.Context) {
	snapshot, ok := snapshotFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newBookView(snapshot))
}

// RootState handles GET /api/state and returns the full aggregate.
func RootState(c *gin.Context) {
	snapshot, ok := snapshotFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func withFetchTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
