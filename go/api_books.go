package bookstoreserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	invhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/http/mapper"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// QueryBooksParams defines parameters for QueryBooks.
type QueryBooksParams struct {
	// Q is the free-text search term.
	Q *string `form:"q,omitempty" json:"q,omitempty"`
	// Author restricts results to any of the named contributors ("LastName, FirstName").
	Author *[]string `form:"author,omitempty" json:"author,omitempty"`
	Genre  *[]string `form:"genre,omitempty" json:"genre,omitempty"`
	// Publisher restricts results to any of the named publishers.
	Publisher *[]string `form:"publisher,omitempty" json:"publisher,omitempty"`
	MaxPrice  *string   `form:"maxPrice,omitempty" json:"maxPrice,omitempty"`
	// Sort is one of default, low_to_high, high_to_low or alphabetical.
	Sort *string `form:"sort,omitempty" json:"sort,omitempty"`
}

// BooksAPI serves catalog reads: the composed search and single-book lookups.
type BooksAPI struct {
	service invports.Service
}

// NewBooksAPI creates a BooksAPI backed by the provided service.
func NewBooksAPI(service invports.Service) BooksAPI {
	return BooksAPI{service: service}
}

// Get /v1/books
// Search, filter and sort stocked books
func (api *BooksAPI) QueryBooks(c *gin.Context) {
	params, err := bindQueryBooksParams(c)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := invtypes.QueryInput{
		Text:       deref(params.Q),
		Authors:    derefSlice(params.Author),
		Genres:     derefSlice(params.Genre),
		Publishers: derefSlice(params.Publisher),
		Sort:       deref(params.Sort),
	}
	if params.MaxPrice != nil {
		maxPrice, err := decimal.NewFromString(*params.MaxPrice)
		if err != nil {
			respondProblem(c, apierrors.NewValidationProblem(map[string]string{"maxPrice": "must be a decimal amount"}))
			return
		}
		input.MaxPrice = &maxPrice
	}
	result, err := api.service.Query(c.Request.Context(), input)
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromQueryResult(result))
}

// Get /v1/books/:isbn
// Find a catalog book and its stock level
func (api *BooksAPI) GetBook(c *gin.Context) {
	view, err := api.service.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromBookView(view))
}

func bindQueryBooksParams(c *gin.Context) (QueryBooksParams, error) {
	var params QueryBooksParams
	query := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return params, fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "author", query, &params.Author); err != nil {
		return params, fmt.Errorf("invalid format for parameter author: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "genre", query, &params.Genre); err != nil {
		return params, fmt.Errorf("invalid format for parameter genre: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "publisher", query, &params.Publisher); err != nil {
		return params, fmt.Errorf("invalid format for parameter publisher: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "maxPrice", query, &params.MaxPrice); err != nil {
		return params, fmt.Errorf("invalid format for parameter maxPrice: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort", query, &params.Sort); err != nil {
		return params, fmt.Errorf("invalid format for parameter sort: %w", err)
	}
	return params, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefSlice(values *[]string) []string {
	if values == nil {
		return nil
	}
	return *values
}
