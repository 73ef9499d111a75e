package bookstoreserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API surface.
type ApiHandleFunctions struct {
	// Routes for the BooksAPI part of the API
	BooksAPI BooksAPI
	// Routes for the StockAPI part of the API
	StockAPI StockAPI
	// Routes for the CartAPI part of the API
	CartAPI CartAPI
	// Routes for the AdminAPI part of the API
	AdminAPI AdminAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(RequestID())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

// DefaultHandleFunc answers routes whose API surface was not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Healthz},

		{"QueryBooks", http.MethodGet, "/v1/books", handleFunctions.BooksAPI.QueryBooks},
		{"GetBook", http.MethodGet, "/v1/books/:isbn", handleFunctions.BooksAPI.GetBook},

		{"ListStock", http.MethodGet, "/v1/stock", handleFunctions.StockAPI.ListStock},
		{"IntakeStock", http.MethodPost, "/v1/stock", handleFunctions.StockAPI.IntakeStock},
		{"GetStock", http.MethodGet, "/v1/stock/:isbn", handleFunctions.StockAPI.GetStock},
		{"ReduceStock", http.MethodPost, "/v1/stock/:isbn/reduce", handleFunctions.StockAPI.ReduceStock},
		{"RestockStock", http.MethodPost, "/v1/stock/:isbn/restock", handleFunctions.StockAPI.RestockStock},

		{"GetCart", http.MethodGet, "/v1/cart", handleFunctions.CartAPI.GetCart},
		{"ReleaseCart", http.MethodDelete, "/v1/cart", handleFunctions.CartAPI.ReleaseCart},
		{"AddCartItem", http.MethodPost, "/v1/cart/items", handleFunctions.CartAPI.AddCartItem},
		{"RemoveCartItem", http.MethodDelete, "/v1/cart/items/:isbn", handleFunctions.CartAPI.RemoveCartItem},
		{"Checkout", http.MethodPost, "/v1/cart/checkout", handleFunctions.CartAPI.Checkout},
		{"GetReceipt", http.MethodGet, "/v1/receipts/:id", handleFunctions.CartAPI.GetReceipt},

		{"ReleaseIdleCarts", http.MethodPost, "/v1/admin/carts/release-idle", handleFunctions.AdminAPI.ReleaseIdleCarts},
	}
}
