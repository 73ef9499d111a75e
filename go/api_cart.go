package bookstoreserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	invhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/http/mapper"
	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	invdomain "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/domain"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// CartAPI exposes the shopper's reservation cart. The shopper is named by the X-Shopper-ID header.
type CartAPI struct {
	service invports.Service
}

// NewCartAPI creates a CartAPI backed by the provided service.
func NewCartAPI(service invports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v1/cart
// Show the shopper's cart
func (api *CartAPI) GetCart(c *gin.Context) {
	cart, err := api.service.GetCart(c.Request.Context(), shopperFrom(c))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromCartView(cart))
}

// Delete /v1/cart
// Abandon the cart and return its units to the ledger
func (api *CartAPI) ReleaseCart(c *gin.Context) {
	released, err := api.service.ReleaseCart(c.Request.Context(), shopperFrom(c))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.ReleaseResult{Released: released})
}

// Post /v1/cart/items
// Reserve units of a book
func (api *CartAPI) AddCartItem(c *gin.Context) {
	var payload invhttpmapper.CartItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	cart, err := api.service.AddToCart(c.Request.Context(), invtypes.CartItemInput{
		Shopper:  shopperFrom(c),
		ISBN:     payload.ISBN,
		Quantity: payload.Quantity,
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromCartView(cart))
}

// Delete /v1/cart/items/:isbn
// Return reserved units to the ledger; without ?quantity the whole line is removed
func (api *CartAPI) RemoveCartItem(c *gin.Context) {
	shopper := shopperFrom(c)
	isbn := c.Param("isbn")
	quantity, ok, err := api.removalQuantity(c, shopper, isbn)
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	if !ok {
		return
	}
	cart, err := api.service.RemoveFromCart(c.Request.Context(), invtypes.CartItemInput{
		Shopper:  shopper,
		ISBN:     isbn,
		Quantity: quantity,
	})
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromCartView(cart))
}

func (api *CartAPI) removalQuantity(c *gin.Context, shopper invdomain.ShopperID, isbn string) (int, bool, error) {
	if raw, present := c.GetQuery("quantity"); present {
		quantity, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			respondProblem(c, apierrors.NewValidationProblem(map[string]string{"quantity": "must be an integer"}))
			return 0, false, nil
		}
		return quantity, true, nil
	}
	cart, err := api.service.GetCart(c.Request.Context(), shopper)
	if err != nil {
		return 0, false, err
	}
	for _, line := range cart.Lines {
		if line.Book != nil && line.Book.ISBN == isbn {
			return line.Quantity, true, nil
		}
	}
	// Let the service report the missing line.
	return 1, true, nil
}

// Post /v1/cart/checkout
// Commit the reservation and issue a receipt
func (api *CartAPI) Checkout(c *gin.Context) {
	receipt, err := api.service.Checkout(c.Request.Context(), shopperFrom(c))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromReceipt(receipt))
}

// Get /v1/receipts/:id
// Find a checkout receipt
func (api *CartAPI) GetReceipt(c *gin.Context) {
	receipt, err := api.service.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.FromReceipt(receipt))
}

func shopperFrom(c *gin.Context) invdomain.ShopperID {
	return invdomain.ShopperID(strings.TrimSpace(c.GetHeader(ShopperIDHeader)))
}
