package bookstoreserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	invhttpmapper "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/adapters/http/mapper"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// AdminAPI hosts operator endpoints.
type AdminAPI struct {
	service  invports.Service
	idleCart time.Duration
}

// NewAdminAPI creates an AdminAPI. idleCart is used when a request does not name its own threshold.
func NewAdminAPI(service invports.Service, idleCart time.Duration) AdminAPI {
	return AdminAPI{service: service, idleCart: idleCart}
}

// Post /v1/admin/carts/release-idle
// Release carts untouched for idleMinutes
func (api *AdminAPI) ReleaseIdleCarts(c *gin.Context) {
	idleFor := api.idleCart
	if raw, ok := c.GetQuery("idleMinutes"); ok {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			respondProblem(c, apierrors.NewValidationProblem(map[string]string{"idleMinutes": "must be a positive integer"}))
			return
		}
		idleFor = time.Duration(minutes) * time.Minute
	}
	released, err := api.service.ReleaseIdleCarts(c.Request.Context(), idleFor)
	if err != nil {
		respondInventoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, invhttpmapper.ReleaseResult{Released: released})
}
