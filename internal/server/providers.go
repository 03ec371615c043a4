package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/scout/internal/provider"
)

// ProvidersHandler reports which LLM providers are usable right now.
type ProvidersHandler struct {
	registry *provider.Registry
}

// Register wires the provider routes.
func (h *ProvidersHandler) Register(g *echo.Group) {
	g.GET("/providers", h.listProviders)
}

func (h *ProvidersHandler) listProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Available(c.Request().Context()))
}
