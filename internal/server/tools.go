package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/scout/internal/mcptool"
)

// ToolsHandler exposes the MCP tool-server registry.
type ToolsHandler struct {
	client *mcptool.Client
}

// Register wires the tool registry routes.
func (h *ToolsHandler) Register(g *echo.Group) {
	g.GET("/tools/servers", h.listServers)
	g.GET("/tools/servers/:qualified_name", h.getServer)
}

func (h *ToolsHandler) listServers(c echo.Context) error {
	servers, err := h.client.ListServers(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if servers == nil {
		servers = []mcptool.ServerInfo{}
	}
	return c.JSON(http.StatusOK, servers)
}

func (h *ToolsHandler) getServer(c echo.Context) error {
	info, ok, err := h.client.GetServer(c.Request().Context(), c.Param("qualified_name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "tool server not found")
	}
	return c.JSON(http.StatusOK, info)
}
