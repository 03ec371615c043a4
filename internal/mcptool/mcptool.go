// Package mcptool integrates an MCP registry/proxy as the optional
// tool-invocation collaborator. An unconfigured client is a no-op surface,
// not an error.
package mcptool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammad-safakhou/scout/internal/research"
)

// ServerInfo describes one registered tool server.
type ServerInfo struct {
	QualifiedName string         `json:"qualified_name"`
	DisplayName   string         `json:"display_name"`
	Description   string         `json:"description"`
	Tools         []string       `json:"tools"`
	ConfigSchema  map[string]any `json:"config_schema"`
}

// Client talks to an MCP registry for discovery and a proxy for invocation.
type Client struct {
	registryURL string
	proxyURL    string
	apiKey      string
	http        *http.Client
	logger      *log.Logger
}

// NewClient builds the tool client. Empty registry/proxy URLs disable the
// corresponding surface.
func NewClient(registryURL, proxyURL, apiKey string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		registryURL: strings.TrimRight(registryURL, "/"),
		proxyURL:    strings.TrimRight(proxyURL, "/"),
		apiKey:      apiKey,
		http:        &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Configured reports whether tool invocation can be attempted at all.
func (c *Client) Configured() bool {
	return c.proxyURL != "" && c.apiKey != ""
}

// ListServers fetches the registry's server catalog. Missing configuration
// yields an empty list, matching the no-op contract.
func (c *Client) ListServers(ctx context.Context) ([]ServerInfo, error) {
	if c.registryURL == "" || c.apiKey == "" {
		return nil, nil
	}
	var raw []map[string]any
	if err := c.getJSON(ctx, c.registryURL+"/servers", &raw); err != nil {
		return nil, fmt.Errorf("listing tool servers: %w", err)
	}
	out := make([]ServerInfo, 0, len(raw))
	for _, entry := range raw {
		out = append(out, normalizeServer(entry))
	}
	return out, nil
}

// GetServer fetches one server's details by qualified name.
func (c *Client) GetServer(ctx context.Context, qualifiedName string) (ServerInfo, bool, error) {
	if c.registryURL == "" || c.apiKey == "" {
		return ServerInfo{}, false, nil
	}
	var raw map[string]any
	err := c.getJSON(ctx, c.registryURL+"/servers/"+url.PathEscape(qualifiedName), &raw)
	if err != nil {
		return ServerInfo{}, false, fmt.Errorf("fetching tool server %s: %w", qualifiedName, err)
	}
	if raw == nil {
		return ServerInfo{}, false, nil
	}
	return normalizeServer(raw), true, nil
}

// Invoke calls one tool through the proxy. HTTP and tool-level failures are
// reported through the result status so the research loop can record them
// without aborting the turn.
func (c *Client) Invoke(ctx context.Context, server, tool string, payload map[string]any) (research.ToolResult, error) {
	if !c.Configured() {
		return research.ToolResult{}, fmt.Errorf("tool proxy not configured")
	}
	body, err := json.Marshal(map[string]any{"tool": tool, "params": payload})
	if err != nil {
		return research.ToolResult{}, fmt.Errorf("encoding tool request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/mcp", c.proxyURL, server)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return research.ToolResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return research.ToolResult{}, fmt.Errorf("invoking %s/%s: %w", server, tool, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return research.ToolResult{}, fmt.Errorf("reading tool response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("tool %s/%s returned status %d", server, tool, resp.StatusCode)
		return research.ToolResult{Status: "error", Data: string(data)}, nil
	}
	return research.ToolResult{Status: "success", Data: string(data)}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// normalizeServer tolerates both snake_case and camelCase registry payloads
// and both string and object tool listings.
func normalizeServer(raw map[string]any) ServerInfo {
	info := ServerInfo{
		QualifiedName: pickString(raw, "qualifiedName", "qualified_name"),
		DisplayName:   pickString(raw, "displayName", "display_name"),
		Description:   pickString(raw, "description"),
	}
	if schema, ok := raw["configSchema"].(map[string]any); ok {
		info.ConfigSchema = schema
	} else if schema, ok := raw["config_schema"].(map[string]any); ok {
		info.ConfigSchema = schema
	}
	if tools, ok := raw["tools"].([]any); ok {
		for _, t := range tools {
			switch v := t.(type) {
			case string:
				info.Tools = append(info.Tools, v)
			case map[string]any:
				if name, ok := v["name"].(string); ok && name != "" {
					info.Tools = append(info.Tools, name)
				}
			}
		}
	}
	return info
}

func pickString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
