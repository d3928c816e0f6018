// Package cliclient is a thin HTTP client for cmd/rocomactl against a
// running rocoma server's /api/v1 surface.
package cliclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to one rocoma server's base URL (e.g. "http://localhost:8090").
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client against baseURL.
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 10 * time.Second}}
}

// SwitchResponse is the JSON body returned by POST /controllers/switch.
type SwitchResponse struct {
	Status string `json:"status"`
}

// EstopResponse is the JSON body returned by the estop/estop-clear endpoints.
type EstopResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Switch requests a switch to the named controller.
func (c *Client) Switch(name string) (*SwitchResponse, error) {
	var resp SwitchResponse
	if err := c.postJSON("/api/v1/controllers/switch", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Available lists every registered controller name.
func (c *Client) Available() ([]string, error) {
	var resp struct {
		AvailableControllers []string `json:"available_controllers"`
	}
	if err := c.get("/api/v1/controllers", &resp); err != nil {
		return nil, err
	}
	return resp.AvailableControllers, nil
}

// Active returns the name of the currently active controller.
func (c *Client) Active() (string, error) {
	var resp struct {
		ActiveController string `json:"active_controller"`
	}
	if err := c.get("/api/v1/controllers/active", &resp); err != nil {
		return "", err
	}
	return resp.ActiveController, nil
}

// Estop triggers an operator emergency stop.
func (c *Client) Estop() (*EstopResponse, error) {
	var resp EstopResponse
	if err := c.postJSON("/api/v1/estop", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearEstop clears a latched emergency stop.
func (c *Client) ClearEstop() (*EstopResponse, error) {
	var resp EstopResponse
	if err := c.postJSON("/api/v1/estop/clear", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("cliclient: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) postJSON(path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("cliclient: encode request for %s: %w", path, err)
		}
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", &buf)
	if err != nil {
		return fmt.Errorf("cliclient: POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cliclient: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("cliclient: server returned %s: %s", resp.Status, string(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cliclient: decode response: %w", err)
	}
	return nil
}
