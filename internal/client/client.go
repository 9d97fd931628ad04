// Package client posts broadcast messages to a chat server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"broadcast/internal/models"
)

const (
	// DefaultServer is the local chat server the broadcast command talks to.
	DefaultServer = "http://localhost:8888"
	// BroadcastPath is appended to the server address for every broadcast.
	BroadcastPath = "/api/broadcast/"
)

// ErrUnreachable wraps transport failures such as a refused connection.
var ErrUnreachable = errors.New("server unreachable")

// StatusError is returned when the server answers with anything but 201.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received status %d from server: %s", e.Code, e.Body)
}

// Client sends broadcasts to a single chat server.
type Client struct {
	client *http.Client
	server string
}

// New returns a client for server. A nil httpClient gets a client without a timeout.
func New(server string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{client: httpClient, server: server}
}

// Server returns the address the client posts to.
func (c *Client) Server() string {
	return c.server
}

// Broadcast posts msg as {"msg": msg} and succeeds only on 201 Created.
func (c *Client) Broadcast(ctx context.Context, msg string) error {
	bodyBytes, err := json.Marshal(models.BroadcastRequest{Msg: msg})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+BroadcastPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, c.server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return nil
}
