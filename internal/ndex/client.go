// Package ndex is a small client for the NDEx REST API covering the calls
// the loader needs: listing a user's networks, fetching a network as CX, and
// creating or updating a network from a CX payload.
package ndex

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// NetworkSummary is the subset of an NDEx network summary the loader uses.
type NetworkSummary struct {
	Name       string    `json:"name"`
	ExternalID uuid.UUID `json:"externalId"`
}

type userRecord struct {
	ExternalID uuid.UUID `json:"externalId"`
}

// Client talks to one NDEx server with one account.
type Client struct {
	client   *resty.Client
	username string
}

// NewClient builds a client for a server given without scheme, the way
// credentials files record it (e.g. public.ndexbio.org).
func NewClient(server, username, password, userAgent string) *Client {
	base := server
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(base, "/")+"/v2").
		SetBasicAuth(username, password).
		SetHeader("User-Agent", userAgent).
		SetTimeout(5 * time.Minute).
		SetRetryCount(3).
		SetRetryWaitTime(time.Second)
	return &Client{client: client, username: username}
}

// NetworkSummariesForUser lists the summaries of every network owned by the
// given account.
func (c *Client) NetworkSummariesForUser(ctx context.Context, user string) ([]NetworkSummary, error) {
	var record userRecord
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("username", user).
		SetResult(&record).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("user lookup got status code %d", resp.StatusCode())
	}

	var summaries []NetworkSummary
	resp, err = c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"offset": "0", "limit": "10000"}).
		SetResult(&summaries).
		Get("/user/" + record.ExternalID.String() + "/networksummary")
	if err != nil {
		return nil, fmt.Errorf("network summary listing failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("network summary listing got status code %d", resp.StatusCode())
	}
	return summaries, nil
}

// NetworkAsCX downloads a network's raw CX document.
func (c *Client) NetworkAsCX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/network/" + id.String())
	if err != nil {
		return nil, fmt.Errorf("network download failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("network download got status code %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// SaveNewNetwork uploads a CX payload as a new network with the requested
// visibility (PUBLIC or PRIVATE).
func (c *Client) SaveNewNetwork(ctx context.Context, rawCX []byte, visibility string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("visibility", visibility).
		SetFileReader("CXNetworkStream", "network.cx", bytes.NewReader(rawCX)).
		Post("/network")
	if err != nil {
		return fmt.Errorf("network save failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("network save got status code %d", resp.StatusCode())
	}
	return nil
}

// UpdateNetwork replaces an existing network's content with a CX payload.
func (c *Client) UpdateNetwork(ctx context.Context, id uuid.UUID, rawCX []byte) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("CXNetworkStream", "network.cx", bytes.NewReader(rawCX)).
		Put("/network/" + id.String())
	if err != nil {
		return fmt.Errorf("network update failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("network update got status code %d", resp.StatusCode())
	}
	return nil
}
