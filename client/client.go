//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/hmnpros/gateway/x/util"
)

const (
	defaultTimeout = 10 * time.Second
)

var tracer = otel.Tracer("client")

// ContactRequest is the upstream contact upsert payload.
type ContactRequest struct {
	LocationID string   `json:"locationId"`
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Source     string   `json:"source,omitempty"`
}

type ContactResponse struct {
	Contact struct {
		ID string `json:"id"`
	} `json:"contact"`
}

// OpportunityRequest is the upstream opportunity create payload.
type OpportunityRequest struct {
	LocationID    string `json:"locationId"`
	ContactID     string `json:"contactId"`
	PipelineID    string `json:"pipelineId"`
	Name          string `json:"name"`
	Status        string `json:"status,omitempty"`
	MonetaryValue int64  `json:"monetaryValue,omitempty"`
}

type OpportunityResponse struct {
	Opportunity struct {
		ID string `json:"id"`
	} `json:"opportunity"`
}

// Client talks to the upstream CRM REST API.
type Client interface {
	UpsertContact(ctx context.Context, request ContactRequest) (string, error)
	CreateOpportunity(ctx context.Context, request OpportunityRequest) (string, error)
}

type client struct {
	config util.Crm
}

func NewClient(config util.Crm) Client {
	return &client{config: config}
}

func (c *client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	httpClient := &http.Client{
		Timeout:   defaultTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("crm returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *client) UpsertContact(ctx context.Context, request ContactRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.UpsertContact")
	defer span.End()

	if request.LocationID == "" {
		request.LocationID = c.config.LocationID
	}

	body, err := c.do(ctx, "POST", "/contacts/upsert", request)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	var response ContactResponse
	if err := json.Unmarshal(body, &response); err != nil {
		span.RecordError(err)
		return "", err
	}

	return response.Contact.ID, nil
}

func (c *client) CreateOpportunity(ctx context.Context, request OpportunityRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "Client.CreateOpportunity")
	defer span.End()

	if request.LocationID == "" {
		request.LocationID = c.config.LocationID
	}

	body, err := c.do(ctx, "POST", "/opportunities", request)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	var response OpportunityResponse
	if err := json.Unmarshal(body, &response); err != nil {
		span.RecordError(err)
		return "", err
	}

	return response.Opportunity.ID, nil
}
