package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"akoben/pkg/client"
	apperrors "akoben/pkg/errors"
)

const (
	StatusSuccess = "success"

	serviceName = "payment gateway"
)

// Gateway opens hosted payment sessions and checks their outcome.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Initialization, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
}

type InitializeRequest struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency,omitempty"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type Initialization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Verification struct {
	Status           string `json:"status"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	GatewayResponse  string `json:"gateway_response"`
	Authorization    struct {
		AuthorizationCode string `json:"authorization_code"`
	} `json:"authorization"`
}

func (v *Verification) Successful() bool {
	return v.Status == StatusSuccess
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type PaystackClient struct {
	http *client.HttpClient
}

func NewPaystackClient(httpClient *client.HttpClient, secretKey string) *PaystackClient {
	httpClient.WithHeader("Authorization", "Bearer "+secretKey)
	return &PaystackClient{http: httpClient}
}

func (c *PaystackClient) Initialize(ctx context.Context, req InitializeRequest) (*Initialization, error) {
	resp, err := c.http.POST(ctx, "/transaction/initialize", req)
	if err != nil {
		return nil, apperrors.Upstream(serviceName, err)
	}

	var body envelope[Initialization]
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Verification, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("Payment reference cannot be empty")
	}

	resp, err := c.http.GET(ctx, "/transaction/verify/"+url.PathEscape(reference))
	if err != nil {
		return nil, apperrors.Upstream(serviceName, err)
	}
	if unknownReference(resp) {
		return nil, apperrors.NotFoundWithID("Payment", reference)
	}

	var body envelope[Verification]
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// unknownReference reports the gateway's answer for a reference it never
// issued: 404, or 400 with a "reference not found" message.
func unknownReference(resp *client.Response) bool {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return true
	case http.StatusBadRequest:
		return strings.Contains(strings.ToLower(client.GetErrorMessage(resp)), "not found")
	}
	return false
}

func decode[T any](resp *client.Response, body *envelope[T]) error {
	if !resp.IsSuccess() {
		return apperrors.Upstream(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, client.GetErrorMessage(resp)))
	}
	if err := resp.DecodeJSON(body); err != nil {
		return apperrors.Upstream(serviceName, fmt.Errorf("invalid response: %w", err))
	}
	if !body.Status || body.Data == nil {
		return apperrors.Upstream(serviceName, fmt.Errorf("request rejected: %s", body.Message))
	}
	return nil
}
