package otp

import (
	"context"
	"fmt"

	"akoben/pkg/client"
	apperrors "akoben/pkg/errors"
	"akoben/pkg/sanitizer"
)

const (
	codeLength    = 6
	expiryMinutes = 5

	defaultMessage = "Your Fie ne Fie verification code is %otp_code%"

	arkeselVerified = "1100"
)

// Provider sends and checks one-time codes delivered by SMS.
type Provider interface {
	Send(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone string, code string) (bool, error)
}

type ArkeselClient struct {
	http     *client.HttpClient
	apiKey   string
	senderID string
	region   string
}

func NewArkeselClient(httpClient *client.HttpClient, apiKey, senderID, region string) *ArkeselClient {
	httpClient.WithHeader("api-key", apiKey)
	return &ArkeselClient{
		http:     httpClient,
		apiKey:   apiKey,
		senderID: senderID,
		region:   region,
	}
}

type generateRequest struct {
	Expiry   int    `json:"expiry"`
	Length   int    `json:"length"`
	Medium   string `json:"medium"`
	Message  string `json:"message"`
	Number   string `json:"number"`
	SenderID string `json:"sender_id"`
	Type     string `json:"type"`
}

type verifyRequest struct {
	APIKey string `json:"api_key"`
	Code   string `json:"code"`
	Number string `json:"number"`
}

type arkeselResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *ArkeselClient) Send(ctx context.Context, phone string) error {
	number := sanitizer.MSISDN(phone, c.region)
	if number == "" {
		return apperrors.InvalidInput("Invalid phone number format")
	}

	resp, err := c.http.POST(ctx, "/api/otp/generate", generateRequest{
		Expiry:   expiryMinutes,
		Length:   codeLength,
		Medium:   "sms",
		Message:  defaultMessage,
		Number:   number,
		SenderID: c.senderID,
		Type:     "numeric",
	})
	if err != nil {
		return apperrors.Upstream("otp", err)
	}
	if !resp.IsSuccess() {
		return apperrors.Upstream("otp", fmt.Errorf("generate returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp)))
	}
	return nil
}

// Verify reports whether code is the one sent to phone. A wrong or expired
// code is a false result, not an error.
func (c *ArkeselClient) Verify(ctx context.Context, phone string, code string) (bool, error) {
	number := sanitizer.MSISDN(phone, c.region)
	if number == "" {
		return false, apperrors.InvalidInput("Invalid phone number format")
	}

	resp, err := c.http.POST(ctx, "/api/otp/verify", verifyRequest{
		APIKey: c.apiKey,
		Code:   code,
		Number: number,
	})
	if err != nil {
		return false, apperrors.Upstream("otp", err)
	}
	if resp.StatusCode >= 500 {
		return false, apperrors.Upstream("otp", fmt.Errorf("verify returned %d", resp.StatusCode))
	}

	var body arkeselResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return false, apperrors.Upstream("otp", fmt.Errorf("decode verify response: %w", err))
	}
	return body.Code == arkeselVerified, nil
}
