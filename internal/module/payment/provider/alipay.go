package provider

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/alipay"
)

// AlipayConfig holds Alipay configuration.
type AlipayConfig struct {
	AppID           string // Application ID
	PrivateKey      string // RSA2 private key (PEM format)
	AlipayPublicKey string // Alipay public key for verification (PEM format)
	IsProd          bool   // Production environment flag
}

// AlipayProvider implements Provider for Alipay.
type AlipayProvider struct {
	client *alipay.Client
}

// NewAlipayProvider creates a new Alipay provider.
func NewAlipayProvider(config *AlipayConfig) (*AlipayProvider, error) {
	client, err := alipay.NewClient(config.AppID, config.PrivateKey, config.IsProd)
	if err != nil {
		return nil, fmt.Errorf("create alipay client: %w", err)
	}

	// Set public key for auto signature verification
	client.AutoVerifySign([]byte(config.AlipayPublicKey))

	return &AlipayProvider{client: client}, nil
}

// Name returns the provider name.
func (p *AlipayProvider) Name() string {
	return "alipay"
}

// CreateRefund executes a refund against the original trade.
// Alipay's trade refund is synchronous: a 10000 response code means the
// money has been returned.
func (p *AlipayProvider) CreateRefund(ctx context.Context, input *RefundInput) (*RefundResult, error) {
	amount := input.Amount
	if amount == 0 {
		amount = input.TotalAmount
	}

	bm := make(gopay.BodyMap)
	bm.Set("trade_no", input.ChargeID)
	bm.Set("out_request_no", input.RefundID)
	bm.Set("refund_amount", fmt.Sprintf("%.2f", float64(amount)/100))
	if input.Reason != "" {
		bm.Set("refund_reason", input.Reason)
	}

	resp, err := p.client.TradeRefund(ctx, bm)
	if err != nil {
		return nil, fmt.Errorf("trade refund: %w", err)
	}
	if resp.Response.Code != "10000" {
		return nil, fmt.Errorf("alipay refund error: %s - %s", resp.Response.Code, resp.Response.Msg)
	}

	refunded, err := yuanToMinor(resp.Response.RefundFee)
	if err != nil {
		// The refund went through; fall back to the amount we asked for
		// rather than failing after the money has moved.
		refunded = amount
	}

	return &RefundResult{
		ProviderRefundID: resp.Response.TradeNo,
		Amount:           refunded,
		Status:           RefundStatusSucceeded,
	}, nil
}

// yuanToMinor converts Alipay's decimal yuan string to minor units.
// A bare float multiply truncates ("19.99" → 1998), so round.
func yuanToMinor(s string) (int64, error) {
	yuan, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse refund fee %q: %w", s, err)
	}
	return int64(math.Round(yuan * 100)), nil
}
