package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// money goes over the wire as a JSON number, not decimal's quoted default
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type checkoutItemDTO struct {
	ProductID uuid.UUID   `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     json.Number `json:"price,omitempty"`
}

func toItemDTOs(items []domain.CheckoutItem) []checkoutItemDTO {
	out := make([]checkoutItemDTO, len(items))
	for i, it := range items {
		out[i] = checkoutItemDTO{ProductID: it.ProductID, Quantity: it.Quantity}
		if it.Price != nil {
			out[i].Price = number(*it.Price)
		}
	}
	return out
}

type placedOrder struct {
	Order struct {
		ID string `json:"id"`
	} `json:"order"`
}

func (c *Client) CalculateCheckout(ctx context.Context, items []domain.CheckoutItem, taxes, shippingFee decimal.Decimal) (domain.CheckoutQuote, error) {
	body := struct {
		Items       []checkoutItemDTO `json:"items"`
		Taxes       json.Number       `json:"taxes"`
		ShippingFee json.Number       `json:"shippingFee"`
	}{
		Items:       toItemDTOs(items),
		Taxes:       number(taxes),
		ShippingFee: number(shippingFee),
	}

	var quote domain.CheckoutQuote
	if err := c.call(ctx, http.MethodPost, "/api/checkout/calculate", body, &quote); err != nil {
		return domain.CheckoutQuote{}, err
	}
	return quote, nil
}

func (c *Client) ProcessCheckout(ctx context.Context, req domain.CheckoutRequest, taxes, shippingFee decimal.Decimal) (string, error) {
	body := struct {
		Items               []checkoutItemDTO    `json:"items"`
		ShippingAddress     string               `json:"shippingAddress,omitempty"`
		City                string               `json:"city,omitempty"`
		PostCode            string               `json:"postCode,omitempty"`
		Country             string               `json:"country,omitempty"`
		Phone               string               `json:"phone,omitempty"`
		PaymentMethod       domain.PaymentMethod `json:"paymentMethod"`
		OnlinePaymentOption string               `json:"onlinePaymentOption,omitempty"`
		Taxes               json.Number          `json:"taxes"`
		ShippingFee         json.Number          `json:"shippingFee"`
	}{
		Items:           toItemDTOs(req.Items),
		ShippingAddress: req.Shipping.Address,
		City:            req.Shipping.City,
		PostCode:        req.Shipping.PostCode,
		Country:         req.Shipping.Country,
		Phone:           req.Shipping.Phone,
		PaymentMethod:   req.PaymentMethod,
		Taxes:           number(taxes),
		ShippingFee:     number(shippingFee),
	}
	if req.PaymentMethod == domain.PaymentOnline {
		body.OnlinePaymentOption = req.OnlinePaymentOption
	}

	var out placedOrder
	if err := c.call(ctx, http.MethodPost, "/api/checkout/process", body, &out); err != nil {
		return "", err
	}
	return out.Order.ID, nil
}

func (c *Client) CreateGuestOrder(ctx context.Context, order domain.GuestOrder, items []domain.CheckoutItem, totals domain.Totals) (string, error) {
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	body := struct {
		GuestName           string               `json:"guestName"`
		GuestEmail          string               `json:"guestEmail"`
		GuestPhone          *string              `json:"guestPhone"`
		ShippingAddress     string               `json:"shippingAddress"`
		City                *string              `json:"city"`
		PostCode            *string              `json:"postCode"`
		Country             *string              `json:"country"`
		Items               []checkoutItemDTO    `json:"items"`
		TotalPrice          json.Number          `json:"totalPrice"`
		PaymentMethod       domain.PaymentMethod `json:"paymentMethod"`
		OnlinePaymentOption string               `json:"onlinePaymentOption,omitempty"`
		Taxes               json.Number          `json:"taxes"`
		ShippingFee         json.Number          `json:"shippingFee"`
	}{
		GuestName:       order.Name,
		GuestEmail:      order.Email,
		GuestPhone:      optional(order.Phone),
		ShippingAddress: order.Shipping.Address,
		City:            optional(order.Shipping.City),
		PostCode:        optional(order.Shipping.PostCode),
		Country:         optional(order.Shipping.Country),
		Items:           toItemDTOs(items),
		TotalPrice:      number(totals.Total),
		PaymentMethod:   order.PaymentMethod,
		Taxes:           number(totals.Taxes),
		ShippingFee:     number(totals.ShippingFee),
	}
	if order.PaymentMethod == domain.PaymentOnline {
		body.OnlinePaymentOption = order.OnlinePaymentOption
	}

	var out placedOrder
	if err := c.call(ctx, http.MethodPost, "/api/orders/guest-create", body, &out); err != nil {
		return "", err
	}
	return out.Order.ID, nil
}

func (c *Client) UploadPaymentProof(ctx context.Context, orderID, filename string, proof []byte) error {
	if orderID == "" {
		return fmt.Errorf("orderID is empty")
	}
	if len(proof) == 0 {
		return fmt.Errorf("proof is empty")
	}
	if filename == "" {
		filename = "proof"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("orderId", orderID); err != nil {
		return fmt.Errorf("w.WriteField: %w", err)
	}
	part, err := w.CreateFormFile("proof", filename)
	if err != nil {
		return fmt.Errorf("w.CreateFormFile: %w", err)
	}
	if _, err := part.Write(proof); err != nil {
		return fmt.Errorf("part.Write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("w.Close: %w", err)
	}

	const path = "/api/checkout/upload-proof"
	payload, contentType := buf.Bytes(), w.FormDataContentType()

	env, err := c.send(ctx, http.MethodPost, path, func() (io.Reader, string) {
		return bytes.NewReader(payload), contentType
	})
	if err != nil {
		return err
	}
	return c.finish(http.MethodPost, path, env, nil)
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/orders/get", nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		return []domain.Order{}, nil
	}
	return out.Orders, nil
}
