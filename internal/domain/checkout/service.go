// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
)

const ordersPath = "/api/orders"

var (
	// ErrPromoLocked is returned when a discount was already applied
	ErrPromoLocked = errors.New("checkout: promo code already applied")
	// ErrOrderFailed wraps any failure to create the order in the backend
	ErrOrderFailed = errors.New("checkout: failed to place order")
)

// Carts is the part of the cart service checkout needs
type Carts interface {
	Snapshot(ctx context.Context, sessionID string) (*cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) (*cart.CartResponse, error)
}

// Promos looks up promo codes
type Promos interface {
	PromoCode(ctx context.Context, code string) (*catalog.PromoCode, error)
}

// OrderBackend creates orders
type OrderBackend interface {
	PostMultipart(ctx context.Context, path string, form *backend.MultipartForm) ([]byte, error)
}

// Service prices the cart and submits orders
type Service struct {
	carts           Carts
	promos          Promos
	orders          OrderBackend
	drafts          DraftRepository
	defaultShipping int64
	codAdvance      int64
	maxUploadSize   int64
	allowedExts     []string
	logger          *logrus.Entry
}

// NewService creates a new checkout service
func NewService(carts Carts, promos Promos, orders OrderBackend, drafts DraftRepository, cfg *config.Config, logger *logrus.Entry) *Service {
	return &Service{
		carts:           carts,
		promos:          promos,
		orders:          orders,
		drafts:          drafts,
		defaultShipping: cfg.Checkout.DefaultShippingFee,
		codAdvance:      cfg.Checkout.CODAdvance,
		maxUploadSize:   cfg.Upload.MaxSize,
		allowedExts:     cfg.Upload.AllowedExtensions,
		logger:          logger,
	}
}

// Summary is everything the checkout page renders
type Summary struct {
	Items       []cart.LineItem `json:"cartItems"`
	IsEmpty     bool            `json:"is_empty"`
	District    string          `json:"district"`
	PromoCode   string          `json:"promoCode"`
	PromoLocked bool            `json:"promoLocked"`
	Pricing     Pricing         `json:"priceSummary"`
}

// PaymentMethods lists the accepted payment methods
func (s *Service) PaymentMethods() []PaymentMethod {
	return PaymentMethods(s.codAdvance)
}

// Summary prices the current cart with the session's district and promo
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	d, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, sessionID, d)
}

func (s *Service) summarize(ctx context.Context, sessionID string, d *Draft) (*Summary, error) {
	c, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Items:       c.Items,
		IsEmpty:     c.IsEmpty(),
		District:    d.District,
		PromoCode:   d.PromoCode,
		PromoLocked: d.PromoLocked(),
		Pricing:     s.price(c, d.District, d),
	}, nil
}

func (s *Service) price(c *cart.Cart, district string, d *Draft) Pricing {
	return ComputePricing(Subtotal(c.Items), ShippingFee(district, s.defaultShipping), d.DiscountPct, d.MaxAmount)
}

// SetDistrict records the delivery district; shipping and the discount cap
// are recomputed from it on every summary.
func (s *Service) SetDistrict(ctx context.Context, sessionID, district string) (*Summary, error) {
	district = strings.TrimSpace(district)
	d, err := s.drafts.Update(ctx, sessionID, func(d *Draft) error {
		d.District = district
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, sessionID, d)
}

// ApplyPromo validates code against the backend and stores its discount.
// Once a discount is applied the code can no longer be changed.
func (s *Service) ApplyPromo(ctx context.Context, sessionID, code string) (*Summary, error) {
	current, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current.PromoLocked() {
		return nil, ErrPromoLocked
	}

	promo, err := s.promos.PromoCode(ctx, code)
	if err != nil {
		s.logger.WithError(err).WithField("promo_code", code).Info("Promo code rejected")
		return nil, err
	}

	d, err := s.drafts.Update(ctx, sessionID, func(d *Draft) error {
		if d.PromoLocked() {
			return ErrPromoLocked
		}
		d.PromoCode = promo.Code
		d.DiscountPct = promo.Discount
		d.MaxAmount = promo.MaxAmount
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"promo_code": promo.Code,
		"discount":   promo.Discount,
	}).Info("Promo code applied")

	return s.summarize(ctx, sessionID, d)
}

// Validate runs the pre-submission checks without contacting the backend
func (s *Service) Validate(ctx context.Context, sessionID string, form *OrderForm) error {
	c, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return err
	}
	d, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	withDraftDistrict(form, d)
	if verr := ValidateOrder(c.IsEmpty(), form); verr != nil {
		return verr
	}
	return nil
}

// Upload is an image attached to an order
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// PlaceOrderRequest is a submitted checkout form
type PlaceOrderRequest struct {
	Form                  OrderForm
	PaymentImage          *Upload
	CustomImage           *Upload
	CustomCaseCoordinates string
}

// Placement is the outcome of a successful order
type Placement struct {
	OrderID  string `json:"orderId"`
	Redirect string `json:"redirect"`
}

// OrderItem is one line of the orderItems document
type OrderItem struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Variant string  `json:"variant"`
	Product string  `json:"product"`
}

// PlaceOrder validates the form, posts it to the backend and clears the
// cart and draft on success. Nothing is sent when validation fails, and a
// failed submission is never retried.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, req *PlaceOrderRequest) (*Placement, error) {
	c, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	withDraftDistrict(&req.Form, d)
	if verr := ValidateOrder(c.IsEmpty(), &req.Form); verr != nil {
		return nil, verr
	}
	if verr := s.checkUpload(req.PaymentImage); verr != nil {
		return nil, verr
	}

	form, err := s.buildForm(c, d, req)
	if err != nil {
		return nil, err
	}

	body, err := s.orders.PostMultipart(ctx, ordersPath, form)
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to place order")
		return nil, fmt.Errorf("%w: %w", ErrOrderFailed, err)
	}

	id := parseOrderID(body)
	if id == "" {
		s.logger.WithField("session_id", sessionID).Error("Order created without an id")
		return nil, fmt.Errorf("%w: missing order id", ErrOrderFailed)
	}

	if _, err := s.carts.ClearCart(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("order_id", id).Warn("Failed to clear cart after order")
	}
	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("order_id", id).Warn("Failed to clear checkout draft after order")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":     sessionID,
		"order_id":       id,
		"payment_method": req.Form.PaymentMethod,
	}).Info("Order placed")

	return &Placement{OrderID: id, Redirect: "/order/" + id}, nil
}

// withDraftDistrict fills a blank form district from the one chosen on the
// checkout page, so the order is priced the way the summary showed it.
// A draft without a district leaves the city fallback to ValidateOrder.
func withDraftDistrict(f *OrderForm, d *Draft) {
	if strings.TrimSpace(f.District) == "" && d != nil {
		f.District = d.District
	}
}

func (s *Service) checkUpload(u *Upload) *ValidationError {
	if u == nil || u.Content == nil {
		return &ValidationError{Field: fieldPaymentImage, Message: msgPaymentImage}
	}
	if s.maxUploadSize > 0 && u.Size > s.maxUploadSize {
		return &ValidationError{Field: fieldPaymentImage, Message: msgImageSize}
	}
	if len(s.allowedExts) == 0 {
		return nil
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Filename)), ".")
	for _, allowed := range s.allowedExts {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return &ValidationError{Field: fieldPaymentImage, Message: msgImageExtension}
}

func (s *Service) buildForm(c *cart.Cart, d *Draft, req *PlaceOrderRequest) (*backend.MultipartForm, error) {
	f := req.Form
	form := &backend.MultipartForm{}

	form.Set("name", f.Name)
	form.Set("phone", f.Phone)
	form.Set("email", f.Email)
	form.Set("city", f.City)
	form.Set("shippingAddress", f.ShippingAddress)
	form.Set("paymentMethod", f.PaymentMethod)
	if f.AdditionalInfo != "" {
		form.Set("additionalInfo", f.AdditionalInfo)
	}
	form.Set("district", f.District)

	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItem{
			Name:    item.Product.Name,
			Qty:     item.Quantity,
			Image:   item.Product.Image,
			Price:   item.Price,
			Variant: item.Variant,
			Product: item.Product.ID,
		})
	}
	if err := form.SetJSON("orderItems", items); err != nil {
		return nil, err
	}

	pricing := s.price(c, f.District, d)
	if err := form.SetJSON("priceSummary", pricing.Summary(d.PromoCode)); err != nil {
		return nil, err
	}

	form.Set("customCaseCoordinates", caseCoordinates(req.CustomCaseCoordinates))

	form.AddFile(backend.File{
		Field:    "paymentImage",
		Filename: uploadName(req.PaymentImage.Filename, "payment-proof"),
		Content:  req.PaymentImage.Content,
	})
	if req.CustomImage != nil && req.CustomImage.Content != nil {
		form.AddFile(backend.File{
			Field:    "customImage",
			Filename: uploadName(req.CustomImage.Filename, "custom-image"),
			Content:  req.CustomImage.Content,
		})
	}

	return form, nil
}

// caseCoordinates passes through a non-empty JSON object and defaults to {}
func caseCoordinates(raw string) string {
	raw = strings.TrimSpace(raw)
	var obj map[string]any
	if raw == "" || json.Unmarshal([]byte(raw), &obj) != nil || len(obj) == 0 {
		return "{}"
	}
	return raw
}

func uploadName(name, fallback string) string {
	if name = filepath.Base(strings.TrimSpace(name)); name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}

// parseOrderID reads the created order id from {_id} or {data:{_id}}
func parseOrderID(body []byte) string {
	var resp struct {
		ID   string `json:"_id"`
		Data struct {
			ID string `json:"_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if resp.ID != "" {
		return resp.ID
	}
	return resp.Data.ID
}
