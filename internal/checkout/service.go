package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/internal/cart"
	"github.com/cartloom/cartloom-backend/internal/orders"
	"github.com/cartloom/cartloom-backend/internal/products"
	"github.com/cartloom/cartloom-backend/pkg/config"
	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/razorpay"
	"github.com/cartloom/cartloom-backend/pkg/types"
)

const orderNumberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the payment provider surface the workflow depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]any) (*razorpay.GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]any, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

// Service drives the order workflow from cart to verified payment.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*Params, error)
	VerifyPayment(ctx context.Context, input VerifyInput) (*VerifyResult, error)
	PendingPaymentData(ctx context.Context, userID, orderID uuid.UUID) (*Params, error)
}

type service struct {
	orders   orders.Repository
	carts    cart.Repository
	products products.Repository
	gateway  Gateway
	tx       txRunner
	cfg      config.CheckoutConfig
	logg     *logger.Logger
}

// NewService builds the checkout service with the required dependencies.
func NewService(
	ordersRepo orders.Repository,
	cartRepo cart.Repository,
	productsRepo products.Repository,
	gateway Gateway,
	tx txRunner,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		orders:   ordersRepo,
		carts:    cartRepo,
		products: productsRepo,
		gateway:  gateway,
		tx:       tx,
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// CreateOrder snapshots the cart into an order inside one transaction,
// then registers the order with the gateway. A gateway failure after
// commit leaves the order pending with no gateway reference; the
// pending-payment path recreates it later.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*Params, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	billing := input.BillingAddress
	if input.UseShippingAsBilling || billing == nil {
		shipping := input.ShippingAddress
		billing = &shipping
	} else if err := billing.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}

	user, err := s.orders.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, err
	}

	cartID := userID.String()
	cartItems, err := s.carts.ListByCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	orderItems, subtotal, err := s.snapshotItems(ctx, cartItems)
	if err != nil {
		return nil, err
	}
	if len(orderItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := &models.Order{
		UserID:          userID,
		CartID:          cartID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		SubTotal:        subtotal,
		TaxAmount:       decimal.Zero,
		ShippingAmount:  decimal.Zero,
		DiscountAmount:  decimal.Zero,
		GrandTotal:      subtotal,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  *billing,
		PaymentMethod:   input.PaymentMethod,
		CustomerNote:    input.CustomerNote,
	}

	if err := s.persistOrder(ctx, order, orderItems); err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, fmt.Sprintf("order %s created", order.OrderNumber))

	gatewayOrder, err := s.gateway.CreateOrder(ctx, minorUnits(order.GrandTotal), s.gateway.Currency(), order.OrderNumber, map[string]any{
		"order_id": order.ID.String(),
	})
	if err != nil {
		// order stays pending without a gateway ref; recoverable later
		s.logg.Error(ctx, "gateway order creation failed after commit", err)
		return nil, err
	}

	gatewayID := gatewayOrder.ID
	order.GatewayOrderID = &gatewayID
	if err := s.orders.UpdateOrder(ctx, order.ID, &models.Order{GatewayOrderID: &gatewayID}, "gateway_order_id"); err != nil {
		return nil, err
	}

	return s.buildParams(order, user, gatewayOrder.ID), nil
}

func (s *service) snapshotItems(ctx context.Context, cartItems []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(cartItems))

	for _, cartItem := range cartItems {
		product, err := s.products.FindByID(ctx, cartItem.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, decimal.Zero, err
		}

		var variant *models.ProductVariant
		if cartItem.VariantID != nil {
			for i := range product.Variants {
				if product.Variants[i].ID == *cartItem.VariantID {
					variant = &product.Variants[i]
					break
				}
			}
			if variant == nil {
				continue
			}
		}

		unit := product.EffectivePrice()
		sku := product.SKU
		if variant != nil {
			sku = variant.SKU
			if variant.Price != nil && variant.Price.IsPositive() {
				unit = *variant.Price
			}
		}

		line := unit.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
		subtotal = subtotal.Add(line)

		snapshot := types.ProductSnapshot{
			ProductID:     product.ID.String(),
			SKU:           product.SKU,
			Name:          product.Name,
			Price:         product.Price,
			DiscountPrice: product.DiscountPrice,
			UnitPrice:     unit,
			TaxRate:       product.TaxRate,
			Images:        product.Images,
		}
		if variant != nil {
			id := variant.ID.String()
			name := variant.Name
			snapshot.VariantID = &id
			snapshot.VariantName = &name
			snapshot.VariantPrice = variant.Price
		}

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			VariantID:   cartItem.VariantID,
			SKU:         sku,
			Name:        product.Name,
			Price:       unit,
			Quantity:    cartItem.Quantity,
			TotalPrice:  line,
			ProductData: snapshot,
		})
	}

	return items, subtotal, nil
}

// persistOrder writes the order and its item snapshots in one
// transaction, regenerating the order number when it collides.
func (s *service) persistOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.ID = uuid.Nil
		order.OrderNumber = newOrderNumber(time.Now())

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.orders.WithTx(tx)
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
			for i := range items {
				items[i].ID = uuid.Nil
				items[i].OrderID = order.ID
			}
			return repo.CreateItems(ctx, items)
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a unique order number")
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pkgerrors.IsUniqueViolation(err)
}

// VerifyPayment settles the gateway callback. The expected signature is
// recomputed server-side and compared in constant time; only a match
// touches inventory or the cart.
func (s *service) VerifyPayment(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if input.GatewayOrderID == "" || input.PaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id, payment id, and signature are required")
	}

	order, err := s.orders.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for gateway reference")
		}
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if order.PaymentStatus == enums.PaymentStatusCompleted {
		// callback replay for a settled order
		return &VerifyResult{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        string(order.Status),
			PaymentStatus: string(order.PaymentStatus),
			AlreadyPaid:   true,
		}, nil
	}

	if !s.gateway.VerifySignature(input.GatewayOrderID, input.PaymentID, input.Signature) {
		if err := s.orders.UpdateFields(ctx, order.ID, map[string]any{
			"status":         enums.OrderStatusPaymentFailed,
			"payment_status": enums.PaymentStatusFailed,
		}); err != nil {
			return nil, err
		}
		s.logg.Warn(ctx, "payment signature mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment signature verification failed")
	}

	payment, err := s.gateway.FetchPayment(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}

	details := &types.PaymentDetails{
		RazorpayOrderID:   input.GatewayOrderID,
		RazorpayPaymentID: input.PaymentID,
		RazorpaySignature: input.Signature,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		productsRepo := s.products.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)

		record := &models.Payment{
			OrderID:          order.ID,
			GatewayOrderID:   input.GatewayOrderID,
			GatewayPaymentID: input.PaymentID,
			Signature:        input.Signature,
			Amount:           paymentAmount(payment, order.GrandTotal),
			Currency:         paymentString(payment, "currency", s.gateway.Currency()),
			Method:           paymentString(payment, "method", order.PaymentMethod),
			Status:           enums.PaymentStatusCompleted,
			Payload:          payment,
		}
		if err := ordersRepo.CreatePayment(ctx, record); err != nil {
			return err
		}

		if err := ordersRepo.UpdateOrder(ctx, order.ID, &models.Order{
			Status:         enums.OrderStatusProcessing,
			PaymentStatus:  enums.PaymentStatusCompleted,
			PaymentDetails: details,
		}, "status", "payment_status", "payment_details"); err != nil {
			return err
		}

		for _, item := range order.Items {
			if item.VariantID != nil {
				if err := productsRepo.DecrementVariantInventory(ctx, *item.VariantID, item.Quantity); err != nil {
					return err
				}
				continue
			}
			if err := productsRepo.DecrementInventory(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return cartRepo.Clear(ctx, order.CartID)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, fmt.Sprintf("payment verified for order %s", order.OrderNumber))

	return &VerifyResult{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(enums.OrderStatusProcessing),
		PaymentStatus: string(enums.PaymentStatusCompleted),
	}, nil
}

// PendingPaymentData re-derives the widget params for an order still
// awaiting payment, creating the gateway order on the fly when the
// checkout-time gateway call never succeeded.
func (s *service) PendingPaymentData(ctx context.Context, userID, orderID uuid.UUID) (*Params, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	if order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}

	user, err := s.orders.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	gatewayID := ""
	if order.GatewayOrderID != nil {
		gatewayID = *order.GatewayOrderID
	}
	if gatewayID == "" {
		gatewayOrder, err := s.gateway.CreateOrder(ctx, minorUnits(order.GrandTotal), s.gateway.Currency(), order.OrderNumber, map[string]any{
			"order_id": order.ID.String(),
		})
		if err != nil {
			return nil, err
		}
		gatewayID = gatewayOrder.ID
		if err := s.orders.UpdateOrder(ctx, order.ID, &models.Order{GatewayOrderID: &gatewayID}, "gateway_order_id"); err != nil {
			return nil, err
		}
	}

	return s.buildParams(order, user, gatewayID), nil
}

func (s *service) buildParams(order *models.Order, user *models.User, gatewayOrderID string) *Params {
	prefill := Prefill{Name: user.Name, Email: user.Email}
	if user.Phone != nil {
		prefill.Phone = *user.Phone
	}

	addressNote := fmt.Sprintf("%s, %s, %s %s",
		order.ShippingAddress.AddressLine1,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.PostalCode,
	)

	return &Params{
		Key:            s.gateway.KeyID(),
		Amount:         minorUnits(order.GrandTotal),
		Currency:       s.gateway.Currency(),
		GatewayOrderID: gatewayOrderID,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		StoreName:      s.cfg.StoreName,
		Description:    fmt.Sprintf("Order %s", order.OrderNumber),
		Prefill:        prefill,
		AddressNote:    addressNote,
		GrandTotal:     order.GrandTotal,
	}
}

// minorUnits converts a major-unit decimal total into the gateway's
// integer minor units (paise for INR), rounding half away from zero.
func minorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func paymentAmount(payload map[string]any, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := payload["amount"].(float64); ok {
		return decimal.NewFromFloat(v).Div(decimal.NewFromInt(100))
	}
	return fallback
}

func paymentString(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
