package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/pkg/db/models"
	"github.com/cartloom/cartloom-backend/pkg/enums"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	"github.com/cartloom/cartloom-backend/pkg/pagination"
)

// fulfillmentImpliesPaid is the store policy that marking an order
// delivered or completed also settles its payment status. It papers
// over gateways that never delivered a completion callback.
func fulfillmentImpliesPaid(status enums.OrderStatus) bool {
	return status == enums.OrderStatusDelivered || status == enums.OrderStatusCompleted
}

// Service defines order reads and the admin console operations.
type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserOrderList, error)
	FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	AdminList(ctx context.Context, params pagination.Params, filters AdminFilters) (*AdminOrderList, error)
	AdminDetail(ctx context.Context, orderID uuid.UUID) (*AdminOrderDetail, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserOrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	summaries := make([]UserOrderSummary, 0, len(orders))
	for _, order := range orders {
		totalItems := 0
		for _, item := range order.Items {
			totalItems += item.Quantity
		}
		summaries = append(summaries, UserOrderSummary{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        order.Status,
			PaymentStatus: order.PaymentStatus,
			GrandTotal:    order.GrandTotal,
			TotalItems:    totalItems,
			CreatedAt:     order.CreatedAt,
		})
	}

	return &UserOrderList{
		Orders: summaries,
		Meta:   pagination.NewMeta(total, params),
	}, nil
}

func (s *service) FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters AdminFilters) (*AdminOrderList, error) {
	orders, total, err := s.repo.AdminList(ctx, params, filters)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &AdminOrderList{
		Orders: orders,
		Meta:   pagination.NewMeta(total, params),
	}, nil
}

func (s *service) AdminDetail(ctx context.Context, orderID uuid.UUID) (*AdminOrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	detail := &AdminOrderDetail{Order: *order}
	if user, err := s.repo.FindUserByID(ctx, order.UserID); err == nil {
		detail.User = &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return detail, nil
}

// AdminUpdateStatus applies the closed transition table server-side.
// Writing the current status back is a no-op success; terminal states
// reject every change.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	target, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": status})
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	if order.Status == target {
		return order, nil
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
			WithDetails(map[string]any{"from": order.Status, "to": target})
	}

	updates := map[string]any{"status": target}
	if fulfillmentImpliesPaid(target) && order.PaymentStatus != enums.PaymentStatusCompleted {
		updates["payment_status"] = enums.PaymentStatusCompleted
	}

	if err := s.repo.UpdateFields(ctx, orderID, updates); err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, orderID.String())
	s.logg.Info(ctx, fmt.Sprintf("order status changed %s -> %s", order.Status, target))

	return s.repo.FindByID(ctx, orderID)
}
