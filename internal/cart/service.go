package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartloom/cartloom-backend/internal/products"
	"github.com/cartloom/cartloom-backend/pkg/db/models"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the cart operations exposed to controllers.
type Service interface {
	GetCart(ctx context.Context, cartID string) *View
	AddToCart(ctx context.Context, cartID string, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, cartID string, itemID uuid.UUID, qty int) (*View, error)
	RemoveItem(ctx context.Context, cartID string, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, cartID string) error
	Transfer(ctx context.Context, fromCartID, toCartID string) (*View, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, productsRepo products.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: productsRepo, tx: tx, logg: logg}, nil
}

// GetCart renders the cart with live catalog data. A read failure is
// logged and surfaces as an empty cart so storefront pages keep
// rendering.
func (s *service) GetCart(ctx context.Context, cartID string) *View {
	if cartID == "" {
		return EmptyView(cartID)
	}

	view, err := s.render(ctx, cartID)
	if err != nil {
		s.logg.Error(s.logg.WithCartID(ctx, cartID), "cart render failed, returning empty cart", err)
		return EmptyView(cartID)
	}
	return view
}

func (s *service) render(ctx context.Context, cartID string) (*View, error) {
	items, err := s.repo.ListByCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := EmptyView(cartID)
	for _, item := range items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// product removed from catalog after it was carted
				continue
			}
			return nil, err
		}

		variant := findVariant(product, item.VariantID)
		if item.VariantID != nil && variant == nil {
			continue
		}

		unit := resolveUnitPrice(product, variant)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

		itemView := ItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      product.Name,
			UnitPrice: unit,
			Quantity:  item.Quantity,
			LineTotal: line,
			InStock:   availableStock(product, variant) > 0,
		}
		if len(product.Images) > 0 {
			itemView.Image = product.Images[0]
		}
		if variant != nil {
			name := variant.Name
			itemView.VariantName = &name
		}

		view.Items = append(view.Items, itemView)
		view.TotalItems += item.Quantity
		view.Subtotal = view.Subtotal.Add(line)
	}
	return view, nil
}

func (s *service) AddToCart(ctx context.Context, cartID string, input AddItemInput) (*View, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	qty := input.Quantity
	if qty <= 0 {
		qty = 1
	}

	product, err := s.products.FindActiveByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}

	var variant *models.ProductVariant
	if input.VariantID != nil {
		variant = findVariant(product, input.VariantID)
		if variant == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
	}

	if availableStock(product, variant) < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByTriple(ctx, cartID, input.ProductID, input.VariantID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return repo.Create(ctx, &models.CartItem{
				CartID:    cartID,
				ProductID: input.ProductID,
				VariantID: input.VariantID,
				Quantity:  qty,
			})
		}
		return repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+qty)
	})
	if err != nil {
		return nil, err
	}

	return s.render(ctx, cartID)
}

func (s *service) UpdateItem(ctx context.Context, cartID string, itemID uuid.UUID, qty int) (*View, error) {
	item, err := s.findOwnedItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}

	if qty <= 0 {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
	} else if err := s.repo.UpdateQuantity(ctx, item.ID, qty); err != nil {
		return nil, err
	}

	return s.render(ctx, cartID)
}

func (s *service) RemoveItem(ctx context.Context, cartID string, itemID uuid.UUID) (*View, error) {
	item, err := s.findOwnedItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.render(ctx, cartID)
}

func (s *service) Clear(ctx context.Context, cartID string) error {
	if cartID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	return s.repo.Clear(ctx, cartID)
}

// Transfer merges a guest cart into the authenticated user's cart.
// Matching triples are summed, the rest change owner, and the source
// cart ends empty. Runs as a single transaction.
func (s *service) Transfer(ctx context.Context, fromCartID, toCartID string) (*View, error) {
	if fromCartID == "" || toCartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both cart ids are required")
	}
	if fromCartID == toCartID {
		return s.render(ctx, toCartID)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sourceItems, err := repo.ListByCart(ctx, fromCartID)
		if err != nil {
			return err
		}

		for _, item := range sourceItems {
			existing, err := repo.FindByTriple(ctx, toCartID, item.ProductID, item.VariantID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if err := repo.UpdateCartID(ctx, item.ID, toCartID); err != nil {
					return err
				}
				continue
			}
			if err := repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+item.Quantity); err != nil {
				return err
			}
			if err := repo.Delete(ctx, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.render(ctx, toCartID)
}

func (s *service) findOwnedItem(ctx context.Context, cartID string, itemID uuid.UUID) (*models.CartItem, error) {
	if cartID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindItem(ctx, cartID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, err
	}
	return item, nil
}

func findVariant(product *models.Product, variantID *uuid.UUID) *models.ProductVariant {
	if variantID == nil {
		return nil
	}
	for i := range product.Variants {
		if product.Variants[i].ID == *variantID {
			return &product.Variants[i]
		}
	}
	return nil
}

// resolveUnitPrice applies the precedence variant price over product
// discount price over product price.
func resolveUnitPrice(product *models.Product, variant *models.ProductVariant) decimal.Decimal {
	if variant != nil && variant.Price != nil && variant.Price.IsPositive() {
		return *variant.Price
	}
	return product.EffectivePrice()
}

func availableStock(product *models.Product, variant *models.ProductVariant) int {
	if variant != nil {
		return variant.Inventory
	}
	return product.Inventory
}
