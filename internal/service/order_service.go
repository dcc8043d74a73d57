package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	// PlaceOrder records the order and consumes formula stock atomically. A non-empty
	// idempotencyKey makes a resubmission fail with DuplicateOrderRequest.
	PlaceOrder(ctx context.Context, req *PlaceOrderRequest, idempotencyKey string) (*OrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context, page repository.Page) (*PageResult[model.Order], error)
}

type OrderItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"decimal_gt0"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"decimal_gte0"`
}

type OrderPaymentRequest struct {
	Amount        decimal.Decimal     `json:"amount" validate:"decimal_gte0"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required"`
}

type PlaceOrderRequest struct {
	// IsSafeOrder defaults to true. False skips price and payment checks.
	IsSafeOrder *bool                 `json:"is_safe_order"`
	Note        string                `json:"note" validate:"max=1000"`
	Items       []OrderItemRequest    `json:"items" validate:"min=1,dive"`
	Payments    []OrderPaymentRequest `json:"payments" validate:"dive"`
}

func (r *PlaceOrderRequest) Safe() bool {
	return r.IsSafeOrder == nil || *r.IsSafeOrder
}

// StockConsumption is what one order took from a raw material, in its native unit.
type StockConsumption struct {
	RawMaterialID  uuid.UUID       `json:"raw_material_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	RemainingStock decimal.Decimal `json:"remaining_stock"`
}

type OrderResult struct {
	Order        *model.Order       `json:"order"`
	Consumptions []StockConsumption `json:"consumptions"`
}

type OrderConfig struct {
	AllowNegativeStock bool
}

type orderService struct {
	db              *gorm.DB
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	formulaRepo     repository.FormulaRepository
	rawMaterialRepo repository.RawMaterialRepository
	units           UnitService
	tenants         TenantResolver
	guard           OrderGuard
	notifier        Notifier
	cfg             OrderConfig
}

func NewOrderService(db *gorm.DB, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, formulaRepo repository.FormulaRepository, rawMaterialRepo repository.RawMaterialRepository, units UnitService, tenants TenantResolver, guard OrderGuard, notifier Notifier, cfg OrderConfig) OrderService {
	return &orderService{
		db:              db,
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		formulaRepo:     formulaRepo,
		rawMaterialRepo: rawMaterialRepo,
		units:           units,
		tenants:         tenants,
		guard:           guard,
		notifier:        notifier,
		cfg:             cfg,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest, idempotencyKey string) (*OrderResult, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	for _, p := range req.Payments {
		if !p.PaymentMethod.Valid() {
			return nil, validationFailed("InvalidPaymentMethod", string(p.PaymentMethod))
		}
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		fresh, err := s.guard.Reserve(ctx, tenant.ID, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !fresh {
			return nil, conflict("DuplicateOrderRequest", idempotencyKey)
		}
	}

	result, err := s.place(ctx, tenant.ID, req)
	if err != nil && idempotencyKey != "" {
		// A failed placement persisted nothing, so the same key may be submitted again.
		if relErr := s.guard.Release(context.Background(), tenant.ID, idempotencyKey); relErr != nil {
			logger.LogError(logger.GetLogger(), "service", "PlaceOrder", "release idempotency key", idempotencyKey, relErr)
		}
	}
	if err != nil {
		return nil, err
	}

	s.notifyPlaced(ctx, tenant.ID, result)
	return result, nil
}

func (s *orderService) place(ctx context.Context, tenantID uuid.UUID, req *PlaceOrderRequest) (*OrderResult, error) {
	unlock, ok, err := s.guard.Lock(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("obtain order lock: %w", err)
	}
	if !ok {
		return nil, conflict("OrderInProgress", tenantID.String())
	}
	defer unlock()

	var result *OrderResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		products, err := s.loadProducts(ctx, s.productRepo.WithTx(tx), tenantID, req.Items)
		if err != nil {
			return err
		}
		if req.Safe() {
			if err := checkPricing(req, products); err != nil {
				return err
			}
		}

		by := appctx.UserID(ctx)
		order := buildOrder(tenantID, req, products, by)
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		consumptions, err := s.consume(ctx, tx, tenantID, req.Items, products, by)
		if err != nil {
			return err
		}
		result = &OrderResult{Order: order, Consumptions: consumptions}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *orderService) loadProducts(ctx context.Context, repo repository.ProductRepository, tenantID uuid.UUID, items []OrderItemRequest) (map[uuid.UUID]*model.Product, error) {
	products := make(map[uuid.UUID]*model.Product, len(items))
	for _, item := range items {
		if _, ok := products[item.ProductID]; ok {
			continue
		}
		product, err := repo.FindByID(ctx, tenantID, item.ProductID)
		if isNotFound(err) {
			return nil, notFound("Product")
		}
		if err != nil {
			return nil, fmt.Errorf("find product: %w", err)
		}
		products[item.ProductID] = product
	}
	return products, nil
}

// checkPricing re-prices every line against the current product price and requires the
// payments, discounts included, to cover the expected total.
func checkPricing(req *PlaceOrderRequest, products map[uuid.UUID]*model.Product) error {
	expectedTotal := decimal.Zero
	for _, item := range req.Items {
		product := products[item.ProductID]
		expected := product.Price.Mul(item.Quantity)
		if !withinTolerance(item.TotalAmount, expected) {
			return badRequest("OrderItemPriceMismatch", product.SKU, expected.StringFixed(2), item.TotalAmount.StringFixed(2))
		}
		expectedTotal = expectedTotal.Add(expected)
	}

	paid := decimal.Zero
	for _, p := range req.Payments {
		paid = paid.Add(p.Amount)
	}
	if paid.LessThan(expectedTotal) {
		return badRequest("InsufficientPayment", expectedTotal.StringFixed(2), paid.StringFixed(2))
	}
	return nil
}

func buildOrder(tenantID uuid.UUID, req *PlaceOrderRequest, products map[uuid.UUID]*model.Product, by string) *model.Order {
	order := &model.Order{
		TenantID:       tenantID,
		IsSafeOrder:    req.Safe(),
		Note:           req.Note,
		TotalAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalQuantity:  decimal.Zero,
	}
	order.CreatedBy = by
	order.UpdatedBy = by

	for _, itemReq := range req.Items {
		item := model.OrderItem{
			ProductID:   itemReq.ProductID,
			Quantity:    itemReq.Quantity,
			UnitPrice:   products[itemReq.ProductID].Price,
			TotalAmount: itemReq.TotalAmount,
		}
		item.CreatedBy = by
		item.UpdatedBy = by
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(itemReq.TotalAmount)
		order.TotalQuantity = order.TotalQuantity.Add(itemReq.Quantity)
	}
	for _, payReq := range req.Payments {
		payment := model.OrderPayment{Amount: payReq.Amount, PaymentMethod: payReq.PaymentMethod}
		payment.CreatedBy = by
		payment.UpdatedBy = by
		order.Payments = append(order.Payments, payment)
		if payReq.PaymentMethod == model.PaymentDiscount {
			order.DiscountAmount = order.DiscountAmount.Add(payReq.Amount)
		}
	}
	order.NetAmount = order.TotalAmount.Sub(order.DiscountAmount)
	return order
}

type requirement struct {
	item    model.ProductFormulaItem
	ordered decimal.Decimal
}

// consume decrements raw material stock for every formula line of the ordered products.
// Rows are locked in id order so concurrent orders cannot deadlock on each other.
func (s *orderService) consume(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, items []OrderItemRequest, products map[uuid.UUID]*model.Product, by string) ([]StockConsumption, error) {
	formulas := s.formulaRepo.WithTx(tx)
	rawMaterials := s.rawMaterialRepo.WithTx(tx)
	units := s.units.WithTx(tx)

	loaded := map[uuid.UUID]*model.ProductFormula{}
	var reqs []requirement
	for _, item := range items {
		product := products[item.ProductID]
		if product.ProductFormulaID == nil {
			continue
		}
		formula, ok := loaded[*product.ProductFormulaID]
		if !ok {
			f, err := formulas.FindByID(ctx, tenantID, *product.ProductFormulaID)
			if isNotFound(err) {
				return nil, notFound("ProductFormula")
			}
			if err != nil {
				return nil, fmt.Errorf("find formula: %w", err)
			}
			formula = f
			loaded[formula.ID] = formula
		}
		for _, fi := range formula.Items {
			reqs = append(reqs, requirement{item: fi, ordered: item.Quantity})
		}
	}
	if len(reqs) == 0 {
		return []StockConsumption{}, nil
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	seen := map[uuid.UUID]bool{}
	for _, r := range reqs {
		if !seen[r.item.RawMaterialID] {
			seen[r.item.RawMaterialID] = true
			ids = append(ids, r.item.RawMaterialID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	locked := make(map[uuid.UUID]*model.RawMaterial, len(ids))
	for _, id := range ids {
		rm, err := rawMaterials.FindByIDForUpdate(ctx, tenantID, id)
		if isNotFound(err) {
			return nil, notFound("RawMaterial")
		}
		if err != nil {
			return nil, fmt.Errorf("lock raw material: %w", err)
		}
		locked[id] = rm
	}

	consumed := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, r := range reqs {
		qty, err := units.ToNative(ctx, r.item.Quantity.Mul(r.ordered), r.item.UnitID, r.item.RawMaterialID)
		if err != nil {
			return nil, err
		}
		consumed[r.item.RawMaterialID] = consumed[r.item.RawMaterialID].Add(qty)
	}

	result := make([]StockConsumption, 0, len(ids))
	for _, id := range ids {
		rm := locked[id]
		stock := roundQuantity(rm.Stock.Sub(consumed[id]))
		if stock.IsNegative() && !s.cfg.AllowNegativeStock {
			return nil, badRequest("InsufficientRawMaterialStock", rm.Name)
		}
		if err := rawMaterials.UpdateStock(ctx, id, stock, by); err != nil {
			return nil, fmt.Errorf("update stock: %w", err)
		}
		result = append(result, StockConsumption{
			RawMaterialID:  id,
			UnitID:         rm.UnitID,
			Quantity:       consumed[id],
			RemainingStock: stock,
		})
	}
	return result, nil
}

func (s *orderService) notifyPlaced(ctx context.Context, tenantID uuid.UUID, result *OrderResult) {
	userName, _ := appctx.GetString(ctx, appctx.ContextKeyUserName)
	stock := make([]map[string]interface{}, 0, len(result.Consumptions))
	for _, c := range result.Consumptions {
		stock = append(stock, map[string]interface{}{
			"raw_material_id": c.RawMaterialID.String(),
			"consumed":        c.Quantity.String(),
			"stock":           c.RemainingStock.String(),
		})
	}
	go s.notifier.Notify(tenantID, map[string]interface{}{
		"type":     "stock_update",
		"action":   "order_placed",
		"order_id": result.Order.ID.String(),
		"stock":    stock,
		"user": map[string]interface{}{
			"id":   appctx.UserID(ctx),
			"name": userName,
		},
		"at": time.Now(),
	})
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, tenant.ID, id)
	if isNotFound(err) {
		return nil, notFound("Order")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, page repository.Page) (*PageResult[model.Order], error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orderRepo.List(ctx, tenant.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return newPage(orders, total, page), nil
}
