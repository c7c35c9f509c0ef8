package usecase

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	repo "storefront/internal/repository"
)

const stockReasonCheckout = "checkout"

type CheckoutUsecase struct {
	tx             repo.TransactionManager
	carts          repo.CartStore
	productRepo    repo.ProductRepository
	refs           ReferenceGenerator
	validator      FormValidator
	shipping       pricing.ShippingPolicy
	allowBackorder bool
	metrics        OrderMetrics
	logger         *zap.Logger
}

type CheckoutConfig struct {
	Shipping pricing.ShippingPolicy
	// falseなら在庫不足の注文を409で断る
	AllowBackorder bool
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts repo.CartStore,
	productRepo repo.ProductRepository,
	refs ReferenceGenerator,
	validator FormValidator,
	cfg CheckoutConfig,
	metrics OrderMetrics,
	logger *zap.Logger,
) *CheckoutUsecase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutUsecase{
		tx:             tx,
		carts:          carts,
		productRepo:    productRepo,
		refs:           refs,
		validator:      validator,
		shipping:       cfg.Shipping,
		allowBackorder: cfg.AllowBackorder,
		metrics:        metrics,
		logger:         logger,
	}
}

// 注文フォームの入力
type CheckoutInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PaymentType string `json:"payment_type"`
}

func (in CheckoutInput) normalized() CheckoutInput {
	return CheckoutInput{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Email:       strings.TrimSpace(in.Email),
		Address:     strings.TrimSpace(in.Address),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		Country:     strings.TrimSpace(in.Country),
		PaymentType: strings.TrimSpace(in.PaymentType),
	}
}

// 注文フォーム表示用（カート合計と選択肢）
type CheckoutSummary struct {
	Cart         CartResponse `json:"cart"`
	States       []string     `json:"states"`
	Countries    []string     `json:"countries"`
	PaymentTypes []string     `json:"payment_types"`
}

type OrderDisplay struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

type OrderOutput struct {
	ID          int64             `json:"id"`
	Reference   string            `json:"reference"`
	Status      model.OrderStatus `json:"status"`
	PaymentType string            `json:"payment_type"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []model.OrderLine `json:"items"`
	Totals      pricing.Totals    `json:"totals"`
	Display     OrderDisplay      `json:"display"`
}

func (u *CheckoutUsecase) Summary(ctx context.Context, sessionID string) (CheckoutSummary, error) {
	state, err := u.carts.Load(ctx, sessionID)
	if err != nil {
		return CheckoutSummary{}, newInternalError("cart store error", err)
	}
	products, err := u.productRepo.FindByIDs(ctx, state.ProductIDs())
	if err != nil {
		return CheckoutSummary{}, newInternalError("db error", err)
	}

	return CheckoutSummary{
		Cart:         toCartResponse(pricing.AggregateCart(state, pricing.CatalogMap(products), u.shipping)),
		States:       model.States,
		Countries:    model.Countries,
		PaymentTypes: model.PaymentTypes,
	}, nil
}

// Checkout はカートを注文に確定する。
// 注文・明細・在庫減算は1トランザクション。どれかが失敗したら全部戻し、カートも残す。
// 同じカートで2回送ると注文が2件できる（冪等キーは持たない）。
func (u *CheckoutUsecase) Checkout(ctx context.Context, sessionID string, in CheckoutInput) (OrderOutput, error) {
	in = in.normalized()
	if fields := u.validator.ValidateCheckout(in); fields.Any() {
		return OrderOutput{}, NewValidationError(fields)
	}

	state, err := u.carts.Load(ctx, sessionID)
	if err != nil {
		return OrderOutput{}, newInternalError("cart store error", err)
	}
	if state.IsEmpty() {
		u.metrics.CheckoutFailed("empty_cart")
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 商品をID順にロック（同時チェックアウトの減算を直列化）
		locked, err := r.Inventory().LockProducts(ctx, state.ProductIDs())
		if err != nil {
			return newInternalError("db error", err)
		}

		view := pricing.AggregateCart(state, pricing.CatalogMap(locked), u.shipping)
		if len(view.Unresolved) > 0 {
			u.metrics.CheckoutFailed("unavailable_product")
			return NewHTTPError(http.StatusConflict, "cart contains unavailable products")
		}

		now := time.Now()
		order := model.Order{
			Reference:   u.refs.NewReference(),
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			PhoneNumber: in.PhoneNumber,
			Email:       in.Email,
			Address:     in.Address,
			City:        in.City,
			State:       in.State,
			Country:     in.Country,
			Status:      model.OrderStatusPending,
			PaymentType: in.PaymentType,
			CreatedAt:   now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return newInternalError("db error", err)
		}
		order.ID = orderID

		// 明細はカート1行につき1件
		items := make([]model.OrderItem, 0, len(view.Entries))
		lines := make([]model.OrderLine, 0, len(view.Entries))
		for _, e := range view.Entries {
			items = append(items, model.OrderItem{
				ProductID: e.ProductID,
				Quantity:  e.Quantity,
				CreatedAt: now,
			})
			lines = append(lines, model.OrderLine{
				ProductID: e.ProductID,
				Name:      e.Name,
				Image:     e.Image,
				UnitPrice: e.Price,
				Quantity:  e.Quantity,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return newInternalError("db error", err)
		}

		// 在庫は商品ごとに1回だけ減算する
		qtyByProduct := state.QuantityByProduct()
		ids := make([]int64, 0, len(qtyByProduct))
		for id := range qtyByProduct {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			qty := qtyByProduct[id]
			if u.allowBackorder {
				if err := r.Inventory().DecreaseStock(ctx, id, qty); err != nil {
					return newInternalError("db error", err)
				}
			} else {
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, id, qty)
				if err != nil {
					return newInternalError("db error", err)
				}
				if !ok {
					u.metrics.CheckoutFailed("out_of_stock")
					return NewHTTPError(http.StatusConflict, "out of stock")
				}
			}

			if err := r.Inventory().CreateMovement(ctx, model.StockMovement{
				ProductID: id,
				OrderID:   orderID,
				Delta:     -qty,
				Reason:    stockReasonCheckout,
				CreatedAt: now,
			}); err != nil {
				return newInternalError("db error", err)
			}
		}

		out = toOrderOutput(order, lines, u.shipping)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	// 注文はcommit済み。カートが消せなくても成功として返す
	if err := u.carts.Clear(ctx, sessionID); err != nil {
		u.logger.Warn("cart clear failed after checkout",
			zap.String("session_id", sessionID),
			zap.Int64("order_id", out.ID),
			zap.Error(err),
		)
	}

	u.metrics.OrderPlaced(out.Totals.Total)
	u.logger.Info("order placed",
		zap.String("session_id", sessionID),
		zap.Int64("order_id", out.ID),
		zap.String("reference", out.Reference),
		zap.Int("items", len(out.Items)),
		zap.Int64("total", out.Totals.Total),
	)
	return out, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine, shipping pricing.ShippingPolicy) OrderOutput {
	totals := pricing.OrderTotals(lines, shipping)
	return OrderOutput{
		ID:          o.ID,
		Reference:   o.Reference,
		Status:      o.Status,
		PaymentType: o.PaymentType,
		CreatedAt:   o.CreatedAt,
		Items:       lines,
		Totals:      totals,
		Display:     toOrderDisplay(totals),
	}
}

func toOrderDisplay(t pricing.Totals) OrderDisplay {
	return OrderDisplay{
		Subtotal: pricing.FormatMinor(t.Subtotal),
		Shipping: pricing.FormatMinor(t.Shipping),
		Total:    pricing.FormatMinor(t.Total),
	}
}
