package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
	"github.com/stillmaster/stillmaster-api/internal/core/ports"
)

type stubCustomerRepo struct {
	customers map[string]*domain.Customer
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCustomerNotFound
}

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	next   int
	// failCreate makes the next Create return an error after nothing
	// was stored, to exercise the compensation path.
	failCreate bool
	// onFind, when set, runs after each lookup has read; used to hold racing
	// callers until all of them have read the same order state.
	onFind func(id string)
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		r.failCreate = false
		return nil, errors.New("write failed")
	}
	r.next++
	stored := *order
	stored.ID = "order-" + strconv.Itoa(r.next)
	r.orders[stored.ID] = &stored
	return &stored, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	var clone *domain.Order
	if o, ok := r.orders[id]; ok {
		c := *o
		clone = &c
	}
	r.mu.Unlock()
	if r.onFind != nil {
		r.onFind(id)
	}
	if clone == nil {
		return nil, domain.ErrOrderNotFound
	}
	return clone, nil
}

func (r *stubOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		clone := *o
		orders = append(orders, &clone)
	}
	return orders, nil
}

func (r *stubOrderRepo) Update(_ context.Context, order *domain.Order, from domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Status != from {
		return domain.ErrOrderConflict
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string, from domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Status != from {
		return domain.ErrOrderConflict
	}
	delete(r.orders, id)
	return nil
}

type memoryIdemStore struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{keys: make(map[string]string)}
}

func (s *memoryIdemStore) Lookup(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryIdemStore) Remember(_ context.Context, key, orderNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; !ok {
		s.keys[key] = orderNumber
	}
	return nil
}

type orderFixture struct {
	svc       *OrderService
	orders    *stubOrderRepo
	stocks    *stubStockRepo
	inventory *InventoryService
	recorder  *capturingRecorder
}

func newOrderFixture(stocks ...*domain.Stock) *orderFixture {
	stockRepo := newStubStockRepo(stocks...)
	recorder := &capturingRecorder{}
	inventory := NewInventoryService(stockRepo, recorder, zerolog.Nop())
	orders := newStubOrderRepo()
	customers := &stubCustomerRepo{customers: map[string]*domain.Customer{
		"c1": {ID: "c1", Name: "Micil Distillery Shop", Email: "shop@example.com", CustomerType: domain.CustomerRetail},
	}}
	svc := NewOrderService(orders, customers, inventory, newMemoryIdemStore(), zerolog.Nop())
	return &orderFixture{svc: svc, orders: orders, stocks: stockRepo, inventory: inventory, recorder: recorder}
}

func pricedStock(id, quantity, unitPrice string) *domain.Stock {
	s := testStock(id, quantity)
	s.UnitPrice = decimal.RequireFromString(unitPrice)
	return s
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`)

func TestOrderService_CreateOrder(t *testing.T) {
	fx := newOrderFixture(
		pricedStock("s1", "10", "45.50"),
		pricedStock("s2", "8", "12.00"),
	)

	result, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID:     "c1",
		TaxAmount:      decimal.RequireFromString("10.00"),
		ShippingAmount: decimal.RequireFromString("5.00"),
		CreatedBy:      "clerk@example.com",
		Lines: []ports.OrderLineInput{
			{StockID: "s1", Quantity: decimal.RequireFromString("2")},
			{StockID: "s2", Quantity: decimal.RequireFromString("3")},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if result.AlreadyExisted {
		t.Fatalf("fresh order reported as replay")
	}

	order := result.Order
	if !orderNumberPattern.MatchString(order.OrderNumber) {
		t.Fatalf("order number %q does not match expected format", order.OrderNumber)
	}
	if order.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.CustomerName != "Micil Distillery Shop" {
		t.Fatalf("customer name not snapshotted: %q", order.CustomerName)
	}
	if order.CreatedBy != "clerk@example.com" {
		t.Fatalf("unexpected created_by: %q", order.CreatedBy)
	}

	// 2*45.50 + 3*12.00 = 127.00; total adds tax and shipping
	if !order.Subtotal.Equal(decimal.RequireFromString("127.00")) {
		t.Fatalf("expected subtotal 127.00, got %s", order.Subtotal)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("142.00")) {
		t.Fatalf("expected total 142.00, got %s", order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].ProductName == "" || !order.Items[0].UnitPrice.Equal(decimal.RequireFromString("45.50")) {
		t.Fatalf("line snapshot missing: %+v", order.Items[0])
	}
	if !order.Items[1].TotalPrice.Equal(decimal.RequireFromString("36.00")) {
		t.Fatalf("expected line total 36.00, got %s", order.Items[1].TotalPrice)
	}

	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected s1 quantity 8, got %s", got)
	}
	if got := fx.stocks.quantity(t, "s2"); !got.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected s2 quantity 5, got %s", got)
	}
}

func TestOrderService_CreateOrder_CustomerNotFound(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))

	_, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "ghost",
		Lines:      []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("1")}},
	})
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("stock touched on rejected order: %s", got)
	}
}

func TestOrderService_CreateOrder_StockNotFound(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))

	_, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "c1",
		Lines: []ports.OrderLineInput{
			{StockID: "s1", Quantity: decimal.RequireFromString("1")},
			{StockID: "missing", Quantity: decimal.RequireFromString("1")},
		},
	})
	if !errors.Is(err, domain.ErrStockNotFound) {
		t.Fatalf("expected ErrStockNotFound, got %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("stock touched on rejected order: %s", got)
	}
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "2", "45.50"))

	_, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "c1",
		Lines:      []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("3")}},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("stock touched on rejected order: %s", got)
	}
}

func TestOrderService_CreateOrder_InvalidInput(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))

	cases := []ports.CreateOrderInput{
		{CustomerID: "c1"},
		{CustomerID: "c1", Lines: []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.Zero}}},
		{CustomerID: "c1", Lines: []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("-1")}}},
		{
			CustomerID: "c1",
			TaxAmount:  decimal.RequireFromString("-1"),
			Lines:      []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("1")}},
		},
	}
	for i, input := range cases {
		if _, err := fx.svc.CreateOrder(context.Background(), input); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("case %d: expected ErrInvalidQuantity, got %v", i, err)
		}
	}
}

func TestOrderService_CreateOrder_PartialFailureRollsBack(t *testing.T) {
	fx := newOrderFixture(
		pricedStock("s1", "10", "45.50"),
		pricedStock("s2", "3", "12.00"),
	)

	// deplete s2 after validation has passed but before its decrement runs
	depleted := false
	fx.stocks.onFind = func(id string) {
		if id != "s2" || depleted {
			return
		}
		fx.stocks.mu.Lock()
		if fx.stocks.stocks["s1"].QuantityInStock.Equal(decimal.RequireFromString("8")) {
			fx.stocks.stocks["s2"].QuantityInStock = decimal.RequireFromString("1")
			fx.stocks.stocks["s2"].Version++
			depleted = true
		}
		fx.stocks.mu.Unlock()
	}

	_, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "c1",
		Lines: []ports.OrderLineInput{
			{StockID: "s1", Quantity: decimal.RequireFromString("2")},
			{StockID: "s2", Quantity: decimal.RequireFromString("3")},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// the applied s1 decrement must have been compensated
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected s1 restored to 10, got %s", got)
	}
	if len(fx.orders.orders) != 0 {
		t.Fatalf("expected no persisted order")
	}

	var sawRollback bool
	for _, m := range fx.recorder.all() {
		if m.Reason == domain.ReasonOrderRollback && m.StockID == "s1" {
			sawRollback = true
		}
	}
	if !sawRollback {
		t.Fatalf("expected a rollback movement for s1")
	}
}

func TestOrderService_CreateOrder_PersistFailureRollsBack(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	fx.orders.failCreate = true

	_, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "c1",
		Lines:      []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("2")}},
	})
	if err == nil {
		t.Fatalf("expected create to fail")
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected s1 restored to 10, got %s", got)
	}
}

func TestOrderService_CreateOrder_ConcurrentOneWinner(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "5", "45.50"))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
				CustomerID: "c1",
				Lines:      []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("3")}},
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one winner, got ok=%d insufficient=%d", ok, insufficient)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected final quantity 2, got %s", got)
	}
	if len(fx.orders.orders) != 1 {
		t.Fatalf("expected exactly one persisted order, got %d", len(fx.orders.orders))
	}
}

func TestOrderService_CreateOrder_IdempotentReplay(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))

	input := ports.CreateOrderInput{
		CustomerID:     "c1",
		IdempotencyKey: "req-abc",
		Lines:          []ports.OrderLineInput{{StockID: "s1", Quantity: decimal.RequireFromString("2")}},
	}

	first, err := fx.svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := fx.svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if !second.AlreadyExisted {
		t.Fatalf("expected replay to be flagged")
	}
	if second.Order.OrderNumber != first.Order.OrderNumber {
		t.Fatalf("replay returned different order: %s vs %s", second.Order.OrderNumber, first.Order.OrderNumber)
	}
	// replay must not decrement again
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected quantity 8 after replay, got %s", got)
	}
	if len(fx.orders.orders) != 1 {
		t.Fatalf("expected a single order, got %d", len(fx.orders.orders))
	}
}

func createPendingOrder(t *testing.T, fx *orderFixture, lines ...ports.OrderLineInput) *domain.Order {
	t.Helper()
	result, err := fx.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		CustomerID: "c1",
		Lines:      lines,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return result.Order
}

func TestOrderService_UpdateOrder_Transition(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("2")})

	err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{
		Status:         domain.StatusShipped,
		TrackingNumber: "TRK-123",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	updated, err := fx.svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if updated.Status != domain.StatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}
	if updated.TrackingNumber != "TRK-123" {
		t.Fatalf("tracking number not stored: %q", updated.TrackingNumber)
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("expected updated_at to be set")
	}
	// shipping does not touch stock
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("stock changed on ship: %s", got)
	}
}

func TestOrderService_UpdateOrder_InvalidTransition(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("2")})

	if err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: domain.StatusShipped}); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: domain.StatusPending})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: "unknown"}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
}

func TestOrderService_UpdateOrder_SameStatusNoOp(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("2")})

	err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{
		Status: domain.StatusPending,
		Notes:  "call before delivery",
	})
	if err != nil {
		t.Fatalf("same-status update failed: %v", err)
	}

	updated, _ := fx.svc.GetOrder(context.Background(), order.ID)
	if updated.Notes != "call before delivery" {
		t.Fatalf("notes not updated: %q", updated.Notes)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("stock changed on no-op transition: %s", got)
	}
}

func TestOrderService_CancelRestoresStockOnce(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("4")})

	if err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: domain.StatusCancelled}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected stock restored to 10 on cancel, got %s", got)
	}

	// deleting the cancelled order must not restore again
	if err := fx.svc.DeleteOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("delete cancelled failed: %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("stock restored twice: %s", got)
	}
	if _, err := fx.svc.GetOrder(context.Background(), order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
}

func TestOrderService_ConcurrentCancelRestoresOnce(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("4")})

	// hold both cancellations until each has read the order as pending,
	// as two API instances racing on the same order would
	var barrier sync.WaitGroup
	barrier.Add(2)
	fx.orders.onFind = func(string) {
		barrier.Done()
		barrier.Wait()
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: domain.StatusCancelled})
		}(i)
	}
	wg.Wait()
	fx.orders.onFind = nil

	var ok, conflict int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrOrderConflict):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("expected exactly one cancel to commit, got ok=%d conflict=%d", ok, conflict)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected stock restored exactly once to 10, got %s", got)
	}

	updated, err := fx.svc.GetOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if updated.Status != domain.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", updated.Status)
	}
}

func TestOrderService_ConcurrentDeleteRestoresOnce(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("4")})

	var barrier sync.WaitGroup
	barrier.Add(2)
	fx.orders.onFind = func(string) {
		barrier.Done()
		barrier.Wait()
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = fx.svc.DeleteOrder(context.Background(), order.ID)
		}(i)
	}
	wg.Wait()
	fx.orders.onFind = nil

	var ok, lost int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrOrderConflict), errors.Is(err, domain.ErrOrderNotFound):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || lost != 1 {
		t.Fatalf("expected exactly one delete to commit, got ok=%d lost=%d", ok, lost)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected stock restored exactly once to 10, got %s", got)
	}
}

func TestOrderService_DeletePendingRestoresStock(t *testing.T) {
	fx := newOrderFixture(
		pricedStock("s1", "10", "45.50"),
		pricedStock("s2", "6", "12.00"),
	)
	order := createPendingOrder(t, fx,
		ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("2")},
		ports.OrderLineInput{StockID: "s2", Quantity: decimal.RequireFromString("5")},
	)

	if err := fx.svc.DeleteOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected s1 restored to 10, got %s", got)
	}
	if got := fx.stocks.quantity(t, "s2"); !got.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected s2 restored to 6, got %s", got)
	}

	var restored int
	for _, m := range fx.recorder.all() {
		if m.Reason == domain.ReasonOrderDeleted {
			restored++
		}
	}
	if restored != 2 {
		t.Fatalf("expected 2 restore movements, got %d", restored)
	}
}

func TestOrderService_DeleteShippedRejected(t *testing.T) {
	fx := newOrderFixture(pricedStock("s1", "10", "45.50"))
	order := createPendingOrder(t, fx, ports.OrderLineInput{StockID: "s1", Quantity: decimal.RequireFromString("2")})

	if err := fx.svc.UpdateOrder(context.Background(), order.ID, ports.UpdateOrderInput{Status: domain.StatusShipped}); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	err := fx.svc.DeleteOrder(context.Background(), order.ID)
	if !errors.Is(err, domain.ErrInvalidOrderState) {
		t.Fatalf("expected ErrInvalidOrderState, got %v", err)
	}
	if got := fx.stocks.quantity(t, "s1"); !got.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("stock changed on rejected delete: %s", got)
	}
	if _, err := fx.svc.GetOrder(context.Background(), order.ID); err != nil {
		t.Fatalf("order should still exist: %v", err)
	}
}

func TestOrderService_DeleteNotFound(t *testing.T) {
	fx := newOrderFixture()
	if err := fx.svc.DeleteOrder(context.Background(), "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGenerateOrderNumber_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := generateOrderNumber(time.Now().UTC())
		if !orderNumberPattern.MatchString(n) {
			t.Fatalf("order number %q does not match format", n)
		}
		seen[n] = true
	}
	if len(seen) < 45 {
		t.Fatalf("order numbers collide too often: %d unique of 50", len(seen))
	}
}
