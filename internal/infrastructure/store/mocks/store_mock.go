package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/infrastructure/store"
)

var _ store.Store = (*MockStore)(nil)

// MockStore is an in-memory implementation of every repository the services use.
// It enforces the same constraints as the Postgres store: unique order numbers,
// unique coupon codes, conditional coupon usage and versioned status updates.
type MockStore struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	coupons  map[string]*coupon.Coupon
	products map[string]*catalog.Product
	carts    map[string]map[string]cart.Item
	profiles map[string]*account.Profile
	sessions map[string]*account.RefreshSession

	// For tracking calls in tests
	CreateOrderCalls  []CreateOrderCall
	UpdateStatusCalls []UpdateStatusCall
	ClearCartCalls    []string
	GetProductsCalls  [][]string

	// CreateOrderErrs are returned by successive CreateOrder calls before the
	// normal behaviour applies. A nil entry means "behave normally".
	CreateOrderErrs []error
	UpdateStatusErr error
	ClearCartErr    error
}

// CreateOrderCall records parameters passed to CreateOrder
type CreateOrderCall struct {
	OrderNumber string
	CouponID    string
	CouponCode  string
	Discount    string
	Total       string
}

// UpdateStatusCall records parameters passed to UpdateOrderStatus
type UpdateStatusCall struct {
	OrderID           string
	ExpectedVersion   int
	PaymentStatus     order.PaymentStatus
	FulfillmentStatus order.FulfillmentStatus
}

func NewMockStore() *MockStore {
	return &MockStore{
		orders:   make(map[string]*order.Order),
		coupons:  make(map[string]*coupon.Coupon),
		products: make(map[string]*catalog.Product),
		carts:    make(map[string]map[string]cart.Item),
		profiles: make(map[string]*account.Profile),
		sessions: make(map[string]*account.RefreshSession),
	}
}

/* ================= seeding ================= */

func (m *MockStore) AddProduct(p *catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.products[p.ID] = &cp
}

func (m *MockStore) AddCoupon(c *coupon.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.coupons[c.ID] = &cp
}

func (m *MockStore) AddOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
}

// Coupon returns a copy of the stored coupon, or nil.
func (m *MockStore) Coupon(id string) *coupon.Coupon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// OrderCount returns the number of stored orders.
func (m *MockStore) OrderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

/* ================= orders ================= */

func (m *MockStore) CreateOrder(ctx context.Context, o *order.Order, couponID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateOrderCalls = append(m.CreateOrderCalls, CreateOrderCall{
		OrderNumber: o.OrderNumber,
		CouponID:    couponID,
		CouponCode:  o.CouponCode,
		Discount:    o.DiscountAmount.StringFixed(2),
		Total:       o.TotalAmount.StringFixed(2),
	})

	if len(m.CreateOrderErrs) > 0 {
		err := m.CreateOrderErrs[0]
		m.CreateOrderErrs = m.CreateOrderErrs[1:]
		if err != nil {
			return err
		}
	}

	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return order.ErrDuplicateOrderNumber
		}
	}

	if couponID != "" {
		c, ok := m.coupons[couponID]
		if !ok || !c.IsActive || c.Exhausted() {
			return coupon.ErrUsageLimitReached
		}
		c.UsedCount++
	}

	cp := *o
	cp.Items = append(cp.Items[:0:0], o.Items...)
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockStore) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *MockStore) ListOrdersByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *MockStore) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, o := range m.orders {
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.FulfillmentStatus != "" && o.FulfillmentStatus != filter.FulfillmentStatus {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sortOrders(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, o *order.Order, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateStatusCalls = append(m.UpdateStatusCalls, UpdateStatusCall{
		OrderID:           o.ID,
		ExpectedVersion:   expectedVersion,
		PaymentStatus:     o.PaymentStatus,
		FulfillmentStatus: o.FulfillmentStatus,
	})
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}

	stored, ok := m.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if stored.Version != expectedVersion {
		return order.ErrConcurrentUpdate
	}
	stored.PaymentStatus = o.PaymentStatus
	stored.FulfillmentStatus = o.FulfillmentStatus
	stored.PaymentReference = o.PaymentReference
	stored.UpdatedAt = o.UpdatedAt
	stored.Version = o.Version
	return nil
}

func sortOrders(orders []*order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

/* ================= coupons ================= */

func (m *MockStore) FindActiveCoupon(ctx context.Context, code string) (*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.coupons {
		if c.IsActive && strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, coupon.ErrCouponNotFound
}

func (m *MockStore) CreateCoupon(ctx context.Context, c *coupon.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.coupons {
		if strings.EqualFold(existing.Code, c.Code) {
			return coupon.ErrDuplicateCode
		}
	}
	cp := *c
	m.coupons[c.ID] = &cp
	return nil
}

func (m *MockStore) UpdateCoupon(ctx context.Context, c *coupon.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[c.ID]; !ok {
		return coupon.ErrCouponNotFound
	}
	for id, existing := range m.coupons {
		if id != c.ID && strings.EqualFold(existing.Code, c.Code) {
			return coupon.ErrDuplicateCode
		}
	}
	cp := *c
	m.coupons[c.ID] = &cp
	return nil
}

func (m *MockStore) GetCoupon(ctx context.Context, id string) (*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.coupons[id]
	if !ok {
		return nil, coupon.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockStore) ListCoupons(ctx context.Context) ([]*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*coupon.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

/* ================= products ================= */

func (m *MockStore) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) GetProducts(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetProductsCalls = append(m.GetProductsCalls, append([]string(nil), ids...))
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockStore) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*catalog.Product
	for _, p := range m.products {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

/* ================= cart ================= */

func (m *MockStore) AddItem(ctx context.Context, userID, productID string, quantity int) (cart.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.carts[userID]
	if !ok {
		lines = make(map[string]cart.Item)
		m.carts[userID] = lines
	}
	item, ok := lines[productID]
	if !ok {
		item = cart.Item{ProductID: productID, AddedAt: time.Now().UTC()}
	}
	item.Quantity += quantity
	lines[productID] = item
	return item, nil
}

func (m *MockStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.carts[userID][productID]
	if !ok {
		return cart.ErrItemNotFound
	}
	item.Quantity = quantity
	m.carts[userID][productID] = item
	return nil
}

func (m *MockStore) RemoveItem(ctx context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID][productID]; !ok {
		return cart.ErrItemNotFound
	}
	delete(m.carts[userID], productID)
	return nil
}

func (m *MockStore) ClearCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCartCalls = append(m.ClearCartCalls, userID)
	if m.ClearCartErr != nil {
		return m.ClearCartErr
	}
	delete(m.carts, userID)
	return nil
}

func (m *MockStore) ListItems(ctx context.Context, userID string) ([]cart.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]cart.Item, 0, len(m.carts[userID]))
	for _, item := range m.carts[userID] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

/* ================= profiles ================= */

func (m *MockStore) CreateProfile(ctx context.Context, p *account.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return account.ErrEmailTaken
		}
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *MockStore) GetProfile(ctx context.Context, id string) (*account.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, account.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) GetProfileByEmail(ctx context.Context, email string) (*account.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, account.ErrProfileNotFound
}

func (m *MockStore) CreateSession(ctx context.Context, s *account.RefreshSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MockStore) GetSession(ctx context.Context, id string) (*account.RefreshSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, account.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return account.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}
