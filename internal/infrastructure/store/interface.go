package store

import (
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/catalog"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/coupon"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/order"
)

// Store is everything the services need from persistence.
type Store interface {
	order.Repository
	coupon.Repository
	catalog.Repository
	account.Repository
	cart.Store
}

var (
	_ Store      = (*PostgresStore)(nil)
	_ cart.Store = (*DynamoCartStore)(nil)
)
