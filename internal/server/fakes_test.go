package server

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// memDB はテスト用のインメモリ永続層。WithinTx はスナップショットで rollback する
type memDB struct {
	mu sync.Mutex

	products  map[int64]model.Product
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	movements []model.StockMovement
	nextID    int64

	// 指定した商品の減算で失敗させる
	failDecreaseFor int64
}

func newMemDB(products ...model.Product) *memDB {
	db := &memDB{
		products: map[int64]model.Product{},
		orders:   map[int64]model.Order{},
		items:    map[int64][]model.OrderItem{},
		nextID:   100,
	}
	for _, p := range products {
		db.products[p.ID] = p
	}
	return db
}

type memSnapshot struct {
	products  map[int64]model.Product
	orders    map[int64]model.Order
	items     map[int64][]model.OrderItem
	movements []model.StockMovement
	nextID    int64
}

func (db *memDB) snapshot() memSnapshot {
	s := memSnapshot{
		products:  map[int64]model.Product{},
		orders:    map[int64]model.Order{},
		items:     map[int64][]model.OrderItem{},
		movements: append([]model.StockMovement(nil), db.movements...),
		nextID:    db.nextID,
	}
	for k, v := range db.products {
		s.products[k] = v
	}
	for k, v := range db.orders {
		s.orders[k] = v
	}
	for k, v := range db.items {
		s.items[k] = append([]model.OrderItem(nil), v...)
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.products = s.products
	db.orders = s.orders
	db.items = s.items
	db.movements = s.movements
	db.nextID = s.nextID
}

func (db *memDB) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	db.mu.Lock()
	snap := db.snapshot()
	db.mu.Unlock()

	if err := fn(db); err != nil {
		db.mu.Lock()
		db.restore(snap)
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *memDB) Orders() repo.OrderRepository         { return db }
func (db *memDB) OrderItems() repo.OrderItemRepository { return db }
func (db *memDB) Inventory() repo.InventoryRepository  { return db }
func (db *memDB) Products() repo.ProductRepository     { return productsView{db} }

// ProductRepository と OrderRepository で FindByID/ListAll/Create が衝突するので分ける
type productsView struct{ db *memDB }

func (v productsView) ListAll(ctx context.Context) ([]model.Product, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	out := make([]model.Product, 0, len(v.db.products))
	for _, p := range v.db.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v productsView) FindByID(ctx context.Context, id int64) (model.Product, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	p, ok := v.db.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (v productsView) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := v.db.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (v productsView) Create(ctx context.Context, p model.Product) (model.Product, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	for _, existing := range v.db.products {
		if existing.Name == p.Name {
			return model.Product{}, repo.ErrConflict
		}
	}
	v.db.nextID++
	p.ID = v.db.nextID
	v.db.products[p.ID] = p
	return p, nil
}

func (v productsView) CountInStock(ctx context.Context) (int64, error) {
	v.db.mu.Lock()
	defer v.db.mu.Unlock()
	var n int64
	for _, p := range v.db.products {
		if p.Stock > 0 {
			n++
		}
	}
	return n, nil
}

// OrderRepository
func (db *memDB) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (db *memDB) ListAll(ctx context.Context) ([]model.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.Order, 0, len(db.orders))
	for _, o := range db.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (db *memDB) Create(ctx context.Context, order model.Order) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	order.ID = db.nextID
	db.orders[order.ID] = order
	return order.ID, nil
}

// OrderItemRepository
func (db *memDB) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, it := range items {
		db.nextID++
		it.ID = db.nextID
		it.OrderID = orderID
		db.items[orderID] = append(db.items[orderID], it)
	}
	return nil
}

func (db *memDB) ListLinesByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []model.OrderLine{}
	for _, it := range db.items[orderID] {
		p := db.products[it.ProductID]
		out = append(out, model.OrderLine{
			ItemID:    it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Image:     p.Image,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}

// InventoryRepository
func (db *memDB) LockProducts(ctx context.Context, productIDs []int64) (map[int64]model.Product, error) {
	return productsView{db}.FindByIDs(ctx, productIDs)
}

func (db *memDB) DecreaseStock(ctx context.Context, productID int64, qty int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if productID == db.failDecreaseFor {
		return errDecrease
	}
	p, ok := db.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock -= qty
	db.products[productID] = p
	return nil
}

func (db *memDB) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	db.products[productID] = p
	return true, nil
}

func (db *memDB) CreateMovement(ctx context.Context, m model.StockMovement) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.movements = append(db.movements, m)
	return nil
}

func (db *memDB) stock(id int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id].Stock
}

func (db *memDB) orderCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.orders)
}
