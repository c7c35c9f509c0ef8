//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	return gormDB
}

func seedProduct(t *testing.T, r *infraRepo.ProductGormRepository, name string, price, stock int64) model.Product {
	t.Helper()
	p, err := r.Create(context.Background(), model.Product{Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}

func TestGormRepositories(t *testing.T) {
	gormDB := setupTestDB(t)
	ctx := context.Background()

	products := infraRepo.NewProductGormRepository(gormDB)
	orders := infraRepo.NewOrderGormRepository(gormDB)
	items := infraRepo.NewOrderItemGormRepository(gormDB)
	tm := infraRepo.NewTxManagerGorm(gormDB)

	mug := seedProduct(t, products, "Mug", 500, 10)
	shirt := seedProduct(t, products, "Shirt", 1500, 0)

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		_, err := products.Create(ctx, model.Product{Name: "Mug", Price: 1})
		assert.ErrorIs(t, err, repo.ErrConflict)
	})

	t.Run("find by id and ids", func(t *testing.T) {
		_, err := products.FindByID(ctx, 99999)
		assert.ErrorIs(t, err, repo.ErrNotFound)

		m, err := products.FindByIDs(ctx, []int64{mug.ID, shirt.ID, 99999})
		require.NoError(t, err)
		assert.Len(t, m, 2)

		n, err := products.CountInStock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("commit creates order, items and decrements stock", func(t *testing.T) {
		var orderID int64
		err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
			locked, err := r.Inventory().LockProducts(ctx, []int64{shirt.ID, mug.ID})
			if err != nil {
				return err
			}
			assert.Len(t, locked, 2)

			orderID, err = r.Orders().Create(ctx, model.Order{Reference: "R1", Status: model.OrderStatusPending})
			if err != nil {
				return err
			}
			if err := r.OrderItems().CreateBulk(ctx, orderID, []model.OrderItem{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: shirt.ID, Quantity: 1},
			}); err != nil {
				return err
			}
			if err := r.Inventory().DecreaseStock(ctx, mug.ID, 2); err != nil {
				return err
			}
			// 下限なし（マイナスになる）
			return r.Inventory().DecreaseStock(ctx, shirt.ID, 1)
		})
		require.NoError(t, err)

		lines, err := items.ListLinesByOrderID(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, int64(500), lines[0].UnitPrice)
		assert.Equal(t, "Shirt", lines[1].Name)

		got, err := products.FindByID(ctx, mug.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), got.Stock)

		got, err = products.FindByID(ctx, shirt.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), got.Stock)
	})

	t.Run("error rolls everything back", func(t *testing.T) {
		before, err := orders.ListAll(ctx)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = tm.WithinTx(ctx, func(r repo.TxRepos) error {
			if _, err := r.Orders().Create(ctx, model.Order{Reference: "R2", Status: model.OrderStatusPending}); err != nil {
				return err
			}
			if err := r.Inventory().DecreaseStock(ctx, mug.ID, 5); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := orders.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(before), len(after))

		got, err := products.FindByID(ctx, mug.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), got.Stock)
	})

	t.Run("guarded decrement refuses to go negative", func(t *testing.T) {
		inv := infraRepo.NewInventoryGormRepository(gormDB)
		ok, err := inv.DecreaseStockIfEnough(ctx, mug.ID, 100)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = inv.DecreaseStockIfEnough(ctx, mug.ID, 8)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.ErrorIs(t, inv.DecreaseStock(ctx, 99999, 1), repo.ErrNotFound)
	})
}
