package repository

import (
	"context"
	"os"
	"testing"

	"github.com/mmeshcher/eshop-system/internal/model"
)

// setupTestRepo подключается к БД из TEST_DATABASE_URI и очищает таблицы
// после теста. Без заданной переменной тесты пакета пропускаются.
func setupTestRepo(t *testing.T) *PostgresRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}

	t.Cleanup(func() {
		_, _ = repo.pool.Exec(context.Background(),
			`TRUNCATE order_files, orders, products, users RESTART IDENTITY CASCADE`)
		repo.Close()
	})

	return repo
}

func seedOrder(t *testing.T, repo *PostgresRepository, stock int64) *model.Order {
	t.Helper()
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "A", "a@x.com", []byte("hash"), model.RoleUser)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	product, err := repo.CreateProduct(ctx, &model.Product{Title: "Guide", Price: 15000, Stock: &stock})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := repo.CreateOrder(ctx, user.ID, product.ID, 15000, "ORD-0A1B2C3D")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestCompleteOrderPaymentAppliesCounters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	order := seedOrder(t, repo, 1)

	if err := repo.CompleteOrderPayment(ctx, order.ID, model.PaymentMethodOnline); err != nil {
		t.Fatalf("complete payment: %v", err)
	}

	got, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != model.OrderStatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, model.OrderStatusCompleted)
	}
	if got.PaymentMethod == nil || *got.PaymentMethod != model.PaymentMethodOnline {
		t.Fatalf("payment method = %v, want online", got.PaymentMethod)
	}

	p, err := repo.GetProduct(ctx, order.ProductID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.PurchaseCount != 1 || p.Sold != 1 {
		t.Fatalf("counters = purchase_count %d sold %d, want 1/1", p.PurchaseCount, p.Sold)
	}
	if p.Stock == nil || *p.Stock != 0 {
		t.Fatalf("stock = %v, want 0", p.Stock)
	}
}

// Сбой на обновлении счётчиков товара не должен оставить заказ
// отмеченным оплаченным: оба изменения применяются в одной транзакции.
func TestCompleteOrderPaymentRollsBackOnCounterFault(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	order := seedOrder(t, repo, 1)

	// Заставляем упасть второй UPDATE транзакции: ограничение запрещает
	// инкремент purchase_count, запись статуса заказа к этому моменту уже сделана.
	_, err := repo.pool.Exec(ctx,
		`ALTER TABLE products ADD CONSTRAINT purchase_count_frozen CHECK (purchase_count = 0)`)
	if err != nil {
		t.Fatalf("add fault constraint: %v", err)
	}
	defer func() {
		_, _ = repo.pool.Exec(ctx,
			`ALTER TABLE products DROP CONSTRAINT IF EXISTS purchase_count_frozen`)
	}()

	if err := repo.CompleteOrderPayment(ctx, order.ID, model.PaymentMethodOnline); err == nil {
		t.Fatalf("expected payment to fail on counter update")
	}

	got, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != model.OrderStatusPending {
		t.Fatalf("status = %q, want %q after rollback", got.Status, model.OrderStatusPending)
	}
	if got.PaymentMethod != nil {
		t.Fatalf("payment method = %v, want nil after rollback", *got.PaymentMethod)
	}

	p, err := repo.GetProduct(ctx, order.ProductID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.PurchaseCount != 0 || p.Sold != 0 {
		t.Fatalf("counters = purchase_count %d sold %d, want untouched 0/0", p.PurchaseCount, p.Sold)
	}
	if p.Stock == nil || *p.Stock != 1 {
		t.Fatalf("stock = %v, want untouched 1", p.Stock)
	}
}
