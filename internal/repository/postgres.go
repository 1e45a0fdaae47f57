// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/eshop-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserExists возвращается при попытке создать пользователя с уже существующим email.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrFileNotFound возвращается, если файл заказа не найден.
	ErrFileNotFound = errors.New("order file not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Ретраи полезны при Serialization Failure или Deadlock,
		// с переподключением pgxpool справляется сам.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser создаёт нового пользователя с ролью role.
func (r *PostgresRepository) CreateUser(ctx context.Context, name, email string, passwordHash []byte, role model.Role) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, email, password_hash, role, is_active, created_at`,
		name, email, passwordHash, string(role),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail возвращает пользователя по email (точное совпадение).
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, is_active, created_at
		 FROM users WHERE email = $1`,
		email,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// ProductFilter описывает параметры выборки товаров каталога.
type ProductFilter struct {
	Skip     int
	Limit    int
	Search   string
	Featured *bool
}

const productColumns = `id, title, description, price, original_price, image_url,
		stock, sold, offer_end_date, featured, purchase_count, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.OriginalPrice, &p.ImageURL,
		&p.Stock, &p.Sold, &p.OfferEndDate, &p.Featured, &p.PurchaseCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProducts возвращает товары каталога с учётом фильтра.
func (r *PostgresRepository) GetProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := make([]any, 0, 4)
	conds := make([]string, 0, 2)

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		cond := fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
		conds = append(conds, cond)
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		conds = append(conds, fmt.Sprintf("featured = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, f.Skip)
	query += fmt.Sprintf(" ORDER BY id OFFSET $%d", len(args))
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// GetProduct возвращает товар по идентификатору.
func (r *PostgresRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// CreateProduct сохраняет новый товар каталога. Счётчики sold и purchase_count начинаются с нуля.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO products (title, description, price, original_price, image_url, stock, offer_end_date, featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+productColumns,
		p.Title, p.Description, p.Price, p.OriginalPrice, p.ImageURL, p.Stock, p.OfferEndDate, p.Featured,
	)

	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// ProductPatch описывает частичное обновление товара: nil-поля не меняются.
type ProductPatch struct {
	Title         *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	ImageURL      *string
	Stock         *int64
	OfferEndDate  *time.Time
	Featured      *bool
}

// UpdateProduct применяет частичное обновление к товару.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*model.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		p.OriginalPrice = patch.OriginalPrice
	}
	if patch.ImageURL != nil {
		p.ImageURL = patch.ImageURL
	}
	if patch.Stock != nil {
		p.Stock = patch.Stock
	}
	if patch.OfferEndDate != nil {
		p.OfferEndDate = patch.OfferEndDate
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}

	row = tx.QueryRow(ctx,
		`UPDATE products
		 SET title = $2, description = $3, price = $4, original_price = $5, image_url = $6,
		     stock = $7, offer_end_date = $8, featured = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, p.Title, p.Description, p.Price, p.OriginalPrice, p.ImageURL, p.Stock, p.OfferEndDate, p.Featured,
	)
	updated, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return updated, nil
}

// DeleteProduct удаляет товар по идентификатору.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int64) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

const orderColumns = `o.id, o.order_number, o.user_id, o.product_id, o.amount, o.status, o.payment_method,
		o.created_at, o.updated_at,
		p.id, p.title, p.description, p.price, p.original_price, p.image_url,
		p.stock, p.sold, p.offer_end_date, p.featured, p.purchase_count, p.created_at, p.updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o model.Order
		p model.Product
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.Amount, &o.Status, &o.PaymentMethod,
		&o.CreatedAt, &o.UpdatedAt,
		&p.ID, &p.Title, &p.Description, &p.Price, &p.OriginalPrice, &p.ImageURL,
		&p.Stock, &p.Sold, &p.OfferEndDate, &p.Featured, &p.PurchaseCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Product = &p
	return &o, nil
}

// CreateOrder сохраняет новый заказ в статусе pending и возвращает его вместе с товаром.
func (r *PostgresRepository) CreateOrder(ctx context.Context, userID, productID int64, amount float64, orderNumber string) (*model.Order, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO orders (order_number, user_id, product_id, amount, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		orderNumber, userID, productID, amount, string(model.OrderStatusPending),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return r.GetOrder(ctx, id)
}

// GetOrder возвращает заказ по идентификатору вместе с товаром.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN products p ON p.id = o.product_id
		 WHERE o.id = $1`,
		id,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetOrdersByUser возвращает список заказов пользователя вместе с товарами.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN products p ON p.id = o.product_id
		 WHERE o.user_id = $1
		 ORDER BY o.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// GetAllOrders возвращает все заказы постранично (для административной панели).
func (r *PostgresRepository) GetAllOrders(ctx context.Context, skip, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN products p ON p.id = o.product_id
		 ORDER BY o.created_at DESC
		 OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CompleteOrderPayment отмечает заказ оплаченным и обновляет счётчики товара.
// Запись статуса заказа и счётчиков товара выполняется в одной транзакции:
// строка заказа блокируется FOR UPDATE для сериализации конкурентных оплат.
// Гарда по текущему статусу нет: повторная оплата завершённого заказа
// применяет счётчики ещё раз, stock может уйти в минус.
func (r *PostgresRepository) CompleteOrderPayment(ctx context.Context, orderID int64, method model.PaymentMethod) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var productID int64
		err = tx.QueryRow(ctx,
			`SELECT product_id FROM orders WHERE id = $1 FOR UPDATE`, orderID,
		).Scan(&productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE orders SET status = $2, payment_method = $3, updated_at = now() WHERE id = $1`,
			orderID, string(model.OrderStatusCompleted), string(method),
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE products
			 SET purchase_count = purchase_count + 1,
			     sold = CASE WHEN stock IS NULL THEN sold ELSE sold + 1 END,
			     stock = CASE WHEN stock IS NULL THEN NULL ELSE stock - 1 END,
			     updated_at = now()
			 WHERE id = $1`,
			productID,
		)
		if err != nil {
			return fmt.Errorf("update product counters: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// GetOrderFiles возвращает файлы заказа.
func (r *PostgresRepository) GetOrderFiles(ctx context.Context, orderID int64) ([]model.OrderFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, file_name, file_path, file_size, created_at
		 FROM order_files
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order files: %w", err)
	}
	defer rows.Close()

	var files []model.OrderFile
	for rows.Next() {
		var f model.OrderFile
		if err := rows.Scan(&f.ID, &f.OrderID, &f.FileName, &f.FilePath, &f.FileSize, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return files, nil
}

// GetOrderFile возвращает файл заказа, проверяя его принадлежность заказу.
func (r *PostgresRepository) GetOrderFile(ctx context.Context, orderID, fileID int64) (*model.OrderFile, error) {
	var f model.OrderFile
	err := r.pool.QueryRow(ctx,
		`SELECT id, order_id, file_name, file_path, file_size, created_at
		 FROM order_files
		 WHERE id = $1 AND order_id = $2`,
		fileID, orderID,
	).Scan(&f.ID, &f.OrderID, &f.FileName, &f.FilePath, &f.FileSize, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("get order file: %w", err)
	}
	return &f, nil
}

// CreateOrderFile сохраняет запись о файле заказа.
func (r *PostgresRepository) CreateOrderFile(ctx context.Context, f *model.OrderFile) (*model.OrderFile, error) {
	var created model.OrderFile
	err := r.pool.QueryRow(ctx,
		`INSERT INTO order_files (order_id, file_name, file_path, file_size)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, order_id, file_name, file_path, file_size, created_at`,
		f.OrderID, f.FileName, f.FilePath, f.FileSize,
	).Scan(&created.ID, &created.OrderID, &created.FileName, &created.FilePath, &created.FileSize, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order file: %w", err)
	}
	return &created, nil
}

// GetOrCreateSiteConfig возвращает настройки сайта, создавая запись с
// значениями по умолчанию при первом обращении.
func (r *PostgresRepository) GetOrCreateSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	cfg, err := r.getSiteConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get site config: %w", err)
	}

	_, err = r.pool.Exec(ctx, `INSERT INTO site_config DEFAULT VALUES`)
	if err != nil {
		return nil, fmt.Errorf("create site config: %w", err)
	}

	cfg, err = r.getSiteConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("get site config: %w", err)
	}
	return cfg, nil
}

func (r *PostgresRepository) getSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	var (
		cfg   model.SiteConfig
		links []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT site_name, currency, currency_symbol, social_links
		 FROM site_config
		 ORDER BY id
		 LIMIT 1`,
	).Scan(&cfg.SiteName, &cfg.Currency, &cfg.CurrencySymbol, &links)
	if err != nil {
		return nil, err
	}

	if len(links) > 0 {
		if err := json.Unmarshal(links, &cfg.SocialLinks); err != nil {
			return nil, fmt.Errorf("unmarshal social links: %w", err)
		}
	}
	if cfg.SocialLinks == nil {
		cfg.SocialLinks = map[string]string{}
	}

	return &cfg, nil
}

// UpdateSocialLinks вливает переданные ссылки в существующие настройки:
// отсутствующие в запросе ключи не меняются.
func (r *PostgresRepository) UpdateSocialLinks(ctx context.Context, links map[string]string) (*model.SiteConfig, error) {
	if _, err := r.GetOrCreateSiteConfig(ctx); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		id      int64
		current []byte
	)
	err = tx.QueryRow(ctx,
		`SELECT id, social_links FROM site_config ORDER BY id LIMIT 1 FOR UPDATE`,
	).Scan(&id, &current)
	if err != nil {
		return nil, fmt.Errorf("lock site config: %w", err)
	}

	merged := map[string]string{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &merged); err != nil {
			return nil, fmt.Errorf("unmarshal social links: %w", err)
		}
	}
	for k, v := range links {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal social links: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE site_config SET social_links = $2, updated_at = now() WHERE id = $1`,
		id, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("update social links: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return r.GetOrCreateSiteConfig(ctx)
}

// GetAnalytics возвращает агрегированную статистику по магазину.
func (r *PostgresRepository) GetAnalytics(ctx context.Context) (*model.Analytics, error) {
	var a model.Analytics

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(id)
		 FROM orders
		 WHERE status = $1`,
		string(model.OrderStatusCompleted),
	).Scan(&a.TotalRevenue, &a.TotalOrders)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM products`).Scan(&a.TotalProducts)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	err = r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM users`).Scan(&a.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &a, nil
}
