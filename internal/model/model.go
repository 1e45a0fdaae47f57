// Package model содержит доменные сущности сервиса магазина цифровых товаров.
package model

import "time"

// Role описывает роль пользователя в системе.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User представляет зарегистрированного пользователя магазина.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin сообщает, имеет ли пользователь права администратора.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Product описывает товар каталога.
// Stock == nil означает неограниченный запас.
type Product struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	OriginalPrice *float64   `json:"original_price,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	Stock         *int64     `json:"stock"`
	Sold          int64      `json:"sold"`
	OfferEndDate  *time.Time `json:"offer_end_date,omitempty"`
	Featured      bool       `json:"featured"`
	PurchaseCount int64      `json:"purchase_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// OrderStatus описывает статус оплаты заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValidPaymentMethod проверяет, что способ оплаты входит в допустимый набор.
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodOnline, PaymentMethodMobileMoney, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Order описывает заказ пользователя на один товар.
// OrderNumber — внешний человекочитаемый идентификатор вида ORD-XXXXXXXX,
// генерируется при создании и не меняется.
type Order struct {
	ID            int64          `json:"id"`
	OrderNumber   string         `json:"order_number"`
	UserID        int64          `json:"user_id"`
	ProductID     int64          `json:"product_id"`
	Product       *Product       `json:"product,omitempty"`
	Amount        float64        `json:"amount"`
	Status        OrderStatus    `json:"status"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// OrderFile описывает файл, принадлежащий заказу.
// FilePath — серверный путь хранения, наружу не отдаётся.
type OrderFile struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"-"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// FileSummary — представление файла заказа для выдачи клиенту.
type FileSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Summary возвращает клиентское представление файла без пути хранения.
func (f *OrderFile) Summary() FileSummary {
	return FileSummary{ID: f.ID, Name: f.FileName, Size: f.FileSize}
}

// SiteConfig — единственная запись с настройками сайта.
// Создаётся лениво при первом чтении.
type SiteConfig struct {
	SiteName       string            `json:"site_name"`
	Currency       string            `json:"currency"`
	CurrencySymbol string            `json:"currency_symbol"`
	SocialLinks    map[string]string `json:"social_links"`
}

// Analytics содержит агрегированную статистику для административной панели.
type Analytics struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalProducts int64   `json:"totalProducts"`
	TotalUsers    int64   `json:"totalUsers"`
}
