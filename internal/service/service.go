// Package service реализует бизнес-логику сервиса магазина цифровых товаров.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/eshop-system/internal/authz"
	"github.com/mmeshcher/eshop-system/internal/model"
	"github.com/mmeshcher/eshop-system/internal/repository"
	"github.com/mmeshcher/eshop-system/internal/storage"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive возвращается при попытке входа в деактивированный аккаунт.
	ErrUserInactive = errors.New("user is inactive")
	// ErrAccessDenied возвращается, когда у пользователя нет прав на заказ.
	ErrAccessDenied = errors.New("access to order denied")
	// ErrOutOfStock возвращается при попытке заказать товар с исчерпанным запасом.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrInvalidPaymentMethod возвращается при неизвестном способе оплаты.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrOrderNotPaid возвращается при обращении к файлам неоплаченного заказа.
	ErrOrderNotPaid = errors.New("order payment not completed")
	// ErrFileGone возвращается, когда запись о файле есть, а содержимое в хранилище отсутствует.
	ErrFileGone = errors.New("file content is missing from storage")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateUser(ctx context.Context, name, email string, passwordHash []byte, role model.Role) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch repository.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateOrder(ctx context.Context, userID, productID int64, amount float64, orderNumber string) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetAllOrders(ctx context.Context, skip, limit int) ([]model.Order, error)
	CompleteOrderPayment(ctx context.Context, orderID int64, method model.PaymentMethod) error
	GetOrderFiles(ctx context.Context, orderID int64) ([]model.OrderFile, error)
	GetOrderFile(ctx context.Context, orderID, fileID int64) (*model.OrderFile, error)
	CreateOrderFile(ctx context.Context, f *model.OrderFile) (*model.OrderFile, error)
	GetOrCreateSiteConfig(ctx context.Context) (*model.SiteConfig, error)
	UpdateSocialLinks(ctx context.Context, links map[string]string) (*model.SiteConfig, error)
	GetAnalytics(ctx context.Context) (*model.Analytics, error)
}

// FileStore описывает контракт файлового хранилища, используемый сервисом.
type FileStore interface {
	Save(src io.Reader, originalName string) (string, int64, error)
	Open(relPath string) (io.ReadCloser, error)
	Remove(relPath string) error
}

// Service содержит бизнес-логику сервиса магазина.
type Service struct {
	repo  Repository
	files FileStore
}

// NewService создаёт новый сервис с указанным репозиторием и файловым хранилищем.
func NewService(repo Repository, files FileStore) *Service {
	return &Service{
		repo:  repo,
		files: files,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя с ролью user.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.CreateUser(ctx, name, email, hash, model.RoleUser)
}

// AuthenticateUser проверяет email и пароль пользователя.
// Отсутствующий email и неверный пароль неразличимы для вызывающего.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrUserInactive
	}

	return u, nil
}

// ResolveUser возвращает пользователя по email из проверенного токена.
func (s *Service) ResolveUser(ctx context.Context, email string) (*model.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// EnsureDefaultAdmin создаёт администратора по умолчанию, если его ещё нет.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.repo.CreateUser(ctx, "Admin", email, hash, model.RoleAdmin)
	if err != nil && !errors.Is(err, repository.ErrUserExists) {
		return err
	}
	return nil
}

// GetProducts возвращает товары каталога с учётом фильтра.
func (s *Service) GetProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error) {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 100
	}
	return s.repo.GetProducts(ctx, f)
}

// SearchProducts возвращает товары, в названии или описании которых встречается q.
func (s *Service) SearchProducts(ctx context.Context, q string) ([]model.Product, error) {
	return s.repo.GetProducts(ctx, repository.ProductFilter{Search: q})
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// CreateProduct создаёт новый товар каталога.
func (s *Service) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	return s.repo.CreateProduct(ctx, p)
}

// UpdateProduct применяет частичное обновление к товару.
func (s *Service) UpdateProduct(ctx context.Context, id int64, patch repository.ProductPatch) (*model.Product, error) {
	return s.repo.UpdateProduct(ctx, id, patch)
}

// DeleteProduct удаляет товар каталога.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

// generateOrderNumber генерирует внешний номер заказа вида ORD-XXXXXXXX.
// Уникальность обеспечивается 32 битами случайности без повторных попыток:
// вероятность коллизии пренебрежимо мала, конфликт уникального индекса
// вернётся как ошибка.
func generateOrderNumber() string {
	u := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// CreateOrder создаёт заказ пользователя на товар.
// Сумма берётся из запроса и не пересчитывается по текущей цене товара.
func (s *Service) CreateOrder(ctx context.Context, userID, productID int64, amount float64) (*model.Order, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Stock != nil && *product.Stock <= 0 {
		return nil, ErrOutOfStock
	}

	return s.repo.CreateOrder(ctx, userID, productID, amount, generateOrderNumber())
}

// GetOrder возвращает заказ, доступный владельцу или администратору.
func (s *Service) GetOrder(ctx context.Context, orderID int64, requester *model.User) (*model.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !authz.CanAccessOrder(requester, order) {
		return nil, ErrAccessDenied
	}

	return order, nil
}

// GetOrdersByUser возвращает заказы пользователя вместе с товарами.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// GetAllOrders возвращает все заказы постранично (административная операция).
func (s *Service) GetAllOrders(ctx context.Context, skip, limit int) ([]model.Order, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}
	return s.repo.GetAllOrders(ctx, skip, limit)
}

// SubmitPayment отмечает заказ оплаченным и возвращает его обновлённое состояние.
// Оплатить заказ может только его владелец, администратору чужие заказы недоступны.
// Проверки текущего статуса нет: повторная оплата применяет счётчики товара ещё раз.
func (s *Service) SubmitPayment(ctx context.Context, orderID int64, requester *model.User, method model.PaymentMethod) (*model.Order, error) {
	if !model.IsValidPaymentMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !authz.CanPayOrder(requester, order) {
		return nil, ErrAccessDenied
	}

	if err := s.repo.CompleteOrderPayment(ctx, orderID, method); err != nil {
		return nil, err
	}

	return s.repo.GetOrder(ctx, orderID)
}

// объединённая проверка доступа к файлам заказа: заказ существует,
// запрашивающий имеет право на чтение, оплата завершена.
func (s *Service) orderForDownload(ctx context.Context, orderID int64, requester *model.User) (*model.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !authz.CanAccessOrder(requester, order) {
		return nil, ErrAccessDenied
	}

	if order.Status != model.OrderStatusCompleted {
		return nil, ErrOrderNotPaid
	}

	return order, nil
}

// GetOrderFiles возвращает файлы оплаченного заказа без серверных путей.
func (s *Service) GetOrderFiles(ctx context.Context, orderID int64, requester *model.User) ([]model.FileSummary, error) {
	if _, err := s.orderForDownload(ctx, orderID, requester); err != nil {
		return nil, err
	}

	files, err := s.repo.GetOrderFiles(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.FileSummary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, f.Summary())
	}
	return summaries, nil
}

// OpenOrderFile открывает содержимое файла оплаченного заказа.
// Отсутствие записи о файле и отсутствие содержимого в хранилище —
// разные ошибки с одинаковым статусом для клиента.
func (s *Service) OpenOrderFile(ctx context.Context, orderID, fileID int64, requester *model.User) (io.ReadCloser, *model.OrderFile, error) {
	if _, err := s.orderForDownload(ctx, orderID, requester); err != nil {
		return nil, nil, err
	}

	file, err := s.repo.GetOrderFile(ctx, orderID, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.files.Open(file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobMissing) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFileGone, file.FileName)
		}
		return nil, nil, fmt.Errorf("open file content: %w", err)
	}

	return rc, file, nil
}

// AttachOrderFile сохраняет загруженный файл и привязывает его к заказу.
func (s *Service) AttachOrderFile(ctx context.Context, orderID int64, fileName string, src io.Reader) (*model.OrderFile, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	path, size, err := s.files.Save(src, fileName)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateOrderFile(ctx, &model.OrderFile{
		OrderID:  orderID,
		FileName: fileName,
		FilePath: path,
		FileSize: size,
	})
	if err != nil {
		_ = s.files.Remove(path)
		return nil, err
	}

	return created, nil
}

// GetSiteConfig возвращает настройки сайта, создавая их при первом обращении.
func (s *Service) GetSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	return s.repo.GetOrCreateSiteConfig(ctx)
}

// UpdateSocialLinks вливает переданные ссылки в настройки сайта.
func (s *Service) UpdateSocialLinks(ctx context.Context, links map[string]string) (*model.SiteConfig, error) {
	return s.repo.UpdateSocialLinks(ctx, links)
}

// GetAnalytics возвращает агрегированную статистику по магазину.
func (s *Service) GetAnalytics(ctx context.Context) (*model.Analytics, error) {
	return s.repo.GetAnalytics(ctx)
}
