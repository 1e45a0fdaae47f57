// Package handler содержит HTTP-обработчики API сервиса магазина.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/eshop-system/internal/middleware"
	"github.com/mmeshcher/eshop-system/internal/model"
	"github.com/mmeshcher/eshop-system/internal/repository"
	"github.com/mmeshcher/eshop-system/internal/service"
	"github.com/mmeshcher/eshop-system/internal/storage"
	"github.com/mmeshcher/eshop-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, name, email, password string) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
	GetProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)
	SearchProducts(ctx context.Context, q string) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch repository.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateOrder(ctx context.Context, userID, productID int64, amount float64) (*model.Order, error)
	GetOrder(ctx context.Context, orderID int64, requester *model.User) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error)
	GetAllOrders(ctx context.Context, skip, limit int) ([]model.Order, error)
	SubmitPayment(ctx context.Context, orderID int64, requester *model.User, method model.PaymentMethod) (*model.Order, error)
	GetOrderFiles(ctx context.Context, orderID int64, requester *model.User) ([]model.FileSummary, error)
	OpenOrderFile(ctx context.Context, orderID, fileID int64, requester *model.User) (io.ReadCloser, *model.OrderFile, error)
	AttachOrderFile(ctx context.Context, orderID int64, fileName string, src io.Reader) (*model.OrderFile, error)
	GetSiteConfig(ctx context.Context) (*model.SiteConfig, error)
	UpdateSocialLinks(ctx context.Context, links map[string]string) (*model.SiteConfig, error)
	GetAnalytics(ctx context.Context) (*model.Analytics, error)
}

// Handler реализует HTTP-обработчики API сервиса магазина.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	maxFileSize    int64
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, maxFileSize int64) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		maxFileSize:    maxFileSize,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// заголовки уже отправлены, остаётся только оборвать тело
		return
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Password == "" || !validation.IsValidEmail(req.Email) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token, err := h.authMiddleware.IssueToken(user)
	if err != nil {
		h.logger.Error("issue token error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Login выполняет аутентификацию пользователя и выдачу токена.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
		case errors.Is(err, service.ErrUserInactive):
			http.Error(w, "Inactive user", http.StatusForbidden)
		default:
			h.logger.Error("login user error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	token, err := h.authMiddleware.IssueToken(user)
	if err != nil {
		h.logger.Error("issue token error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Me возвращает данные текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetProducts возвращает товары каталога с учётом пагинации и фильтров.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	f := repository.ProductFilter{Limit: 100}

	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		f.Skip = skip
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		f.Limit = limit
	}
	f.Search = r.URL.Query().Get("search")
	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		f.Featured = &featured
	}

	products, err := h.service.GetProducts(r.Context(), f)
	if err != nil {
		h.logger.Error("get products error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// SearchProducts возвращает товары по поисковому запросу q.
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	products, err := h.service.SearchProducts(r.Context(), q)
	if err != nil {
		h.logger.Error("search products error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct возвращает товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get product error", zap.Error(err), zap.Int64("productID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

type productRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	OriginalPrice *float64   `json:"original_price"`
	ImageURL      *string    `json:"image_url"`
	Stock         *int64     `json:"stock"`
	OfferEndDate  *time.Time `json:"offer_end_date"`
	Featured      bool       `json:"featured"`
}

// CreateProduct создаёт новый товар каталога (только администратор).
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &model.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      req.ImageURL,
		Stock:         req.Stock,
		OfferEndDate:  req.OfferEndDate,
		Featured:      req.Featured,
	})
	if err != nil {
		h.logger.Error("create product error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

type productPatchRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	OriginalPrice *float64   `json:"original_price"`
	ImageURL      *string    `json:"image_url"`
	Stock         *int64     `json:"stock"`
	OfferEndDate  *time.Time `json:"offer_end_date"`
	Featured      *bool      `json:"featured"`
}

// UpdateProduct частично обновляет товар: непереданные поля не меняются (только администратор).
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req productPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, repository.ProductPatch{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      req.ImageURL,
		Stock:         req.Stock,
		OfferEndDate:  req.OfferEndDate,
		Featured:      req.Featured,
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("update product error", zap.Error(err), zap.Int64("productID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct удаляет товар каталога (только администратор).
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete product error", zap.Error(err), zap.Int64("productID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type orderRequest struct {
	ProductID int64   `json:"product_id"`
	Amount    float64 `json:"amount"`
}

// CreateOrder создаёт заказ текущего пользователя на товар.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), user.ID, req.ProductID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			http.Error(w, "Product not found", http.StatusNotFound)
		case errors.Is(err, service.ErrOutOfStock):
			http.Error(w, "Product out of stock", http.StatusBadRequest)
		default:
			h.logger.Error("create order error", zap.Error(err), zap.Int64("userID", user.ID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetOrder возвращает заказ, доступный владельцу или администратору.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, service.ErrAccessDenied):
			http.Error(w, "Not authorized to view this order", http.StatusForbidden)
		default:
			h.logger.Error("get order error", zap.Error(err), zap.Int64("orderID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetMyOrders возвращает заказы текущего пользователя.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.Int64("userID", user.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type paymentResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

// SubmitPayment обрабатывает оплату заказа текущим пользователем.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.service.SubmitPayment(r.Context(), id, user, model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			http.Error(w, "Invalid payment method", http.StatusBadRequest)
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, service.ErrAccessDenied):
			http.Error(w, "Not authorized to process payment for this order", http.StatusForbidden)
		default:
			h.logger.Error("submit payment error", zap.Error(err), zap.Int64("orderID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse{
		Success: true,
		Message: "Payment processed successfully",
		Order:   order,
	})
}

type downloadFilesResponse struct {
	Files []model.FileSummary `json:"files"`
}

func (h *Handler) writeDownloadError(w http.ResponseWriter, err error, orderID int64) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, service.ErrAccessDenied):
		http.Error(w, "Not authorized to access this order", http.StatusForbidden)
	case errors.Is(err, service.ErrOrderNotPaid):
		http.Error(w, "Order payment not completed", http.StatusBadRequest)
	case errors.Is(err, repository.ErrFileNotFound):
		http.Error(w, "File not found", http.StatusNotFound)
	case errors.Is(err, service.ErrFileGone):
		http.Error(w, "File not found on server", http.StatusNotFound)
	default:
		h.logger.Error("download error", zap.Error(err), zap.Int64("orderID", orderID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// GetDownloadFiles возвращает список файлов оплаченного заказа.
func (h *Handler) GetDownloadFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	files, err := h.service.GetOrderFiles(r.Context(), orderID, user)
	if err != nil {
		h.writeDownloadError(w, err, orderID)
		return
	}

	if files == nil {
		files = []model.FileSummary{}
	}
	writeJSON(w, http.StatusOK, downloadFilesResponse{Files: files})
}

// DownloadFile отдаёт содержимое файла оплаченного заказа.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	fileID, err := parseIDParam(r, "fileID")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rc, file, err := h.service.OpenOrderFile(r.Context(), orderID, fileID, user)
	if err != nil {
		h.writeDownloadError(w, err, orderID)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(file.FileSize, 10))

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("stream file error", zap.Error(err), zap.Int64("fileID", fileID))
	}
}

// AttachOrderFile принимает загрузку файла и привязывает его к заказу (только администратор).
func (h *Handler) AttachOrderFile(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// +1 к лимиту, превышение проверяет файловое хранилище
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1024*1024)

	src, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	file, err := h.service.AttachOrderFile(r.Context(), orderID, header.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrFileTooLarge):
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		default:
			h.logger.Error("attach file error", zap.Error(err), zap.Int64("orderID", orderID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, file.Summary())
}

// GetSiteConfig возвращает настройки сайта.
func (h *Handler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetSiteConfig(r.Context())
	if err != nil {
		h.logger.Error("get site config error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// UpdateSocialLinks вливает переданные ссылки в настройки сайта (только администратор).
func (h *Handler) UpdateSocialLinks(w http.ResponseWriter, r *http.Request) {
	var links map[string]string
	if err := json.NewDecoder(r.Body).Decode(&links); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	cfg, err := h.service.UpdateSocialLinks(r.Context(), links)
	if err != nil {
		h.logger.Error("update social links error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// GetAnalytics возвращает агрегированную статистику (только администратор).
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.GetAnalytics(r.Context())
	if err != nil {
		h.logger.Error("get analytics error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// GetAllOrders возвращает все заказы постранично (только администратор).
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	skip := 0
	limit := 100

	if v := r.URL.Query().Get("skip"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		skip = parsed
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	orders, err := h.service.GetAllOrders(r.Context(), skip, limit)
	if err != nil {
		h.logger.Error("get all orders error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Health возвращает состояние сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
