package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"salesboard/internal/engine"
	"salesboard/internal/reports"
)

// Handler serves the report endpoints. The store pointer is swapped in once
// the background snapshot load finishes; until then every report returns 503.
type Handler struct {
	store atomic.Pointer[engine.Store]
	log   *logrus.Logger
}

func NewHandler(log *logrus.Logger) *Handler {
	return &Handler{log: log}
}

// SetStore publishes a loaded snapshot to the live API.
func (h *Handler) SetStore(store *engine.Store) {
	h.store.Store(store)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")

	customers := api.Group("/customers")
	customers.GET("/total-spent", h.TotalSpent)
	customers.GET("/spending-category", h.SpendingCategory)
	customers.GET("/high-value/:amount", h.HighValueCustomers)
	customers.GET("/by-activity", h.CustomersByActivity)
	customers.GET("/top-spender-per-city", h.TopSpenderPerCity)
	customers.GET("/analytics", h.CustomerAnalytics)

	orders := api.Group("/orders")
	orders.GET("/monthly-revenue-per-product", h.MonthlyRevenuePerProduct)
	orders.GET("/weekly-order-counts", h.WeeklyOrderCounts)
	orders.GET("/category-leaders", h.CategoryOrderLeaders)
	orders.GET("/overall", h.Overall)
	orders.POST("/repeat-customers", h.RepeatCustomers)
	orders.POST("/repeat-customers-per-product", h.RepeatCustomersPerProduct)
	orders.GET("/sales-rollup", h.SalesRollup)
	orders.GET("/weekly-product-sales", h.WeeklyProductSales)

	products := api.Group("/products")
	products.GET("/with-orders", h.ProductsWithOrders)
	products.GET("/with-discounts", h.ProductsWithTotalDiscounts)
	products.POST("/top-customers", h.TopCustomersForProduct)
	products.GET("/analytics", h.ProductAnalytics)
	products.GET("/monthly-sales", h.MonthlyProductSales)
	products.GET("/profitability", h.ProductProfitability)
}

func (h *Handler) snapshot(c echo.Context) (*engine.Store, bool) {
	store := h.store.Load()
	if store == nil {
		_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "snapshot still loading"})
		return nil, false
	}
	return store, true
}

// respond maps report errors: validation failures are the caller's fault,
// anything else is ours and gets logged.
func (h *Handler) respond(c echo.Context, result any, err error) error {
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error()})
		}
		h.log.WithFields(logrus.Fields{"path": c.Path(), "error": err.Error()}).Error("report failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Health(c echo.Context) error {
	store := h.store.Load()
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "loading"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":      "ok",
		"snapshot_id": store.SnapshotID.String(),
		"orders":      len(store.Orders()),
	})
}

// --- customer reports ---

func (h *Handler) TotalSpent(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.TotalSpentByCustomers(store), nil)
}

func (h *Handler) SpendingCategory(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.SpendingCategory(store), nil)
}

func (h *Handler) HighValueCustomers(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	amount, err := decimal.NewFromString(c.Param("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive number"})
	}
	result, err := reports.HighValueCustomers(store, amount)
	return h.respond(c, result, err)
}

func (h *Handler) CustomersByActivity(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	minSpent, err := optionalDecimal(c.QueryParam("min_spent"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_spent must be a number"})
	}
	minOrders, err := optionalInt(c.QueryParam("min_orders"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_orders must be an integer"})
	}
	result, err := reports.CustomersByActivity(store, minSpent, minOrders)
	return h.respond(c, result, err)
}

func (h *Handler) TopSpenderPerCity(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.TopSpenderPerCity(store), nil)
}

func (h *Handler) CustomerAnalytics(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	minSpent, err := optionalDecimal(c.QueryParam("min_spent"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min_spent must be a number"})
	}
	result, err := reports.FullCustomerAnalytics(store, minSpent)
	return h.respond(c, result, err)
}

// --- order reports ---

func (h *Handler) MonthlyRevenuePerProduct(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.MonthlyRevenuePerProduct(store), nil)
}

func (h *Handler) WeeklyOrderCounts(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.WeeklyOrderCounts(store), nil)
}

func (h *Handler) CategoryOrderLeaders(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.CategoryOrderLeaders(store), nil)
}

func (h *Handler) Overall(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.Overall(store), nil)
}

type repeatCustomersRequest struct {
	ProductID *int64 `json:"product_id"`
}

func (h *Handler) RepeatCustomers(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	var req repeatCustomersRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}
	result, err := reports.RepeatCustomers(store, req.ProductID)
	return h.respond(c, result, err)
}

type repeatCustomersPerProductRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	ProductID *int64  `json:"product_id"`
}

func (h *Handler) RepeatCustomersPerProduct(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	var req repeatCustomersPerProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}

	filter := engine.OrderFilter{ProductID: req.ProductID}
	var err error
	if filter.From, err = optionalDate(req.StartDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	if filter.To, err = optionalDate(req.EndDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	result, err := reports.RepeatCustomersPerProduct(store, filter)
	return h.respond(c, result, err)
}

func (h *Handler) SalesRollup(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.SalesRollup(store), nil)
}

func (h *Handler) WeeklyProductSales(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.WeeklyProductSales(store), nil)
}

// --- product reports ---

func (h *Handler) ProductsWithOrders(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.ProductsWithOrders(store), nil)
}

func (h *Handler) ProductsWithTotalDiscounts(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.ProductsWithTotalDiscounts(store), nil)
}

type topCustomersRequest struct {
	ProductID int64 `json:"product_id"`
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
}

func (h *Handler) TopCustomersForProduct(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	req := topCustomersRequest{Page: 1, PageSize: 5}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request body"})
	}
	result, err := reports.TopCustomersForProduct(store, req.ProductID, req.Page, req.PageSize)
	return h.respond(c, result, err)
}

func (h *Handler) ProductAnalytics(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.ProductAnalytics(store), nil)
}

func (h *Handler) MonthlyProductSales(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	var productID *int64
	if raw := c.QueryParam("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id must be an integer"})
		}
		productID = &id
	}
	result, err := reports.MonthlyProductSales(store, productID)
	return h.respond(c, result, err)
}

func (h *Handler) ProductProfitability(c echo.Context) error {
	store, ok := h.snapshot(c)
	if !ok {
		return nil
	}
	return h.respond(c, reports.ProductProfitability(store), nil)
}

// --- param helpers ---

func optionalDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func optionalInt(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
