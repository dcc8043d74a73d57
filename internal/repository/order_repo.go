package repository

import (
	"context"
	"time"

	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	// Create inserts the header with its items and payments.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, page Page) ([]model.Order, int64, error)
	GetOrderVolume(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]OrderVolumeData, error)
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error)
}

// OrderVolumeData is one day of placed orders, for charts.
type OrderVolumeData struct {
	Date      string  `json:"date"`
	Orders    int64   `json:"orders"`
	NetAmount float64 `json:"net_amount"`
}

type DashboardStats struct {
	TotalRawMaterials int64   `json:"total_raw_materials"`
	OutOfStockCount   int64   `json:"out_of_stock_count"`
	TotalOrders       int64   `json:"total_orders"`
	TotalNetSales     float64 `json:"total_net_sales"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").Preload("Payments").
		First(&order, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, tenantID uuid.UUID, page Page) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("tenant_id = ?", tenantID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(q).Preload("Items").Preload("Payments").Order("created_at DESC").Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) GetOrderVolume(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]OrderVolumeData, error) {
	var results []OrderVolumeData

	rows, err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as orders,
			COALESCE(SUM(net_amount), 0) as net_amount
		`).
		Where("tenant_id = ? AND created_at BETWEEN ? AND ?", tenantID, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data OrderVolumeData
		if err := rows.Scan(&data.Date, &data.Orders, &data.NetAmount); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *orderRepo) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.RawMaterial{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalRawMaterials).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.RawMaterial{}).Where("tenant_id = ? AND stock <= 0", tenantID).Count(&stats.OutOfStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(net_amount), 0)").Scan(&stats.TotalNetSales).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
