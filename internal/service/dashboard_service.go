package service

import (
	"context"
	"time"

	"go-inventory-bom/internal/repository"
)

type DashboardService interface {
	GetOrderVolume(ctx context.Context, days int) ([]repository.OrderVolumeData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	orderRepo repository.OrderRepository
	tenants   TenantResolver
}

func NewDashboardService(orderRepo repository.OrderRepository, tenants TenantResolver) DashboardService {
	return &dashboardService{orderRepo: orderRepo, tenants: tenants}
}

func (s *dashboardService) GetOrderVolume(ctx context.Context, days int) ([]repository.OrderVolumeData, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.orderRepo.GetOrderVolume(ctx, tenant.ID, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.GetDashboardStats(ctx, tenant.ID)
}
