package services

import (
	"context"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
)

const recentOrdersLimit = 5

// DashboardStats are the headline counters of the admin dashboard.
type DashboardStats struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalOrders   int64 `json:"totalOrders"`
	TotalUsers    int64 `json:"totalUsers"`
	TodayOrders   int64 `json:"todayOrders"`
}

// Dashboard is the admin landing page payload.
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	RecentOrders []models.Order `json:"recentOrders"`
}

// AdminService serves the reporting and user management side of the admin panel.
type AdminService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	now         func() time.Time
}

func NewAdminService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository) *AdminService {
	return &AdminService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// SetClock replaces the time source.
func (s *AdminService) SetClock(now func() time.Time) {
	s.now = now
}

// Dashboard counts products, orders and users. Today starts at local midnight.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var stats DashboardStats
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.TodayOrders, err = s.orderRepo.CountSince(ctx, midnight); err != nil {
		return nil, err
	}

	recent, err := s.orderRepo.List(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.Order{}
	}
	return &Dashboard{Stats: stats, RecentOrders: recent}, nil
}

// ListProducts returns the whole catalog, newest first.
func (s *AdminService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, _, err := s.productRepo.List(ctx, models.ProductFilter{SortBy: "createdAt", Desc: true})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// ListUsers returns every user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateUserRole promotes or demotes a user.
func (s *AdminService) UpdateUserRole(ctx context.Context, userID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.Validation("role must be one of [user admin]")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
