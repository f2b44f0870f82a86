package service

import (
	"context"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type itemService struct {
	store repository.Store
}

func NewItemService(store repository.Store) ItemService {
	return &itemService{store: store}
}

func (s *itemService) AddItem(ctx context.Context, tenant *domain.TenantHandle, item *domain.Item) error {
	if tenant == nil {
		return domain.ErrUnauthenticated
	}
	if item.Code == "" {
		return domain.NewValidationError("code", "must not be empty")
	}
	if item.Name == "" {
		return domain.NewValidationError("name", "must not be empty")
	}
	if !item.ForSale && !item.ForRent {
		return domain.NewValidationError("for_rent", "item must be eligible for sale or rent")
	}
	item.TenantID = tenant.TenantID
	return s.store.Items().Create(ctx, item)
}

func (s *itemService) GetItem(ctx context.Context, tenant *domain.TenantHandle, itemID int32) (*domain.Item, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.store.Items().GetByID(ctx, tenant.TenantID, itemID)
}

func (s *itemService) ListItems(ctx context.Context, tenant *domain.TenantHandle, page, pageSize int32) ([]domain.Item, int32, error) {
	if tenant == nil {
		return nil, 0, domain.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.store.Items().List(ctx, tenant.TenantID, page, pageSize)
}
