package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"

	"github.com/google/uuid"
)

type CreateProductRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer" binding:"max=255"`
	HSCode       string `json:"hs_code" binding:"max=50"`
}

type UpdateProductRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Manufacturer *string `json:"manufacturer"`
	HSCode       *string `json:"hs_code"`
}

type ProductResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Manufacturer string    `json:"manufacturer"`
	HSCode       string    `json:"hs_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProductListQuery struct {
	Name  string
	Skip  int
	Limit int
}

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (ProductResponse, error)
	GetProduct(ctx context.Context, id string) (ProductResponse, error)
	GetProducts(ctx context.Context, query ProductListQuery) ([]ProductResponse, int64, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewProductService(productRepo repository.ProductRepository, txManager repository.TransactionManager) ProductService {
	return &productService{productRepo: productRepo, txManager: txManager}
}

func productWriteError(err error, name string) error {
	if repository.IsDuplicateOn(err, model.IdxProductName) {
		return apperr.Wrap(apperr.ErrConflict, err, "product %q already exists", name)
	}
	return err
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ProductResponse{}, apperr.Validation("name is required")
	}

	product := &model.Product{
		Name:         name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		HSCode:       req.HSCode,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return ProductResponse{}, productWriteError(err, name)
	}
	return toProductResponse(*product), nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	uid, err := parseID(id, "product")
	if err != nil {
		return ProductResponse{}, err
	}

	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		return ProductResponse{}, notFound(err, "product %s not found", uid)
	}
	return toProductResponse(*product), nil
}

func (s *productService) GetProducts(ctx context.Context, query ProductListQuery) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Name: strings.TrimSpace(query.Name),
		Page: repository.Page{Skip: query.Skip, Limit: query.Limit},
	})
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error) {
	uid, err := parseID(id, "product")
	if err != nil {
		return ProductResponse{}, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.productRepo.FindByID(txCtx, uid)
		if err != nil {
			return notFound(err, "product %s not found", uid)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("name cannot be empty")
			}
			product.Name = name
		}
		if req.Description != nil {
			product.Description = *req.Description
		}
		if req.Manufacturer != nil {
			product.Manufacturer = *req.Manufacturer
		}
		if req.HSCode != nil {
			product.HSCode = *req.HSCode
		}

		if err := s.productRepo.Update(txCtx, product); err != nil {
			return productWriteError(err, product.Name)
		}
		return nil
	})
	if err != nil {
		return ProductResponse{}, err
	}

	return toProductResponse(*product), nil
}

// DeleteProduct removes a product that no purchase order line references.
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	uid, err := parseID(id, "product")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.productRepo.FindByID(txCtx, uid); err != nil {
			return notFound(err, "product %s not found", uid)
		}

		count, err := s.productRepo.CountOrderItems(txCtx, uid)
		if err != nil {
			return fmt.Errorf("failed to count order items: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("product %s is referenced by %d purchase order item(s)", uid, count)
		}

		if err := s.productRepo.Delete(txCtx, uid); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return apperr.Wrap(apperr.ErrConflict, err, "product %s is referenced by purchase orders", uid)
			}
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func toProductResponse(p model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Manufacturer: p.Manufacturer,
		HSCode:       p.HSCode,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
