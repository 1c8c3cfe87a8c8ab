package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"

	"github.com/google/uuid"
)

// --- Supplier DTOs ---

type CreateSupplierRequest struct {
	Name          string             `json:"name" binding:"required,max=255"`
	SupplierType  model.SupplierType `json:"supplier_type" binding:"required"`
	ContactPerson string             `json:"contact_person" binding:"max=255"`
	Email         string             `json:"email" binding:"max=255"`
	Phone         string             `json:"phone" binding:"max=50"`
	Address       string             `json:"address"`
}

// UpdateSupplierRequest is a patch: nil fields are left untouched. The supplier
// type is fixed at creation because orders snapshot it.
type UpdateSupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

type SupplierResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	SupplierType  model.SupplierType `json:"supplier_type"`
	ContactPerson string             `json:"contact_person"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone"`
	Address       string             `json:"address"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type SupplierListQuery struct {
	SupplierType string
	Skip         int
	Limit        int
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error)
	GetSupplier(ctx context.Context, id string) (SupplierResponse, error)
	GetSuppliers(ctx context.Context, query SupplierListQuery) ([]SupplierResponse, int64, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id string) error
}

// --- Implementation ---

type supplierService struct {
	supplierRepo repository.SupplierRepository
	txManager    repository.TransactionManager
}

func NewSupplierService(supplierRepo repository.SupplierRepository, txManager repository.TransactionManager) SupplierService {
	return &supplierService{supplierRepo: supplierRepo, txManager: txManager}
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("invalid email format")
	}
	return nil
}

func supplierWriteError(err error, name string) error {
	if repository.IsDuplicateOn(err, model.IdxSupplierName) {
		return apperr.Wrap(apperr.ErrConflict, err, "supplier %q already exists", name)
	}
	return err
}

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return SupplierResponse{}, apperr.Validation("name is required")
	}
	if !req.SupplierType.Valid() {
		return SupplierResponse{}, apperr.Validation("supplier_type must be one of: local, import")
	}
	if err := validateEmail(req.Email); err != nil {
		return SupplierResponse{}, err
	}

	supplier := &model.Supplier{
		Name:          name,
		SupplierType:  req.SupplierType,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return SupplierResponse{}, supplierWriteError(err, name)
	}

	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (SupplierResponse, error) {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return SupplierResponse{}, err
	}

	supplier, err := s.supplierRepo.FindByID(ctx, uid)
	if err != nil {
		return SupplierResponse{}, notFound(err, "supplier %s not found", uid)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) GetSuppliers(ctx context.Context, query SupplierListQuery) ([]SupplierResponse, int64, error) {
	filter := repository.SupplierFilter{Page: repository.Page{Skip: query.Skip, Limit: query.Limit}}
	if query.SupplierType != "" {
		filter.SupplierType = model.SupplierType(query.SupplierType)
		if !filter.SupplierType.Valid() {
			return nil, 0, apperr.Validation("supplier_type must be one of: local, import")
		}
	}

	suppliers, total, err := s.supplierRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]SupplierResponse, 0, len(suppliers))
	for _, sup := range suppliers {
		res = append(res, toSupplierResponse(sup))
	}
	return res, total, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return SupplierResponse{}, err
	}

	var supplier *model.Supplier
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		supplier, err = s.supplierRepo.FindByID(txCtx, uid)
		if err != nil {
			return notFound(err, "supplier %s not found", uid)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperr.Validation("name cannot be empty")
			}
			supplier.Name = name
		}
		if req.ContactPerson != nil {
			supplier.ContactPerson = *req.ContactPerson
		}
		if req.Email != nil {
			if err := validateEmail(*req.Email); err != nil {
				return err
			}
			supplier.Email = *req.Email
		}
		if req.Phone != nil {
			supplier.Phone = *req.Phone
		}
		if req.Address != nil {
			supplier.Address = *req.Address
		}

		if err := s.supplierRepo.Update(txCtx, supplier); err != nil {
			return supplierWriteError(err, supplier.Name)
		}
		return nil
	})
	if err != nil {
		return SupplierResponse{}, err
	}

	return toSupplierResponse(*supplier), nil
}

// DeleteSupplier removes a supplier that no purchase order references.
func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	uid, err := parseID(id, "supplier")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.supplierRepo.FindByID(txCtx, uid); err != nil {
			return notFound(err, "supplier %s not found", uid)
		}

		count, err := s.supplierRepo.CountPurchaseOrders(txCtx, uid)
		if err != nil {
			return fmt.Errorf("failed to count purchase orders: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("supplier %s is referenced by %d purchase order(s)", uid, count)
		}

		if err := s.supplierRepo.Delete(txCtx, uid); err != nil {
			if errors.Is(err, repository.ErrReferenced) {
				return apperr.Wrap(apperr.ErrConflict, err, "supplier %s is referenced by purchase orders", uid)
			}
			return fmt.Errorf("failed to delete supplier: %w", err)
		}
		return nil
	})
}

func toSupplierResponse(s model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		SupplierType:  s.SupplierType,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
