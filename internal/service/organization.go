package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/teamforge/backend/internal/dto"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

// OrganizationService implements the organization lifecycle on top of the
// membership guard. Every read and write on an existing organization goes
// through the guard; existence is checked before access so a 404 never
// turns into a tenant-information probe the other way around.
type OrganizationService struct {
	orgs  OrganizationStore
	guard *MembershipService
}

func NewOrganizationService(orgs OrganizationStore, guard *MembershipService) *OrganizationService {
	return &OrganizationService{orgs: orgs, guard: guard}
}

func toOrganizationResponse(org *model.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        org.ID,
		Slug:      org.Slug,
		Name:      org.Name,
		Logo:      org.Logo,
		Plan:      org.Plan,
		Status:    org.Status,
		OwnerID:   org.OwnerID,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

// Create provisions an organization with the caller as OWNER. The
// organization row and the OWNER membership row commit together or not at
// all.
func (s *OrganizationService) Create(ctx context.Context, ownerID uint, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "OrganizationCreate")

	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	if _, err := s.orgs.GetBySlug(ctx, slug); err == nil {
		return nil, apperrors.ErrSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	plan := req.Plan
	if plan == "" {
		plan = model.PlanFree
	}

	org := &model.Organization{
		Slug:    slug,
		Name:    strings.TrimSpace(req.Name),
		Logo:    req.Logo,
		Plan:    plan,
		Status:  model.OrgStatusActive,
		OwnerID: ownerID,
	}

	if err := s.orgs.CreateWithOwner(ctx, org); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	response := toOrganizationResponse(org)
	return &response, nil
}

// Get returns the organization after the existence check (404) and the
// membership check (403), in that order: existence is not tenant-secret in
// this design, only access is gated.
func (s *OrganizationService) Get(ctx context.Context, userID, organizationID uint) (*dto.OrganizationResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "OrganizationGet")

	org, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.guard.VerifyActiveMember(ctx, userID, organizationID); err != nil {
		return nil, err
	}

	response := toOrganizationResponse(org)
	return &response, nil
}

// List returns the organizations the caller actively belongs to, newest
// first
func (s *OrganizationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.OrganizationResponse, int64, int, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "OrganizationList")

	orgs, total, err := s.orgs.ListByMember(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pageTotal := 0
	if limit > 0 {
		pageTotal = int(math.Ceil(float64(total) / float64(limit)))
	}

	responses := make([]dto.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		responses = append(responses, toOrganizationResponse(&orgs[i]))
	}

	return responses, total, pageTotal, nil
}

// Update applies a validated patch. OWNER or ADMIN only; the slug is not
// part of the patch type, so a slug present in the raw payload is dropped
// before it can reach the store.
func (s *OrganizationService) Update(ctx context.Context, userID, organizationID uint, patch *dto.OrganizationPatch) (*dto.OrganizationResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "OrganizationUpdate")

	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.guard.VerifyRole(ctx, userID, organizationID, model.RoleOwner, model.RoleAdmin); err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	// Explicit allow-list, field by field
	fields := make(map[string]interface{}, 3)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.ErrInvalidInput
		}
		fields["name"] = name
	}
	if patch.Logo != nil {
		fields["logo"] = *patch.Logo
	}
	if patch.Plan != nil {
		fields["plan"] = *patch.Plan
	}

	if err := s.orgs.UpdateFields(ctx, organizationID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	org, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Organization updated").
		Uint("organization_id", organizationID).
		Uint("user_id", userID).
		Log()

	response := toOrganizationResponse(org)
	return &response, nil
}

// Delete soft-deletes the organization by transitioning its status to
// CANCELED. Strictly OWNER only; ADMIN is insufficient. The row is never
// removed.
func (s *OrganizationService) Delete(ctx context.Context, userID, organizationID uint) error {
	ctx = ctxutil.WithOperation(ctx, "service", "OrganizationDelete")

	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOrganizationNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.guard.VerifyRole(ctx, userID, organizationID, model.RoleOwner); err != nil {
		return err
	}

	if err := s.orgs.UpdateStatus(ctx, organizationID, model.OrgStatusCanceled); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOrganizationNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Organization canceled").
		Uint("organization_id", organizationID).
		Uint("user_id", userID).
		Log()

	return nil
}
