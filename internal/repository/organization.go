package repository

import (
	"context"
	"time"

	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/database"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// CreateWithOwner inserts the organization and its OWNER membership in one
// transaction. A created-but-memberless organization would be unreachable
// for its own creator, so partial application must never commit.
func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, org *model.Organization) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationCreateWithOwner")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		member := &model.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         org.OwnerID,
			Role:           model.RoleOwner,
			Status:         model.MemberStatusActive,
			JoinedAt:       time.Now(),
		}
		return tx.Create(member).Error
	})
	duration := time.Since(start)

	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to create organization").
			String("slug", org.Slug).
			Uint("owner_id", org.OwnerID).
			Duration(duration).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Organization created with owner membership").
		String("slug", org.Slug).
		Uint("organization_id", org.ID).
		Uint("owner_id", org.OwnerID).
		Duration(duration).
		Log()

	return nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uint) (*model.Organization, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationGetByID")

	var org model.Organization
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&org)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get organization").
				Uint("organization_id", id).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &org, nil
}

func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationGetBySlug")

	var org model.Organization
	result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org)
	if result.Error != nil {
		return nil, result.Error
	}

	return &org, nil
}

// ListByMember returns organizations the user actively belongs to, newest
// first. The membership join is filtered by user, not organization, so the
// query opts out of tenant-scope enforcement explicitly.
func (r *OrganizationRepository) ListByMember(ctx context.Context, userID uint, limit, offset int) ([]model.Organization, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationListByMember")

	logger.DebugWithContext(ctx, "Listing organizations for user").
		Uint("user_id", userID).
		Log()

	base := database.SkipTenantScope(r.db.WithContext(ctx)).
		Model(&model.Organization{}).
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ? AND organization_members.status = ?", userID, model.MemberStatusActive).
		Where("organization_members.deleted_at IS NULL")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count organizations for user").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, 0, err
	}

	var orgs []model.Organization
	if err := base.Order("organizations.created_at DESC").Limit(limit).Offset(offset).Find(&orgs).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to list organizations for user").
			Uint("user_id", userID).
			Err(err).
			Log()
		return nil, 0, err
	}

	return orgs, total, nil
}

// UpdateFields applies a validated allow-listed field map
func (r *OrganizationRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationUpdateFields")

	result := r.db.WithContext(ctx).Model(&model.Organization{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update organization").
			Uint("organization_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// UpdateStatus transitions the organization lifecycle status
func (r *OrganizationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationUpdateStatus")

	result := r.db.WithContext(ctx).Model(&model.Organization{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update organization status").
			Uint("organization_id", id).
			String("status", status).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.InfoWithContext(ctx, "Organization status updated").
		Uint("organization_id", id).
		String("status", status).
		Log()

	return nil
}

// GetMembership returns the membership row for the (user, organization)
// pair regardless of its status
func (r *OrganizationRepository) GetMembership(ctx context.Context, userID, organizationID uint) (*model.OrganizationMember, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "OrganizationGetMembership")

	var member model.OrganizationMember
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member)
	if result.Error != nil {
		if result.Error != gorm.ErrRecordNotFound {
			logger.ErrorWithContext(ctx, "Failed to get membership").
				Uint("organization_id", organizationID).
				Uint("user_id", userID).
				Err(result.Error).
				Log()
		}
		return nil, result.Error
	}

	return &member, nil
}
