package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/model"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"gorm.io/gorm"
)

// MembershipService is the single gate every organization-scoped read or
// write passes through.
type MembershipService struct {
	members MembershipStore
}

func NewMembershipService(members MembershipStore) *MembershipService {
	return &MembershipService{members: members}
}

// VerifyActiveMember confirms the user holds an ACTIVE membership in the
// organization. Absent, invited, and suspended memberships all fail
// Forbidden.
func (s *MembershipService) VerifyActiveMember(ctx context.Context, userID, organizationID uint) (*model.OrganizationMember, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "VerifyActiveMember")

	member, err := s.members.GetMembership(ctx, userID, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnWithContext(ctx, "Access denied, no membership").
				Uint("user_id", userID).
				Uint("organization_id", organizationID).
				Log()
			return nil, apperrors.ErrNotMember
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if member.Status != model.MemberStatusActive {
		logger.WarnWithContext(ctx, "Access denied, membership not active").
			Uint("user_id", userID).
			Uint("organization_id", organizationID).
			String("membership_status", member.Status).
			Log()
		return nil, apperrors.ErrNotMember
	}

	return member, nil
}

// VerifyRole confirms active membership and that the resolved role is one
// of allowedRoles. The Forbidden message names both the required roles and
// the caller's actual role.
func (s *MembershipService) VerifyRole(ctx context.Context, userID, organizationID uint, allowedRoles ...string) (*model.OrganizationMember, error) {
	member, err := s.VerifyActiveMember(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}

	for _, role := range allowedRoles {
		if member.Role == role {
			return member, nil
		}
	}

	logger.WarnWithContext(ctx, "Access denied, insufficient role").
		Uint("user_id", userID).
		Uint("organization_id", organizationID).
		String("role", member.Role).
		String("required", strings.Join(allowedRoles, ",")).
		Log()

	return nil, apperrors.NewDomainError("INSUFFICIENT_ROLE",
		fmt.Sprintf("requires role %s, but your role is %s",
			strings.Join(allowedRoles, " or "), member.Role))
}
