package service

import (
	"context"
	"errors"
	"testing"

	"github.com/teamforge/backend/internal/dto"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/model"
)

func newOrgFixture() (*OrganizationService, *fakeOrganizationStore) {
	store := newFakeOrganizationStore()
	return NewOrganizationService(store, NewMembershipService(store)), store
}

func createOrg(t *testing.T, svc *OrganizationService, ownerID uint, slug string) *dto.OrganizationResponse {
	t.Helper()
	org, err := svc.Create(context.Background(), ownerID, &dto.CreateOrganizationRequest{
		Name: "Acme Inc",
		Slug: slug,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return org
}

func TestOrganizationCreate(t *testing.T) {
	svc, store := newOrgFixture()

	org := createOrg(t, svc, 1, "acme")

	if org.Slug != "acme" {
		t.Errorf("Expected slug acme, got %s", org.Slug)
	}
	if org.Plan != model.PlanFree {
		t.Errorf("Expected default plan FREE, got %s", org.Plan)
	}
	if org.Status != model.OrgStatusActive {
		t.Errorf("Expected status ACTIVE, got %s", org.Status)
	}
	if org.OwnerID != 1 {
		t.Errorf("Expected owner 1, got %d", org.OwnerID)
	}

	// The creator holds an OWNER membership
	member, err := store.GetMembership(context.Background(), 1, org.ID)
	if err != nil {
		t.Fatalf("GetMembership returned error: %v", err)
	}
	if member.Role != model.RoleOwner {
		t.Errorf("Expected OWNER membership, got %s", member.Role)
	}
	if member.Status != model.MemberStatusActive {
		t.Errorf("Expected ACTIVE membership, got %s", member.Status)
	}
}

func TestOrganizationCreateDuplicateSlug(t *testing.T) {
	svc, _ := newOrgFixture()
	createOrg(t, svc, 1, "acme")

	_, err := svc.Create(context.Background(), 2, &dto.CreateOrganizationRequest{
		Name: "Other Acme",
		Slug: "ACME ",
	})
	if !errors.Is(err, apperrors.ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got %v", err)
	}
}

func TestOrganizationCreateAllOrNothing(t *testing.T) {
	svc, store := newOrgFixture()
	store.failCreate = true

	_, err := svc.Create(context.Background(), 1, &dto.CreateOrganizationRequest{
		Name: "Acme Inc",
		Slug: "acme",
	})
	if err == nil {
		t.Fatal("Expected creation to fail")
	}

	if len(store.orgs) != 0 {
		t.Error("Expected no organization row after failed creation")
	}
	if len(store.memberships) != 0 {
		t.Error("Expected no membership row after failed creation")
	}
}

func TestOrganizationGet(t *testing.T) {
	svc, store := newOrgFixture()
	org := createOrg(t, svc, 1, "acme")
	store.addMembership(2, org.ID, model.RoleMember, model.MemberStatusActive)
	store.addMembership(3, org.ID, model.RoleMember, model.MemberStatusInvited)

	tests := []struct {
		name      string
		userID    uint
		orgID     uint
		expectErr error
	}{
		{
			name:   "Owner can read",
			userID: 1,
			orgID:  org.ID,
		},
		{
			name:   "Active member can read",
			userID: 2,
			orgID:  org.ID,
		},
		{
			name:      "Invited member is forbidden",
			userID:    3,
			orgID:     org.ID,
			expectErr: apperrors.ErrNotMember,
		},
		{
			name:      "Non-member is forbidden",
			userID:    9,
			orgID:     org.ID,
			expectErr: apperrors.ErrNotMember,
		},
		{
			name:      "Missing organization is not found, before any membership check",
			userID:    9,
			orgID:     999,
			expectErr: apperrors.ErrOrganizationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(context.Background(), tt.userID, tt.orgID)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Errorf("Expected error %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Get returned error: %v", err)
			}
		})
	}
}

func TestOrganizationList(t *testing.T) {
	svc, store := newOrgFixture()
	createOrg(t, svc, 1, "acme")
	second := createOrg(t, svc, 2, "globex")
	store.addMembership(1, second.ID, model.RoleMember, model.MemberStatusActive)

	orgs, total, pageTotal, err := svc.List(context.Background(), 1, 10, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected total 2, got %d", total)
	}
	if pageTotal != 1 {
		t.Errorf("Expected 1 page, got %d", pageTotal)
	}
	if len(orgs) != 2 {
		t.Errorf("Expected 2 organizations, got %d", len(orgs))
	}

	// A user with no memberships sees an empty list
	orgs, total, _, err = svc.List(context.Background(), 99, 10, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 0 || len(orgs) != 0 {
		t.Errorf("Expected empty result, got total %d with %d organizations", total, len(orgs))
	}
}

func TestOrganizationUpdate(t *testing.T) {
	svc, store := newOrgFixture()
	org := createOrg(t, svc, 1, "acme")
	store.addMembership(2, org.ID, model.RoleAdmin, model.MemberStatusActive)
	store.addMembership(3, org.ID, model.RoleMember, model.MemberStatusActive)

	newName := "Acme Corporation"
	newPlan := model.PlanPro

	updated, err := svc.Update(context.Background(), 2, org.ID, &dto.OrganizationPatch{
		Name: &newName,
		Plan: &newPlan,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Acme Corporation" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}
	if updated.Plan != model.PlanPro {
		t.Errorf("Expected plan PRO, got %s", updated.Plan)
	}
	if updated.Slug != "acme" {
		t.Errorf("Expected slug untouched, got %s", updated.Slug)
	}

	// MEMBER role cannot update
	_, err = svc.Update(context.Background(), 3, org.ID, &dto.OrganizationPatch{Name: &newName})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "INSUFFICIENT_ROLE" {
		t.Errorf("Expected INSUFFICIENT_ROLE, got %v", err)
	}

	// Empty patch is rejected
	_, err = svc.Update(context.Background(), 1, org.ID, &dto.OrganizationPatch{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty patch, got %v", err)
	}
}

func TestOrganizationUpdateBlankName(t *testing.T) {
	svc, _ := newOrgFixture()
	org := createOrg(t, svc, 1, "acme")

	blank := "   "
	_, err := svc.Update(context.Background(), 1, org.ID, &dto.OrganizationPatch{Name: &blank})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestOrganizationDelete(t *testing.T) {
	svc, store := newOrgFixture()
	org := createOrg(t, svc, 1, "acme")
	store.addMembership(2, org.ID, model.RoleAdmin, model.MemberStatusActive)

	// ADMIN is insufficient for deletion
	err := svc.Delete(context.Background(), 2, org.ID)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "INSUFFICIENT_ROLE" {
		t.Errorf("Expected INSUFFICIENT_ROLE for admin, got %v", err)
	}

	if err := svc.Delete(context.Background(), 1, org.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	// Soft delete: the row survives with CANCELED status
	stored, err := store.GetByID(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.Status != model.OrgStatusCanceled {
		t.Errorf("Expected status CANCELED, got %s", stored.Status)
	}

	if err := svc.Delete(context.Background(), 1, 999); !errors.Is(err, apperrors.ErrOrganizationNotFound) {
		t.Errorf("Expected ErrOrganizationNotFound, got %v", err)
	}
}
