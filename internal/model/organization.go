package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization statuses. Deletion is always a status transition to
// CANCELED, the row itself is never removed.
const (
	OrgStatusActive    = "ACTIVE"
	OrgStatusSuspended = "SUSPENDED"
	OrgStatusCanceled  = "CANCELED"
)

// Plan tiers
const (
	PlanFree       = "FREE"
	PlanPro        = "PRO"
	PlanEnterprise = "ENTERPRISE"
)

// Membership roles
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
	RoleGuest  = "GUEST"
)

// Membership statuses
const (
	MemberStatusActive    = "ACTIVE"
	MemberStatusInvited   = "INVITED"
	MemberStatusSuspended = "SUSPENDED"
)

// TenantScoped marks models that carry an organization reference. The
// tenant-scope gorm plugin only admits queries against these models when an
// organization filter is present.
type TenantScoped interface {
	TenantColumn() string
}

type Organization struct {
	gorm.Model
	Slug    string `gorm:"column:slug;unique;not null"`
	Name    string `gorm:"column:name;not null"`
	Logo    string `gorm:"column:logo"`
	Plan    string `gorm:"column:plan;default:FREE;not null"`
	Status  string `gorm:"column:status;default:ACTIVE;not null"`
	OwnerID uint   `gorm:"column:owner_id;not null;index"`

	Members []OrganizationMember `gorm:"constraint:OnDelete:CASCADE"`
}

// OrganizationMember is the (user, organization) relationship. At most one
// row per pair; removal is modeled as a status transition.
type OrganizationMember struct {
	gorm.Model
	OrganizationID uint      `gorm:"column:organization_id;not null;uniqueIndex:idx_org_members_org_user"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex:idx_org_members_org_user"`
	Role           string    `gorm:"column:role;default:MEMBER;not null"`
	Status         string    `gorm:"column:status;default:ACTIVE;not null"`
	JoinedAt       time.Time `gorm:"column:joined_at;not null"`
}

func (OrganizationMember) TenantColumn() string { return "organization_id" }
