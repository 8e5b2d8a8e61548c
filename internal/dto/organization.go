package dto

import "time"

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Slug string `json:"slug" binding:"required,min=3,max=50,lowercase,alphanum"`
	Logo string `json:"logo" binding:"omitempty,url"`
	Plan string `json:"plan" binding:"omitempty,oneof=FREE PRO ENTERPRISE"`
}

// OrganizationPatch is the explicit partial-update payload. Every field is
// optional; the slug is deliberately absent because it is immutable after
// creation. Fields left nil are not touched.
type OrganizationPatch struct {
	Name *string `json:"name" binding:"omitempty,min=2,max=100"`
	Logo *string `json:"logo" binding:"omitempty,url"`
	Plan *string `json:"plan" binding:"omitempty,oneof=FREE PRO ENTERPRISE"`
}

// IsEmpty reports whether the patch changes anything
func (p *OrganizationPatch) IsEmpty() bool {
	return p.Name == nil && p.Logo == nil && p.Plan == nil
}

type OrganizationResponse struct {
	ID        uint      `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	OwnerID   uint      `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
