package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/backend/internal/constants"
	"github.com/teamforge/backend/internal/dto"
	apperrors "github.com/teamforge/backend/internal/errors"
	"github.com/teamforge/backend/internal/service"
	ctxutil "github.com/teamforge/backend/pkg/context"
	"github.com/teamforge/backend/pkg/logger"
	"github.com/teamforge/backend/pkg/validation"
)

type OrganizationHandler struct {
	orgService *service.OrganizationService
}

func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// Create provisions a new organization with the caller as owner
func (h *OrganizationHandler) Create(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "CreateOrganization")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	response, err := h.orgService.Create(ctx, principal.UserID, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Organization creation failed").
			String("slug", req.Slug).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse("Organization created", response))
}

// List returns the organizations the caller actively belongs to
func (h *OrganizationHandler) List(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "ListOrganizations")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	params := constants.ParsePaginationParams(c)

	organizations, total, pageTotal, err := h.orgService.List(ctx, principal.UserID, params.Limit, params.Offset)
	if err != nil {
		logger.ErrorWithContext(ctx, "Organization listing failed").
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse("Organizations retrieved", total, params.Page, pageTotal, organizations))
}

// Get returns a single organization the caller belongs to
func (h *OrganizationHandler) Get(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "GetOrganization")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	organizationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	response, err := h.orgService.Get(ctx, principal.UserID, organizationID)
	if err != nil {
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Organization retrieved", response))
}

// Update applies a partial update to organization settings
func (h *OrganizationHandler) Update(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "UpdateOrganization")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	organizationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var patch dto.OrganizationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", validation.FormatBindingError(err)))
		return
	}

	response, err := h.orgService.Update(ctx, principal.UserID, organizationID, &patch)
	if err != nil {
		logger.WarnWithContext(ctx, "Organization update failed").
			Uint("organization_id", organizationID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Organization updated", response))
}

// Delete soft-cancels an organization, owner only
func (h *OrganizationHandler) Delete(c *gin.Context) {
	ctx := ctxutil.WithOperation(c.Request.Context(), "handler", "DeleteOrganization")

	principal, ok := ctxutil.GetPrincipal(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Unauthorized", nil))
		return
	}

	organizationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.orgService.Delete(ctx, principal.UserID, organizationID); err != nil {
		logger.WarnWithContext(ctx, "Organization deletion failed").
			Uint("organization_id", organizationID).
			Err(err).
			Log()
		c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(apperrors.GetErrorMessage(err), nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Organization deleted", nil))
}

func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid organization ID", nil))
		return 0, false
	}
	return uint(id), true
}
