package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard response field keys
const (
	ResponseFieldSuccess = "success"
	ResponseFieldMessage = "message"
	ResponseFieldData    = "data"
	ResponseFieldErrors  = "errors"

	ResponseFieldTotal     = "total"
	ResponseFieldPage      = "page"
	ResponseFieldPageTotal = "page_total"
)

// PaginationParams holds core pagination values parsed from the query string
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
	Search string
}

// ParsePaginationParams parses page/limit/search query parameters with bounds
func ParsePaginationParams(c *gin.Context) PaginationParams {
	pageStr := c.DefaultQuery(QueryParamPage, DefaultPage)
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
		Search: c.DefaultQuery(QueryParamSearch, DefaultSearch),
	}
}

// BuildSuccessResponse wraps data in the standard success envelope
func BuildSuccessResponse(message string, data any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: true,
		ResponseFieldMessage: message,
	}
	if data != nil {
		response[ResponseFieldData] = data
	}
	return response
}

// BuildErrorResponse wraps a failure in the standard error envelope
func BuildErrorResponse(message string, errs any) map[string]any {
	response := map[string]any{
		ResponseFieldSuccess: false,
		ResponseFieldMessage: message,
	}
	if errs != nil {
		response[ResponseFieldErrors] = errs
	}
	return response
}

// BuildListResponse wraps a paginated collection in the standard envelope
func BuildListResponse(message string, total int64, page, pageTotal int, data any) map[string]any {
	return map[string]any{
		ResponseFieldSuccess:   true,
		ResponseFieldMessage:   message,
		ResponseFieldData:      data,
		ResponseFieldTotal:     total,
		ResponseFieldPage:      page,
		ResponseFieldPageTotal: pageTotal,
	}
}
