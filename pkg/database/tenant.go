package database

import (
	"errors"
	"reflect"
	"strings"

	"github.com/teamforge/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingTenantScope is returned when a query targets a tenant-scoped
// model without an organization filter.
var ErrMissingTenantScope = errors.New("query on tenant-scoped model lacks an organization filter")

// tenantScopeSkipKey opts a single query out of enforcement. Reserved for
// cross-tenant maintenance paths that are tenant-safe by construction
// (e.g. listing the caller's own memberships across organizations).
const tenantScopeSkipKey = "tenant_scope:skip"

// SkipTenantScope marks the query as exempt from tenant-scope enforcement
func SkipTenantScope(db *gorm.DB) *gorm.DB {
	return db.Set(tenantScopeSkipKey, true)
}

// TenantScopePlugin rejects queries against models implementing
// model.TenantScoped unless the statement filters on the tenant column.
// The marker interface makes the set of guarded tables a property of the
// schema types themselves, so it cannot drift when models are added.
type TenantScopePlugin struct{}

func (TenantScopePlugin) Name() string { return "tenant_scope" }

func (p TenantScopePlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_scope:query", p.check); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_scope:update", p.check); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("tenant_scope:delete", p.check)
}

func (TenantScopePlugin) check(db *gorm.DB) {
	if db.Statement == nil {
		return
	}
	if skip, ok := db.Statement.Settings.Load(tenantScopeSkipKey); ok && skip == true {
		return
	}

	column, scoped := tenantColumn(db.Statement.Model)
	if !scoped {
		column, scoped = tenantColumn(db.Statement.Dest)
	}
	if !scoped {
		return
	}

	if !hasColumnCondition(db.Statement.Clauses, column) {
		_ = db.AddError(ErrMissingTenantScope)
	}
}

// tenantColumn unwraps pointers and slices to find a model.TenantScoped
// implementation and returns its tenant column name
func tenantColumn(value interface{}) (string, bool) {
	if value == nil {
		return "", false
	}
	if ts, ok := value.(model.TenantScoped); ok {
		return ts.TenantColumn(), true
	}

	t := reflect.TypeOf(value)
	for t != nil && (t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return "", false
	}

	v := reflect.New(t).Elem().Interface()
	if ts, ok := v.(model.TenantScoped); ok {
		return ts.TenantColumn(), true
	}
	return "", false
}

func hasColumnCondition(clauses map[string]clause.Clause, column string) bool {
	where, ok := clauses["WHERE"]
	if !ok {
		return false
	}
	cond, ok := where.Expression.(clause.Where)
	if !ok {
		return false
	}
	return exprsMention(cond.Exprs, column)
}

func exprsMention(exprs []clause.Expression, column string) bool {
	for _, expr := range exprs {
		switch e := expr.(type) {
		case clause.Eq:
			if columnName(e.Column) == column {
				return true
			}
		case clause.IN:
			if columnName(e.Column) == column {
				return true
			}
		case clause.Expr:
			if strings.Contains(e.SQL, column) {
				return true
			}
		case clause.NamedExpr:
			if strings.Contains(e.SQL, column) {
				return true
			}
		case clause.AndConditions:
			if exprsMention(e.Exprs, column) {
				return true
			}
		case clause.OrConditions:
			if exprsMention(e.Exprs, column) {
				return true
			}
		}
	}
	return false
}

func columnName(col interface{}) string {
	switch c := col.(type) {
	case string:
		return c
	case clause.Column:
		return c.Name
	}
	return ""
}
