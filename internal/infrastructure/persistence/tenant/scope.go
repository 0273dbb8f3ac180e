// Package tenant provides multi-tenant database scoping for GORM.
//
// A request is scoped to exactly one tenant for its whole lifetime.
// The scope travels in the context: middleware establishes it once and
// every repository call inherits it. Queries made through TenantDB are
// filtered to the scoped tenant automatically, and queries without a
// scope fail instead of running unfiltered.
//
// Usage:
//
//	ctx, err := tenant.Scope(ctx, tenantID)
//	db := tenantDB.WithContext(ctx) // WHERE tenant_id = ? is auto-added
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/infrastructure/logger"
)

// ErrTenantRequired is returned when a query runs without a tenant scope
var ErrTenantRequired = errors.New("tenant scope is required but not found in context")

// ErrInvalidTenantID is returned when the tenant ID format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// ErrScopeMismatch is returned when code tries to re-scope a context
// that is already bound to a different tenant.
var ErrScopeMismatch = errors.New("context is already scoped to a different tenant")

type contextKey string

const (
	scopeKey  contextKey = "tenant_scope"
	exemptKey contextKey = "tenant_exempt"
)

// Scope binds the context to a tenant. Scoping an already scoped
// context to the same tenant is a no-op; to a different tenant it is
// an error, never a silent rebind.
func Scope(ctx context.Context, tenantID uuid.UUID) (context.Context, error) {
	if tenantID == uuid.Nil {
		return ctx, ErrInvalidTenantID
	}
	if existing, ok := FromContext(ctx); ok {
		if existing == tenantID {
			return ctx, nil
		}
		return ctx, ErrScopeMismatch
	}
	return context.WithValue(ctx, scopeKey, tenantID), nil
}

// FromContext returns the tenant the context is scoped to. It falls
// back to the tenant_id the logging middleware recorded, so both
// sources stay in agreement.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := ctx.Value(scopeKey).(uuid.UUID); ok && id != uuid.Nil {
		return id, true
	}
	if raw := logger.GetTenantID(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Exempt marks the context as allowed to run tenant-agnostic queries.
// Only system-level operations (tenant resolution, license admin,
// migrations) should use it.
func Exempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, exemptKey, true)
}

// IsExempt reports whether the context may bypass tenant filtering
func IsExempt(ctx context.Context) bool {
	exempt, ok := ctx.Value(exemptKey).(bool)
	return ok && exempt
}

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantDB wraps GORM DB with automatic tenant scoping.
// It is strict by default: a query without a tenant scope and without
// an exemption errors before touching the database.
type TenantDB struct {
	db           *gorm.DB
	tenantColumn string
	required     bool
}

// Config holds configuration for TenantDB
type Config struct {
	// TenantColumn is the name of the tenant ID column (default: "tenant_id")
	TenantColumn string
	// Required determines if a tenant scope is mandatory (default: true)
	Required bool
}

// DefaultConfig returns default TenantDB configuration
func DefaultConfig() Config {
	return Config{
		TenantColumn: "tenant_id",
		Required:     true,
	}
}

// NewTenantDB creates a new TenantDB with default configuration
func NewTenantDB(db *gorm.DB) *TenantDB {
	return NewTenantDBWithConfig(db, DefaultConfig())
}

// NewTenantDBWithConfig creates a new TenantDB with custom configuration
func NewTenantDBWithConfig(db *gorm.DB, cfg Config) *TenantDB {
	if cfg.TenantColumn == "" {
		cfg.TenantColumn = "tenant_id"
	}
	return &TenantDB{
		db:           db,
		tenantColumn: cfg.TenantColumn,
		required:     cfg.Required,
	}
}

// DB returns the underlying GORM DB without tenant scoping.
// Use with caution, this bypasses tenant isolation.
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB scoped to the tenant in the context.
// An exempt context gets an unfiltered DB. A context with no scope
// gets a DB that errors on any operation.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	if IsExempt(ctx) {
		return t.db.WithContext(ctx)
	}

	tenantID, ok := FromContext(ctx)
	if !ok {
		db := t.db.WithContext(ctx)
		if t.required {
			_ = db.AddError(ErrTenantRequired)
		}
		return db
	}

	return t.db.WithContext(ctx).Scopes(TenantScope(tenantID))
}

// WithTenant returns a GORM DB scoped to a specific tenant ID.
// Use this when you have the tenant ID directly rather than from context.
func (t *TenantDB) WithTenant(tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db
		if t.required {
			_ = db.AddError(ErrTenantRequired)
		}
		return db
	}
	return t.db.Scopes(TenantScope(tenantID))
}

// Transaction executes fn inside a database transaction carrying the
// context's tenant scope
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if IsExempt(ctx) {
		return t.db.WithContext(ctx).Transaction(fn)
	}

	tenantID, ok := FromContext(ctx)
	if !ok && t.required {
		return ErrTenantRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ok {
			tx = tx.Scopes(TenantScope(tenantID))
		}
		return fn(tx)
	})
}
