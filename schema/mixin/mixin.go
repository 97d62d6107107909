// Package mixin provides reusable column groups for entity structs.
//
// A mixin is a struct embedded in an entity. The registry treats embedded
// structs as ancestors, so their fields become columns after the entity's
// own fields:
//
//	type User struct {
//	    mixin.ID
//	    mixin.Time
//	    Name string
//	}
//
//	reg.Register(schema.For[User]().Key("ID"))
//
// The resulting table has the columns Name, ID, CreatedAt and UpdatedAt
// (created_at and updated_at with schema.SnakeNaming).
package mixin

import (
	"time"

	"github.com/syssam/rowmap/expr"
)

// ID adds an integer identifier column. Declare it as the key of the
// embedding entity.
type ID struct {
	ID int64
}

// Time adds creation and update timestamps.
type Time struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch stamps the entity as written at now: CreatedAt is set once,
// UpdatedAt on every call.
func (t *Time) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// SoftDelete adds a nullable deletion timestamp.
type SoftDelete struct {
	DeletedAt *time.Time
}

// Delete marks the entity as deleted at now.
func (s *SoftDelete) Delete(now time.Time) {
	s.DeletedAt = &now
}

// Restore clears the deletion mark.
func (s *SoftDelete) Restore() {
	s.DeletedAt = nil
}

// Deleted reports whether the entity is marked as deleted.
func (s *SoftDelete) Deleted() bool { return s.DeletedAt != nil }

// NotDeleted matches the rows of entities embedding SoftDelete that are
// not marked as deleted.
func NotDeleted() expr.Predicate {
	return expr.F[*time.Time]("DeletedAt").IsNull()
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Time
	SoftDelete
}

// TenantID adds a tenant column for multi-tenant tables.
type TenantID struct {
	TenantID string
}

// OfTenant matches the rows of entities embedding TenantID that belong to
// the given tenant.
func OfTenant(id string) expr.Predicate {
	return expr.F[string]("TenantID").EQ(id)
}
