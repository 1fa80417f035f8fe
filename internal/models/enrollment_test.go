package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The enroll path relies on the database rejecting a concurrent duplicate,
// so both key columns must carry the same partial unique index.
func TestEnrollmentUniqueIndex(t *testing.T) {
	typ := reflect.TypeOf(CourseEnrollment{})

	for _, name := range []string{"UserID", "CourseID"} {
		field, ok := typ.FieldByName(name)
		if !assert.True(t, ok, "field %s missing", name) {
			continue
		}
		tag := field.Tag.Get("gorm")
		assert.Contains(t, tag, "uniqueIndex:idx_enrollment_user_course", "field %s", name)
		// Partial over active rows only; a soft-deleted enrollment must not
		// block re-enrollment.
		assert.Contains(t, tag, "where:deleted_at IS NULL", "field %s", name)
	}
}
