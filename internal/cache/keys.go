package cache

import (
	"fmt"
	"time"
)

// TTL policy for derived values. Course duration changes rarely; progress
// changes on every submission or topic completion.
const (
	CourseDurationTTL = time.Hour
	CourseProgressTTL = 10 * time.Minute
)

// KeyKind identifies the family of a derived-value cache key.
type KeyKind string

const (
	KindCourseDuration KeyKind = "course_duration"
	KindCourseProgress KeyKind = "course_progress"
)

// Key is a typed composite cache key. Using a struct instead of ad-hoc
// string interpolation keeps invalidation call sites and populate call
// sites from drifting apart.
type Key struct {
	Kind     KeyKind
	CourseID uint
	UserID   uint
}

// CourseDurationKey addresses the cached duration label of a course.
func CourseDurationKey(courseID uint) Key {
	return Key{Kind: KindCourseDuration, CourseID: courseID}
}

// CourseProgressKey addresses the cached overall progress percentage of a
// (course, user) pair.
func CourseProgressKey(courseID, userID uint) Key {
	return Key{Kind: KindCourseProgress, CourseID: courseID, UserID: userID}
}

// String renders the key in the store's flat keyspace.
func (k Key) String() string {
	switch k.Kind {
	case KindCourseProgress:
		return fmt.Sprintf("%s:%d:%d", k.Kind, k.CourseID, k.UserID)
	default:
		return fmt.Sprintf("%s:%d", k.Kind, k.CourseID)
	}
}
