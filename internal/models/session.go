package models

// Session is the resolved identity of the caller for one request.
type Session struct {
	UserID    string   `json:"user_id"`
	ProfileID string   `json:"profile_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	StudentID *string  `json:"student_id,omitempty"`
	ClassID   *string  `json:"class_id,omitempty"`
}

// SessionEvent is broadcast whenever the session of an identity changes.
// Session is nil for sign-out.
type SessionEvent struct {
	Type       string   `json:"type"`
	UserID     string   `json:"user_id"`
	Session    *Session `json:"session"`
	OccurredAt string   `json:"occurred_at"`
}

// Session event types.
const (
	SessionEventSignedIn  = "signed_in"
	SessionEventSignedOut = "signed_out"
	SessionEventSignedUp  = "signed_up"
)

// Scope is the set of rows a session is entitled to read.
type Scope struct {
	Unrestricted bool     `json:"unrestricted"`
	ClassIDs     []string `json:"class_ids"`
	// Student marks a scope bound to a single student. StudentID is empty
	// when that student has not been enrolled yet.
	Student   bool   `json:"student"`
	StudentID string `json:"student_id,omitempty"`
}

// Contains reports whether the class is visible under the scope.
func (s Scope) Contains(classID string) bool {
	if s.Unrestricted {
		return true
	}
	for _, id := range s.ClassIDs {
		if id == classID {
			return true
		}
	}
	return false
}

// Narrow intersects the scope with an optional explicit class filter.
// A nil slice with ok=true means no class restriction. ok=false means the
// intersection is empty and the query must not run.
func (s Scope) Narrow(explicitClassID string) ([]string, bool) {
	if explicitClassID != "" {
		if !s.Contains(explicitClassID) {
			return nil, false
		}
		return []string{explicitClassID}, true
	}
	if s.Unrestricted {
		return nil, true
	}
	if len(s.ClassIDs) == 0 {
		return nil, false
	}
	out := make([]string, len(s.ClassIDs))
	copy(out, s.ClassIDs)
	return out, true
}

// NarrowStudent applies the same rule to student-keyed rows. A scope bound to
// one student ignores every other student id.
func (s Scope) NarrowStudent(explicitStudentID string) (string, bool) {
	if !s.Student {
		return explicitStudentID, true
	}
	if s.StudentID == "" {
		return "", false
	}
	if explicitStudentID != "" && explicitStudentID != s.StudentID {
		return "", false
	}
	return s.StudentID, true
}

// ClassFilter converts the scope into a repository filter for the given class.
func (s Scope) ClassFilter(explicitClassID string) (ClassScope, bool) {
	ids, ok := s.Narrow(explicitClassID)
	if !ok {
		return ClassScope{Restricted: true}, false
	}
	return ClassScope{Restricted: ids != nil, ClassIDs: ids}, true
}

// ClassScope restricts a repository query to a set of classes.
type ClassScope struct {
	Restricted bool
	ClassIDs   []string
}

// Empty reports whether the filter can never match a row.
func (c ClassScope) Empty() bool {
	return c.Restricted && len(c.ClassIDs) == 0
}
