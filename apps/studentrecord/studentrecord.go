// Package studentrecord is a small UMI application: a roster of student
// names, exercising owned mutation (AddStudent), a shared borrow
// returning bool (HasStudent), and reference-returning methods
// (FirstStudent, RenameFirst) that hand the caller a proxy to a value
// still living inside the roster rather than a copy of it.
package studentrecord

// StudentRecord is the Local half of the proxy: the value actually
// registered and dispatched against server-side (spec.md §3 "Local" /
// §4.H). Its Remote half lives in client.go.
type StudentRecord struct {
	students []string
}

// New constructs an empty roster. Registered under InvokeOp Init.
func New() *StudentRecord {
	return &StudentRecord{}
}

// AddStudent appends student and returns the roster's new size. The Rust
// original returns unit here (Owned("null") in spec.md's scenario 1 step
// 2); this is a deliberate supplement rather than a literal port, since
// the size is otherwise unobservable without a second HasStudent-style
// round trip.
func (s *StudentRecord) AddStudent(student string) int {
	s.students = append(s.students, student)
	return len(s.students)
}

// HasStudent reports whether student is already on the roster. Its stub
// passes the receiver as a shared borrow, not an exclusive one.
func (s *StudentRecord) HasStudent(student string) bool {
	for _, existing := range s.students {
		if existing == student {
			return true
		}
	}
	return false
}

// FirstStudent returns a reference to the first roster entry, or nil if
// the roster is empty. A Ref-returning method: the caller gets a proxy
// to this string, not a copy (spec.md §6 result ops).
func (s *StudentRecord) FirstStudent() *string {
	if len(s.students) == 0 {
		return nil
	}
	return &s.students[0]
}

// RenameFirst overwrites the first roster entry in place and returns a
// MutRef to it, so the caller can keep exclusive access to the renamed
// slot across further calls. A MutRef-returning method (spec.md §6).
func (s *StudentRecord) RenameFirst(newName string) *string {
	if len(s.students) == 0 {
		return nil
	}
	s.students[0] = newName
	return &s.students[0]
}

// ReadStudentRef dereferences a borrowed student-name reference. It is
// the second-hop operation a StudentRef proxy calls to read the value it
// points at, demonstrating that a returned reference is itself usable as
// a later RefRemote argument (spec.md §3 "references may themselves be
// passed back in subsequent calls").
func ReadStudentRef(ref *string) string {
	return *ref
}

// WriteStudentRef overwrites a borrowed student-name reference and
// returns the new value, the MutRef analogue of ReadStudentRef.
func WriteStudentRef(ref *string, value string) string {
	*ref = value
	return value
}
