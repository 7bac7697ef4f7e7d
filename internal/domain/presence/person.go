package presence

import (
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/shared"

	"github.com/google/uuid"
)

// Kind tags a person as a student or an employee. Both kinds share the
// same presence semantics but live in independent storage tables.
type Kind string

const (
	// KindStudent is a tracked student.
	KindStudent Kind = "student"

	// KindEmployee is a tracked employee.
	KindEmployee Kind = "employee"
)

// Kinds returns all valid person kinds.
func Kinds() []Kind {
	return []Kind{KindStudent, KindEmployee}
}

// Valid reports whether the kind is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindStudent || k == KindEmployee
}

// Person holds the immutable identity attributes of a tracked person.
// Identity fields are set once at creation; presence is never stored here.
type Person struct {
	// ID is the internal identifier (UUID).
	ID string

	// Kind tags the person as student or employee.
	Kind Kind

	// Identifier is the external identifier (student index or employee
	// email), stored sanitized.
	Identifier string

	// FirstName and LastName are stored sanitized and capitalized.
	FirstName string
	LastName  string

	// Department the person belongs to.
	Department string

	// CreatedAt is when the person was registered.
	CreatedAt time.Time
}

// NewPerson creates a person after validating that every identity field is
// non-empty. Callers are expected to sanitize the fields first.
func NewPerson(kind Kind, identifier, firstName, lastName, department string) (*Person, error) {
	if !kind.Valid() {
		return nil, shared.ErrInvalidPersonKind
	}
	for _, field := range []string{identifier, firstName, lastName, department} {
		if field == "" {
			return nil, shared.NewDomainError("presence", "Create", shared.ErrEmptyValue, "identifier, names and department are required")
		}
	}

	return &Person{
		ID:         uuid.NewString(),
		Kind:       kind,
		Identifier: identifier,
		FirstName:  firstName,
		LastName:   lastName,
		Department: department,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
