package uid

import "github.com/google/uuid"

// UUID generates time-ordered UUIDv7 strings.
type UUID struct {
	next func() (uuid.UUID, error)
}

func NewUUID() *UUID {
	return &UUID{next: uuid.NewV7}
}

// Generate returns a UUIDv7, or a random UUIDv4 if the clock sequence
// cannot be read.
func (u *UUID) Generate() string {
	if id, err := u.next(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
