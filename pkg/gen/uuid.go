package gen

import (
	"github.com/google/uuid"
)

// IDGenerator produces run identifiers. Tests substitute a deterministic one.
type IDGenerator func() string

func UUID() IDGenerator {
	return func() string {
		return uuid.NewString()
	}
}

// Sequence returns ids built from fixed uuids, in order, then uuid.Nil.
func Sequence(ids ...uuid.UUID) IDGenerator {
	i := 0
	return func() string {
		if i >= len(ids) {
			return uuid.Nil.String()
		}
		id := ids[i]
		i++
		return id.String()
	}
}

func (g IDGenerator) Next() string {
	if g == nil {
		return uuid.Nil.String()
	}

	return g()
}
