package domain

// Tuple is the single row shape the engine stores: a unique key and a value,
// both 32-bit unsigned. Ordering is by ID ascending.
type Tuple struct {
	ID    uint32 `json:"id"`
	Value uint32 `json:"value"`
}

func NewTuple(id, value uint32) Tuple {
	return Tuple{
		ID:    id,
		Value: value,
	}
}

type TupleRepository interface {
	Save(t Tuple) error
	Get(id uint32) (Tuple, bool)
	Delete(id uint32) (bool, error)
	All() []Tuple
	Sync() error
}
