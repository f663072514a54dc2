package repository

import (
	"TupleDB/internal/domain"
	"TupleDB/internal/platform/repository/pagestore"
)

// PageStoreTupleRepository adapts the storage engine to the domain
// repository interface.
type PageStoreTupleRepository struct {
	engine *pagestore.Engine
}

func NewPageStoreTupleRepository(engine *pagestore.Engine) *PageStoreTupleRepository {
	return &PageStoreTupleRepository{
		engine: engine,
	}
}

func (r *PageStoreTupleRepository) Save(t domain.Tuple) error {
	return r.engine.Put(t.ID, t.Value)
}

func (r *PageStoreTupleRepository) Get(id uint32) (domain.Tuple, bool) {
	value, found := r.engine.Get(id)
	if !found {
		return domain.Tuple{}, false
	}
	return domain.NewTuple(id, value), true
}

func (r *PageStoreTupleRepository) Delete(id uint32) (bool, error) {
	return r.engine.Remove(id)
}

func (r *PageStoreTupleRepository) All() []domain.Tuple {
	return r.engine.Scan()
}

func (r *PageStoreTupleRepository) Sync() error {
	return r.engine.Sync()
}
