package service

import (
	"TupleDB/internal/domain"
)

type GetTupleService struct {
	repository domain.TupleRepository
}

func NewGetTupleService(repository domain.TupleRepository) *GetTupleService {
	return &GetTupleService{
		repository: repository,
	}
}

type GetTupleQuery struct {
	ID uint32
}

type GetTupleResult struct {
	Tuple domain.Tuple
	Found bool
}

func (s *GetTupleService) Execute(query GetTupleQuery) GetTupleResult {
	tuple, found := s.repository.Get(query.ID)
	if !found {
		return GetTupleResult{Found: false}
	}
	return GetTupleResult{
		Tuple: tuple,
		Found: true,
	}
}
