package service

import (
	"TupleDB/internal/domain"
)

type SaveTupleService struct {
	repository domain.TupleRepository
}

func NewSaveTupleService(repository domain.TupleRepository) *SaveTupleService {
	return &SaveTupleService{
		repository: repository,
	}
}

type SaveTupleCommand struct {
	ID    uint32
	Value uint32
}

type SaveTupleResult struct {
	Tuple domain.Tuple
}

func (s *SaveTupleService) Execute(command SaveTupleCommand) (SaveTupleResult, error) {
	tuple := domain.NewTuple(command.ID, command.Value)
	if err := s.repository.Save(tuple); err != nil {
		return SaveTupleResult{}, err
	}
	return SaveTupleResult{Tuple: tuple}, nil
}
