package service

import (
	"TupleDB/internal/domain"
)

type DeleteTupleService struct {
	repository domain.TupleRepository
}

func NewDeleteTupleService(repository domain.TupleRepository) *DeleteTupleService {
	return &DeleteTupleService{
		repository: repository,
	}
}

type DeleteTupleCommand struct {
	ID uint32
}

type DeleteTupleResult struct {
	Found bool
}

func (s *DeleteTupleService) Execute(command DeleteTupleCommand) (DeleteTupleResult, error) {
	found, err := s.repository.Delete(command.ID)
	if err != nil {
		return DeleteTupleResult{}, err
	}
	return DeleteTupleResult{Found: found}, nil
}
