package service

import (
	"TupleDB/internal/domain"
)

type ScanTuplesService struct {
	repository domain.TupleRepository
}

func NewScanTuplesService(repository domain.TupleRepository) *ScanTuplesService {
	return &ScanTuplesService{
		repository: repository,
	}
}

type ScanTuplesResult struct {
	Tuples []domain.Tuple
}

func (s *ScanTuplesService) Execute() ScanTuplesResult {
	return ScanTuplesResult{Tuples: s.repository.All()}
}
