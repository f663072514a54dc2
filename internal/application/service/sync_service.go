package service

import (
	"log"

	"TupleDB/internal/domain"
)

type SyncService struct {
	repository domain.TupleRepository
}

func NewSyncService(repository domain.TupleRepository) *SyncService {
	return &SyncService{
		repository: repository,
	}
}

// Execute flushes dirty pages to the page file and clears the WAL. On
// failure the WAL is kept, so the caller can simply retry.
func (s *SyncService) Execute() error {
	if err := s.repository.Sync(); err != nil {
		log.Println("Sync failed, WAL kept for retry:", err)
		return err
	}
	return nil
}
