package tuple

import "TupleDB/internal/domain"

type SaveTupleRequest struct {
	Value uint32 `json:"value"`
}

type TupleResponse struct {
	ID    uint32 `json:"id"`
	Value uint32 `json:"value"`
}

func MapToTupleResponse(t domain.Tuple) TupleResponse {
	return TupleResponse{
		ID:    t.ID,
		Value: t.Value,
	}
}
