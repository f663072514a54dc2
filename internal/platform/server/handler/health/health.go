package health

import (
	"encoding/json"
	"net/http"

	"TupleDB/internal/platform/repository/pagestore"
	"github.com/google/uuid"
)

type HealthHandler struct {
	instanceID uuid.UUID
	engine     *pagestore.Engine
}

func NewHealthHandler(engine *pagestore.Engine) *HealthHandler {
	return &HealthHandler{
		instanceID: uuid.New(),
		engine:     engine,
	}
}

type HealthResponse struct {
	Status     string          `json:"status"`
	InstanceID string          `json:"instance_id"`
	Stats      pagestore.Stats `json:"stats"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(HealthResponse{
		Status:     "ok",
		InstanceID: h.instanceID.String(),
		Stats:      h.engine.Stats(),
	})
}

func (h *HealthHandler) InstanceID() uuid.UUID {
	return h.instanceID
}
