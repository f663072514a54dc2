package tuple

import (
	"encoding/json"
	"net/http"
	"strconv"

	"TupleDB/internal/application/service"
	"github.com/go-chi/chi/v5"
)

type TupleHandler struct {
	saveService   *service.SaveTupleService
	deleteService *service.DeleteTupleService
	getService    *service.GetTupleService
	scanService   *service.ScanTuplesService
	syncService   *service.SyncService
}

func NewTupleHandler(saveService *service.SaveTupleService,
	deleteService *service.DeleteTupleService,
	getService *service.GetTupleService,
	scanService *service.ScanTuplesService,
	syncService *service.SyncService) *TupleHandler {
	return &TupleHandler{
		saveService:   saveService,
		deleteService: deleteService,
		getService:    getService,
		scanService:   scanService,
		syncService:   syncService,
	}
}

func parseID(r *http.Request) (uint32, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	return uint32(id), err
}

func (h *TupleHandler) SaveTuple(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var request SaveTupleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	result, err := h.saveService.Execute(service.SaveTupleCommand{
		ID:    id,
		Value: request.Value,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(MapToTupleResponse(result.Tuple))
}

func (h *TupleHandler) GetTuple(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	result := h.getService.Execute(service.GetTupleQuery{ID: id})
	if !result.Found {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(MapToTupleResponse(result.Tuple))
}

func (h *TupleHandler) DeleteTuple(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	result, err := h.deleteService.Execute(service.DeleteTupleCommand{ID: id})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !result.Found {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TupleHandler) ScanTuples(w http.ResponseWriter, r *http.Request) {
	result := h.scanService.Execute()
	responses := make([]TupleResponse, 0, len(result.Tuples))
	for _, t := range result.Tuples {
		responses = append(responses, MapToTupleResponse(t))
	}
	json.NewEncoder(w).Encode(responses)
}

func (h *TupleHandler) SyncTuples(w http.ResponseWriter, r *http.Request) {
	if err := h.syncService.Execute(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
