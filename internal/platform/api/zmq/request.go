package zmq

type ApiRequest struct {
	Action string `json:"action,omitempty"`
	ID     uint32 `json:"id,omitempty"`
	Value  uint32 `json:"value,omitempty"`
}

type ApiResponse struct {
	Tuple   TupleResponse `json:"tuple"`
	Success bool          `json:"success,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type TupleResponse struct {
	ID    uint32 `json:"id,omitempty"`
	Value uint32 `json:"value,omitempty"`
}
