package zmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"TupleDB/internal/application/service"
	"TupleDB/internal/platform/config"
	"github.com/go-zeromq/zmq4"
)

// ZmqApi serves the same operations as the HTTP layer over a REP socket,
// for clients that want a lighter request/reply path.
type ZmqApi struct {
	socket   zmq4.Socket
	config   config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc
}

type Services struct {
	get    *service.GetTupleService
	save   *service.SaveTupleService
	delete *service.DeleteTupleService
	sync   *service.SyncService
}

const (
	SAVE   = "SAVE"
	GET    = "GET"
	DELETE = "DELETE"
	SYNC   = "SYNC"
)

func NewZmqApi(get *service.GetTupleService, save *service.SaveTupleService,
	delete *service.DeleteTupleService, sync *service.SyncService, conf config.Config) *ZmqApi {

	ctx, cancel := context.WithCancel(context.Background())
	return &ZmqApi{
		socket: zmq4.NewRep(ctx),
		config: conf,
		services: &Services{
			get:    get,
			save:   save,
			delete: delete,
			sync:   sync,
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (z *ZmqApi) Listen() {
	address := fmt.Sprintf("tcp://*:%d", z.config.ZmqApiPort)
	if err := z.socket.Listen(address); err != nil {
		log.Printf("Error binding zmq socket: %v", err)
		return
	}
	log.Printf("ZMQ API listening on %s", address)

	for {
		select {
		case <-z.ctx.Done():
			return
		default:
			msg, err := z.socket.Recv()
			if err != nil {
				if errors.Is(err, zmq4.ErrClosedConn) {
					return
				}
				log.Printf("zmq recv error: %v", err)
				continue
			}

			var req ApiRequest
			if err := json.Unmarshal(msg.Bytes(), &req); err != nil {
				log.Printf("zmq unmarshal error: %v", err)
				z.send(ApiResponse{Success: false, Error: "invalid request"})
				continue
			}
			z.send(z.processRequest(&req))
		}
	}
}

func (z *ZmqApi) processRequest(req *ApiRequest) ApiResponse {
	switch req.Action {
	case GET:
		result := z.services.get.Execute(service.GetTupleQuery{ID: req.ID})
		if !result.Found {
			return ApiResponse{Success: false, Error: "not found"}
		}
		return ApiResponse{
			Success: true,
			Tuple:   TupleResponse{ID: result.Tuple.ID, Value: result.Tuple.Value},
		}
	case SAVE:
		result, err := z.services.save.Execute(service.SaveTupleCommand{ID: req.ID, Value: req.Value})
		if err != nil {
			return ApiResponse{Success: false, Error: err.Error()}
		}
		return ApiResponse{
			Success: true,
			Tuple:   TupleResponse{ID: result.Tuple.ID, Value: result.Tuple.Value},
		}
	case DELETE:
		result, err := z.services.delete.Execute(service.DeleteTupleCommand{ID: req.ID})
		if err != nil {
			return ApiResponse{Success: false, Error: err.Error()}
		}
		if !result.Found {
			return ApiResponse{Success: false, Error: "not found"}
		}
		return ApiResponse{Success: true, Tuple: TupleResponse{ID: req.ID}}
	case SYNC:
		if err := z.services.sync.Execute(); err != nil {
			return ApiResponse{Success: false, Error: err.Error()}
		}
		return ApiResponse{Success: true}
	default:
		return ApiResponse{Success: false, Error: "unknown action"}
	}
}

func (z *ZmqApi) send(resp ApiResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("zmq marshal error: %v", err)
		data = []byte(`{"success":false}`)
	}
	if err := z.socket.Send(zmq4.NewMsg(data)); err != nil {
		log.Printf("zmq send error: %v", err)
	}
}

func (z *ZmqApi) Shutdown() {
	z.cancel()
	z.socket.Close()
}
