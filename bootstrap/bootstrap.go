package bootstrap

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"TupleDB/internal/application/service"
	"TupleDB/internal/domain"
	"TupleDB/internal/platform/api/zmq"
	"TupleDB/internal/platform/config"
	"TupleDB/internal/platform/repository"
	"TupleDB/internal/platform/repository/pagestore"
	"TupleDB/internal/platform/server"
	"TupleDB/internal/platform/server/handler/health"
	"TupleDB/internal/platform/server/handler/tuple"
	"go.uber.org/dig"
)

func Run() (bool, error) {
	container := dig.New()
	serviceConstructors := []interface{}{
		config.LoadConfig,
		engine,
		tupleRepository,
		service.NewSaveTupleService,
		service.NewGetTupleService,
		service.NewDeleteTupleService,
		service.NewScanTuplesService,
		service.NewSyncService,
		tuple.NewTupleHandler,
		health.NewHealthHandler,
		server.NewServer,
		zmq.NewZmqApi,
	}
	for _, constructor := range serviceConstructors {
		if err := container.Provide(constructor); err != nil {
			return false, err
		}
	}
	err := container.Invoke(func(s server.Server, api *zmq.ZmqApi, e *pagestore.Engine) error {
		go api.Listen()
		closeOnSignal(e, api)
		return s.Run()
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func engine(cfg config.Config) (*pagestore.Engine, error) {
	return pagestore.Open(cfg.DataDirectory, cfg.PageCapacity)
}

func tupleRepository(e *pagestore.Engine) domain.TupleRepository {
	return repository.NewPageStoreTupleRepository(e)
}

// closeOnSignal runs a final sync and releases the data files before the
// process exits; anything not yet synced would still be recovered from the
// WAL on the next start.
func closeOnSignal(e *pagestore.Engine, api *zmq.ZmqApi) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		log.Println("Shutting down...")
		api.Shutdown()
		if err := e.Close(); err != nil {
			log.Println("Error closing engine:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
}
