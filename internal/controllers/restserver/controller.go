// Package restserver exposes the collector's most recent readings and
// health over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/misol-tools/misolweather/internal/log"
	"github.com/misol-tools/misolweather/internal/types"
	"github.com/misol-tools/misolweather/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	readings   <-chan types.Reading
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc *config.RESTServerData, readings <-chan types.Reading, logger *zap.SugaredLogger) (*Controller, error) {
	if rc == nil {
		return nil, fmt.Errorf("rest controller configured without a rest section")
	}
	if rc.Port == 0 {
		return nil, fmt.Errorf("rest controller requires a port")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: *rc,
		readings:   readings,
		logger:     logger,
		handlers:   NewHandlers(),
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")

	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	// Feed the latest-reading cache from the distributor
	go func() {
		defer c.wg.Done()
		for {
			select {
			case r := <-c.readings:
				c.handlers.SetLatest(r)
			case <-c.ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/latest", c.handlers.GetLatest)
	router.HandleFunc("/healthz", c.handlers.GetHealth)
	router.Handle("/metrics", promhttp.Handler())

	return router
}
