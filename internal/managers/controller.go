package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/misol-tools/misolweather/internal/controllers/restserver"
	"github.com/misol-tools/misolweather/pkg/config"
	"go.uber.org/zap"
)

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerManager creates and starts the configured controllers
type ControllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, sm *StorageManager, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cm := &ControllerManager{
		ctx:    ctx,
		wg:     wg,
		logger: logger,
	}

	controllers, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("could not load controller configuration: %v", err)
	}

	for _, cc := range controllers {
		controller, err := cm.createController(cc, sm)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

func (c *ControllerManager) StartControllers() error {
	for _, controller := range c.controllers {
		if err := controller.StartController(); err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *ControllerManager) createController(cc config.ControllerData, sm *StorageManager) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		return restserver.NewController(cm.ctx, cm.wg, cc.RESTServer, sm.Subscribe(), cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
