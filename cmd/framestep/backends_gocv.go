//go:build gocv

package main

import (
	"github.com/user/framestep/pkg/adapters/cvsource"
	"github.com/user/framestep/pkg/config"
	"github.com/user/framestep/pkg/ports"
)

func init() {
	sourceFactories["opencv"] = func(cfg config.Config, log ports.Logger) (ports.FrameSource, error) {
		return cvsource.New(cvsource.Options{ReopenPerSeek: cfg.ReopenPerSeek}, log), nil
	}
}
