//go:build sdl

package main

import (
	"github.com/user/framestep/pkg/adapters/sdlsink"
	"github.com/user/framestep/pkg/ports"
)

func init() {
	runMain = sdlsink.Main
	windowSinks["sdl"] = func(env sinkEnv) (ports.RenderSink, error) {
		return sdlsink.New("framestep - "+env.title, env.images)
	}
}
