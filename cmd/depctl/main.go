package main

import (
	"errors"
	"os"
	"time"

	"github.com/Simply-Mac/go-dep/internal/depctl"
	"github.com/Simply-Mac/go-dep/internal/logger"
	"github.com/Simply-Mac/go-dep/internal/program"
)

func main() {
	log := logger.Setup("info", os.Stderr)
	defer logger.CapturePanic(log)

	ctx, cancel := program.MainContext(5 * time.Second)
	defer cancel()

	err := depctl.New(os.Stdout).RunContext(ctx, os.Args)
	if errors.Is(err, depctl.ErrRemoteErrors) {
		cancel()
		os.Exit(2)
	}
	if err != nil {
		cancel()
		log.WithError(err).Fatal("depctl failed")
	}
}
