package main

import (
	"context"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const serviceName string = "aqstat"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)

	err := Execute(ctx)
	cleanup()

	if err != nil {
		logger.Fatal().Err(err).Msg("command failed")
	}
}
