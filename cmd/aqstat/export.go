package main

import (
	"errors"
	"fmt"

	"github.com/diwise/context-broker/pkg/ngsild/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/fiware"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/lwm2m"
)

var exportTarget string

var exportCmd = &cobra.Command{
	Use:   "export INPUTDIR",
	Short: "publish the latest calibrated observations to a fiware or lwm2m endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.GetFromContext(ctx)

		records, err := collectRecords(ctx, args[0])
		if err != nil {
			return err
		}

		for _, record := range records {
			record.Calibrate(aqdata.SDS011Calibration)
		}

		switch exportTarget {
		case "fiware":
			contextBrokerURL := env.GetVariableOrDie(logger, "CONTEXT_BROKER_URL", "context broker url")
			cbClient := client.NewContextBrokerClient(contextBrokerURL)

			var errs []error
			for _, record := range records {
				if err := fiware.CreateOrUpdateAirQualityObserved(ctx, cbClient, record); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)

		case "lwm2m":
			endpoint := env.GetVariableOrDie(logger, "AQSTAT_LWM2M_ENDPOINT", "lwm2m endpoint url")

			var errs []error
			for _, record := range records {
				if err := lwm2m.CreateAndSendAsLWM2M(ctx, record, endpoint, lwm2m.Send); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)

		default:
			return fmt.Errorf("unknown export target %s", exportTarget)
		}
	},
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportTarget, "target", "fiware", "export target, fiware or lwm2m")
}
