package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/internal/pkg/infrastructure/sensorfiles"
)

var convertCmd = &cobra.Command{
	Use:   "convert CSVFILE [OUTPUTDIR]",
	Short: "derive a metadata skeleton from a sensor.community csv file",
	Long: `Derive a device metadata json file from a raw sensor.community csv
file, guessing the companion sensor ids from the usual registration
order. The result is written next to CSVFILE unless OUTPUTDIR is given,
and is meant to be completed by hand afterwards.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		metadata, err := sensorfiles.ConvertToMetadata(args[0])
		if err != nil {
			return err
		}

		outDir := filepath.Dir(args[0])
		if len(args) == 2 {
			outDir = args[1]
		}

		ids := metadata.SensorIDs()
		if len(ids) == 0 {
			return fmt.Errorf("no sensor ids found in %s", args[0])
		}

		outPath := filepath.Join(outDir, fmt.Sprintf("sensor-%d%s", ids[0], sensorfiles.MetadataExt))
		if err := sensorfiles.SaveMetadata(outPath, metadata); err != nil {
			return err
		}

		fmt.Println(outPath)

		return nil
	},
}
