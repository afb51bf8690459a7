package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/internal/pkg/infrastructure/downloader"
)

var downloadCmd = &cobra.Command{
	Use:   "download OUTPUTDIR [IDS]",
	Short: "mirror madavi.de archive files for the given chip ids",
	Long: `Mirror the madavi.de archive files of one or more devices into
OUTPUTDIR/<chipid>/. IDS is a comma separated list of chip ids; when
omitted, the integer-named subdirectories of OUTPUTDIR are refreshed
instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.GetFromContext(ctx)

		baseURL := env.GetVariableOrDefault(logger, "AQSTAT_MADAVI_BASEURL", downloader.DefaultBaseURL)

		outDir := args[0]

		idList := ""
		if len(args) == 2 {
			idList = args[1]
		}

		chipIDs, err := parseIDs(idList, outDir)
		if err != nil {
			return err
		}

		if len(chipIDs) == 0 {
			return fmt.Errorf("no chip ids given and no device directories under %s", outDir)
		}

		return downloader.DownloadDevices(ctx, baseURL, outDir, chipIDs)
	},
}

// parseIDs reads chip ids from a comma separated list, falling back to
// the integer-named subdirectories of dir.
func parseIDs(list, dir string) ([]int, error) {
	if list != "" {
		ids := []int{}
		for _, part := range strings.Split(list, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("failed to parse chip id %s: %s", part, err.Error())
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", dir, err.Error())
	}

	ids := []int{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if id, err := strconv.Atoi(entry.Name()); err == nil {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
