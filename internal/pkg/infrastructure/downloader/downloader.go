// Package downloader mirrors the per-device archive files published by
// madavi.de: monthly zip bundles plus daily csv files for the running
// month.
package downloader

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const DefaultBaseURL = "https://www.madavi.de/sensor"

var tracer = otel.Tracer("aqstat/downloader")

// listingPattern matches the relative archive paths linked from a
// device's csvfiles.php listing page.
var listingPattern = regexp.MustCompile(`href='(data_csv/.*?/data-esp8266-[0-9]{0,12}-[0-9-]{7,10}\.(?:zip|csv))'`)

// DownloadDevices mirrors every listed device, continuing past
// individual failures.
func DownloadDevices(ctx context.Context, baseURL, outDir string, chipIDs []int) error {
	var errs []error
	for _, chipID := range chipIDs {
		if err := DownloadDevice(ctx, baseURL, outDir, chipID); err != nil {
			errs = append(errs, fmt.Errorf("failed to download device %d: %s", chipID, err.Error()))
		}
	}
	return errors.Join(errs...)
}

// DownloadDevice mirrors the archive files of one device into
// outDir/<chipID>. Files whose local size equals the server's
// Content-Length are skipped; zip bundles are unpacked next to
// themselves so the collator only ever sees csv files.
func DownloadDevice(ctx context.Context, baseURL, outDir string, chipID int) error {
	var err error

	ctx, span := tracer.Start(ctx, "download-device")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With().Int("chip_id", chipID).Logger()

	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	var relPaths []string
	relPaths, err = fetchListing(ctx, &httpClient, baseURL, chipID)
	if err != nil {
		return err
	}

	deviceDir := filepath.Join(outDir, strconv.Itoa(chipID))
	if err = os.MkdirAll(deviceDir, 0755); err != nil {
		err = fmt.Errorf("failed to create %s: %s", deviceDir, err.Error())
		return err
	}

	var errs []error
	for _, rel := range relPaths {
		if dlErr := downloadFile(ctx, &httpClient, logger, baseURL, rel, deviceDir); dlErr != nil {
			errs = append(errs, dlErr)
		}
	}

	err = errors.Join(errs...)
	return err
}

func fetchListing(ctx context.Context, httpClient *http.Client, baseURL string, chipID int) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/csvfiles.php?sensor=esp8266-%d", baseURL, chipID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s", err.Error())
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve file listing: %s", err.Error())
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed, expected status code %d, got %d", http.StatusOK, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body as bytes: %s", err.Error())
	}

	matches := listingPattern.FindAllStringSubmatch(string(body), -1)
	relPaths := make([]string, 0, len(matches))
	for _, m := range matches {
		relPaths = append(relPaths, m[1])
	}

	return relPaths, nil
}

func downloadFile(ctx context.Context, httpClient *http.Client, logger zerolog.Logger, baseURL, rel, deviceDir string) error {
	name := path.Base(rel)
	local := filepath.Join(deviceDir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/"+rel, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %s", err.Error())
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to retrieve %s: %s", name, err.Error())
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed, expected status code %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if info, statErr := os.Stat(local); statErr == nil && resp.ContentLength >= 0 && info.Size() == resp.ContentLength {
		logger.Debug().Str("file", name).Msg("size unchanged, skipping")
		return nil
	}

	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("failed to create %s: %s", local, err.Error())
	}

	_, err = io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to download %s: %s", name, err.Error())
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %s", name, closeErr.Error())
	}

	logger.Info().Str("file", name).Msg("downloaded")

	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return unpackZip(local, deviceDir)
	}

	return nil
}

// unpackZip extracts the daily csv files bundled in a monthly archive.
// Entry paths are flattened to their base names.
func unpackZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %s", filepath.Base(zipPath), err.Error())
	}
	defer r.Close()

	for _, file := range r.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if err := extractOne(file, destDir); err != nil {
			return err
		}
	}

	return nil
}

func extractOne(file *zip.File, destDir string) error {
	name := filepath.Base(file.Name)

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %s", name, err.Error())
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %s", name, err.Error())
	}

	_, err = io.Copy(dst, src)
	closeErr := dst.Close()
	if err != nil {
		return fmt.Errorf("failed to extract %s: %s", name, err.Error())
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %s", name, closeErr.Error())
	}

	return nil
}
