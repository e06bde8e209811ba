// Package signor talks to the SIGNOR web site: it downloads pathway and
// entity files and parses the protein family and complex lookup tables the
// normalization pipeline needs.
package signor

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

const (
	pathwayListScript     = "getPathwayData.php?list"
	pathwayDownloadScript = "getPathwayData.php?pathway="
	getDataScript         = "getData.php?organism="
	downloadComplexesPage = "download_complexes.php"

	// PathwayListFile is the downloaded tab separated pathway index.
	PathwayListFile = "pathway_list.txt"

	// ProteinFamilyFile maps protein families to their member identifiers.
	ProteinFamilyFile = "SIGNOR_PF.csv"

	// ComplexesFile maps complexes to their member identifiers.
	ComplexesFile = "SIGNOR_complexes.csv"
)

// SpeciesMapping maps NCBI taxonomy ids to the species names used in the
// full network file names.
var SpeciesMapping = map[string]string{
	"9606":  "Human",
	"10090": "Mouse",
	"10116": "Rat",
}

// Downloader fetches SIGNOR data files into a local directory. Files that
// already exist are not downloaded again.
type Downloader struct {
	client    *resty.Client
	signorURL string
	outDir    string
}

func NewDownloader(signorURL, outDir string) *Downloader {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(signorURL, "/")).
		SetTimeout(2 * time.Minute).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second)
	return &Downloader{client: client, signorURL: signorURL, outDir: outDir}
}

func (d *Downloader) PathwayListPath() string {
	return filepath.Join(d.outDir, PathwayListFile)
}

func (d *Downloader) ProteinFamilyPath() string {
	return filepath.Join(d.outDir, ProteinFamilyFile)
}

func (d *Downloader) ComplexesPath() string {
	return filepath.Join(d.outDir, ComplexesFile)
}

// DownloadData fetches the pathway list, the protein family and complex
// entity files, every pathway's relation and description files, and the
// per-species full networks.
func (d *Downloader) DownloadData(ctx context.Context) error {
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := d.downloadPathwayList(ctx); err != nil {
		return err
	}
	if err := d.downloadEntityFile(ctx, "Download protein family data", d.ProteinFamilyPath()); err != nil {
		return err
	}
	if err := d.downloadEntityFile(ctx, "Download complex data", d.ComplexesPath()); err != nil {
		return err
	}

	pathways, err := d.PathwaysMap()
	if err != nil {
		return err
	}
	for id := range pathways {
		relURL := "/" + pathwayDownloadScript + id + "&relations=only"
		if err := d.downloadFile(ctx, relURL, filepath.Join(d.outDir, id+".txt")); err != nil {
			return err
		}
		descURL := "/" + pathwayDownloadScript + id
		if err := d.downloadFile(ctx, descURL, filepath.Join(d.outDir, id+"_desc.txt")); err != nil {
			return err
		}
	}

	for taxID, species := range SpeciesMapping {
		dest := filepath.Join(d.outDir, "full_"+species+".txt")
		if err := d.downloadFile(ctx, "/"+getDataScript+taxID, dest); err != nil {
			return err
		}
	}
	return nil
}

// PathwaysMap reads the downloaded pathway list file into an id to name map.
// Slashes are stripped from ids because they become file names.
func (d *Downloader) PathwaysMap() (map[string]string, error) {
	f, err := os.Open(d.PathwayListPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open pathway list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	pathways := make(map[string]string)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse pathway list: %w", err)
	}
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		pathways[strings.ReplaceAll(record[0], "/", "")] = record[1]
	}
	return pathways, nil
}

// ProteinFamilyMap parses the protein family entity file into a lookup table.
func (d *Downloader) ProteinFamilyMap() (map[string][]string, error) {
	return ParseEntityFile(d.ProteinFamilyPath())
}

// ComplexesMap parses the complexes entity file into a lookup table.
func (d *Downloader) ComplexesMap() (map[string][]string, error) {
	return ParseEntityFile(d.ComplexesPath())
}

func (d *Downloader) downloadPathwayList(ctx context.Context) error {
	log.Info("Downloading pathways list")
	return d.downloadFile(ctx, "/"+pathwayListScript, d.PathwayListPath())
}

// downloadEntityFile posts the download form on the complexes page to fetch
// one of the entity csv files.
func (d *Downloader) downloadEntityFile(ctx context.Context, dataType, destFile string) error {
	log.Info("Downloading " + dataType)
	resp, err := d.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"submit": dataType}).
		Post("/" + downloadComplexesPage)
	if err != nil {
		return fmt.Errorf("entity download failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("got status code of %d from signor", resp.StatusCode())
	}
	if err := os.WriteFile(destFile, resp.Body(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destFile, err)
	}
	return nil
}

func (d *Downloader) downloadFile(ctx context.Context, url, destFile string) error {
	if _, err := os.Stat(destFile); err == nil {
		log.Info(destFile + " exists. Skipping...")
		return nil
	}

	log.Info("Downloading", "url", url, "dest", destFile)
	resp, err := d.client.R().
		SetContext(ctx).
		SetOutput(destFile).
		Get(url)
	if err != nil {
		return fmt.Errorf("download of %s failed: %w", url, err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("got status code of %d from signor", resp.StatusCode())
	}
	return nil
}
