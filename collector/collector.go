// Package collector records per-episode training metrics: an xlsx workbook
// for spreadsheet analysis and an HTML chart of the training curve. It is a
// pure sink; the simulation never depends on it.
package collector

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	statsSheet = "Episode_Stats"

	// The workbook is flushed to disk every saveInterval episodes, and again
	// when the collector closes.
	saveInterval = 10
)

// EpisodeStats summarizes one completed episode.
type EpisodeStats struct {
	Episode           int
	Steps             int
	TreesRemaining    int
	FiresActive       int
	TotalExtinguished int
	QTableSize        int
}

// Collector accumulates episode stats and writes them to a timestamped xlsx
// workbook under the report directory. Not safe for concurrent use; it is
// driven by a single recording loop.
type Collector struct {
	filename string
	file     *excelize.File
	episodes []EpisodeStats
	row      int
}

// NewCollector creates the workbook with a header row. The report directory
// must exist.
func NewCollector(reportDir string) (*Collector, error) {
	baseFilename := fmt.Sprintf("training_%s.xlsx", time.Now().Format("20060102_150405"))

	f := excelize.NewFile()
	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headers := []string{
		"Episode", "Steps", "Trees Remaining", "Fires Active",
		"Total Extinguished", "Q-Table Size",
	}
	if err := f.SetSheetRow(statsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write headers: %w", err)
	}

	return &Collector{
		filename: filepath.Join(reportDir, baseFilename),
		file:     f,
		row:      2,
	}, nil
}

// Record appends one episode's stats, periodically flushing the workbook so a
// long run leaves usable output even if interrupted.
func (c *Collector) Record(stats EpisodeStats) error {
	c.episodes = append(c.episodes, stats)

	cell := fmt.Sprintf("A%d", c.row)
	row := []interface{}{
		stats.Episode, stats.Steps, stats.TreesRemaining,
		stats.FiresActive, stats.TotalExtinguished, stats.QTableSize,
	}
	if err := c.file.SetSheetRow(statsSheet, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	c.row++

	if len(c.episodes)%saveInterval == 0 {
		return c.save()
	}
	return nil
}

func (c *Collector) save() error {
	if err := c.file.SaveAs(c.filename); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Close flushes the workbook and renders the training chart next to it.
func (c *Collector) Close() error {
	defer func() {
		if err := c.file.Close(); err != nil {
			log.Println("close workbook:", err)
		}
	}()

	if len(c.episodes) == 0 {
		return nil
	}
	if err := c.save(); err != nil {
		return err
	}

	chartPath := filepath.Join(filepath.Dir(c.filename), "training.html")
	return WriteChart(c.episodes, chartPath)
}
