package anneal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

const traceHeader = "# epoch step trial temperature error\n"

// writeTrace writes records to dir/<prefix>_<timestamp>, one line per
// trial, and returns the file path.
func writeTrace(dir, prefix string, records []models.TrialRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, prefix+"_"+utils.TimestampSuffix(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(traceHeader); err != nil {
		return "", err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%d %d %d %.6f %.8f\n", r.Epoch, r.Step, r.Trial, r.Temperature, r.Energy); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write trace file: %w", err)
	}
	return path, f.Close()
}
