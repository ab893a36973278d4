package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/wrsn/core/model"
	"github.com/kilianp07/wrsn/core/scheduler"
)

// report is the JSON document written for a run.
type report struct {
	*scheduler.Run
	EffectiveRatio   float64 `json:"effective_ratio"`
	IneffectiveRatio float64 `json:"ineffective_ratio"`
	AverageChargePct float64 `json:"average_charge_pct"`
	FailureCount     int     `json:"failure_count"`
}

// WriteJSON writes the run and its derived ratios to w.
func WriteJSON(w io.Writer, run *scheduler.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report{
		Run:              run,
		EffectiveRatio:   run.EffectiveRatio(),
		IneffectiveRatio: run.IneffectiveRatio(),
		AverageChargePct: run.AverageChargePct(),
		FailureCount:     run.FailureCount(),
	})
}

// WriteFailuresCSV writes one row per failure, in the order they occurred.
func WriteFailuresCSV(w io.Writer, run *scheduler.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"peripheral", "at_ms", "cycle"}); err != nil {
		return err
	}
	for _, f := range run.Failures {
		rec := []string{
			strconv.Itoa(int(f.Peripheral)),
			strconv.FormatInt(f.At.Milliseconds(), 10),
			strconv.Itoa(f.Cycle),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatesCSV writes a peripheral snapshot, one row per peripheral.
func WriteStatesCSV(w io.Writer, states []model.PeripheralState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"peripheral", "x", "y", "cluster", "capacity", "charge", "failed"}); err != nil {
		return err
	}
	for _, s := range states {
		rec := []string{
			strconv.Itoa(int(s.ID)),
			strconv.Itoa(s.Location.X),
			strconv.Itoa(s.Location.Y),
			strconv.Itoa(int(s.Cluster)),
			strconv.FormatFloat(s.Capacity, 'f', -1, 64),
			strconv.FormatFloat(s.Charge, 'f', -1, 64),
			strconv.FormatBool(s.Failed),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile picks the format from the extension of path. A .csv path
// receives the final states, with failures and the checkpoint written next
// to it as <name>_failures.csv and <name>_checkpoint.csv.
func WriteFile(path string, run *scheduler.Run) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return writeTo(path, func(w io.Writer) error { return WriteJSON(w, run) })
	case ".csv":
		base := strings.TrimSuffix(path, filepath.Ext(path))
		if err := writeTo(path, func(w io.Writer) error { return WriteStatesCSV(w, run.Final) }); err != nil {
			return err
		}
		if err := writeTo(base+"_failures.csv", func(w io.Writer) error { return WriteFailuresCSV(w, run) }); err != nil {
			return err
		}
		if run.Checkpoint == nil {
			return nil
		}
		return writeTo(base+"_checkpoint.csv", func(w io.Writer) error { return WriteStatesCSV(w, run.Checkpoint) })
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

func writeTo(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
