package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/agbru/fibdev/internal/device"
	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
	"github.com/agbru/fibdev/internal/logging"
	"github.com/agbru/fibdev/internal/session"
)

// SweepConfig drives a timing sweep.
type SweepConfig struct {
	// MaxIndex is the last index swept; the sweep covers 0..MaxIndex.
	MaxIndex int64
	// Runs is the number of reads per index; the fastest one is reported.
	Runs int
	// Verify compares each read against the exact modular result.
	Verify bool
	// Observer receives the device lifecycle events (metrics).
	Observer session.Observer
	// Logger receives mismatches and progress.
	Logger logging.Logger
}

// SweepJob names an engine for a sweep. Name is the short registry name
// used in file names and logs.
type SweepJob struct {
	Name   string
	Engine fibonacci.Engine
}

// SweepResult summarizes one engine's sweep.
type SweepResult struct {
	Engine     string
	Points     int
	Mismatches int
}

// Progress is called after each index with the completed fraction.
type Progress func(done float64)

var modulus128 = new(big.Int).Lsh(big.NewInt(1), 128)

// Sweep opens a device running job.Engine, reads every index from 0 to MaxIndex
// through a single session and writes one "<index> <ns>" line per index to
// w, the minimum of Runs reads. The format is the two-column,
// space-separated layout plotting scripts consume.
func Sweep(ctx context.Context, job SweepJob, cfg SweepConfig, w io.Writer, progress Progress) (SweepResult, error) {
	res := SweepResult{Engine: job.Name}
	if cfg.Runs < 1 {
		return res, apperrors.ValidationError{Field: "runs", Message: "must be >= 1"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	opts := []session.Option{
		session.WithEngine(job.Engine),
		session.WithMaxIndex(cfg.MaxIndex),
		session.WithName("sweep-" + job.Name),
	}
	if cfg.Observer != nil {
		opts = append(opts, session.WithObserver(cfg.Observer))
	}
	f, err := device.NewNode(session.NewDevice(opts...)).Open()
	if err != nil {
		return res, err
	}
	defer f.Close()

	buf := make([]byte, device.BufferSize)
	limit := f.MaxIndex()
	for i := int64(0); i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := f.Seek(i, io.SeekStart); err != nil {
			return res, err
		}

		var best int64 = -1
		var digits string
		for range cfg.Runs {
			n, err := f.Read(buf)
			if err != nil {
				return res, err
			}
			d, _ := f.LastComputeDuration()
			if best < 0 || d.Nanoseconds() < best {
				best = d.Nanoseconds()
			}
			digits = string(buf[:n])
		}

		if cfg.Verify {
			want, err := fibonacci.ExactMod(uint64(i), modulus128)
			if err != nil {
				return res, err
			}
			if digits != want.String() {
				res.Mismatches++
				logger.Error("sweep mismatch", nil,
					logging.String("engine", job.Name),
					logging.Int64("index", i),
					logging.String("got", digits),
					logging.String("want", want.String()))
			}
		}

		if _, err := fmt.Fprintf(w, "%d %d\n", i, best); err != nil {
			return res, apperrors.WrapError(err, "write sweep output")
		}
		res.Points++
		if progress != nil {
			progress(float64(i+1) / float64(limit+1))
		}
	}
	return res, nil
}

// SweepAll runs each job in turn, asking open for the writer of each, while
// a spinner on status shows the combined progress. It stops at the first
// error.
func SweepAll(ctx context.Context, jobs []SweepJob, cfg SweepConfig, open func(name string) (io.WriteCloser, error), status io.Writer) ([]SweepResult, error) {
	state := NewProgressState(len(jobs))
	sp := newSpinner(status)
	sp.Start()
	defer sp.Stop()

	results := make([]SweepResult, 0, len(jobs))
	for idx, job := range jobs {
		w, err := open(job.Name)
		if err != nil {
			return results, err
		}
		res, err := Sweep(ctx, job, cfg, w, func(done float64) {
			state.Update(idx, done)
			sp.UpdateSuffix(FormatProgress(job.Name, state.CalculateAverage()))
		})
		if cerr := w.Close(); err == nil && cerr != nil {
			err = apperrors.WrapError(cerr, "close sweep output")
		}
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// DisplaySweepSummary prints one line per engine.
func DisplaySweepSummary(out io.Writer, results []SweepResult, verified bool) {
	for _, r := range results {
		status := ""
		if verified {
			status = paintOK(" verified")
			if r.Mismatches > 0 {
				status = paintErr(fmt.Sprintf(" %d mismatches", r.Mismatches))
			}
		}
		fmt.Fprintf(out, "%-10s %d points%s\n", r.Engine, r.Points, status)
	}
}
