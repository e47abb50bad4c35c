// Stress command: exercises a table under concurrent load while the
// collector reclaims dropped keys, then records the run.
package main

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mesh-intelligence/tether/internal/benchstore"
	"github.com/mesh-intelligence/tether/pkg/tether"
	"github.com/spf13/cobra"
)

// Stress scenarios.
const (
	// scenarioMixed interleaves add, lookup, get-or-add and remove, holding
	// a rotating window of keys live so entries expire mid-run.
	scenarioMixed = "mixed"

	// scenarioChurn inserts and immediately drops every key, leaving all
	// reclamation to the scavenge pass.
	scenarioChurn = "churn"
)

// Stress flag values; config.yaml supplies defaults for unset flags.
var (
	stressGoroutines int
	stressOps        int64
	stressScenario   string
	stressRecord     bool
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Exercise a table under concurrent load and record the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := executeStress(stressScenario, stressGoroutines, stressOps)
		if err != nil {
			return err
		}

		fmt.Printf("scenario=%s goroutines=%d ops=%d failures=%d duration=%s\n",
			run.Scenario, run.Goroutines, run.Ops, run.Failures, run.Duration)

		if run.Failures > 0 {
			return fmt.Errorf("stress run observed %d failed operations", run.Failures)
		}
		if !stressRecord {
			return nil
		}

		path, err := resolveResultsDB()
		if err != nil {
			return err
		}
		store, err := benchstore.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := store.Record(run)
		if err != nil {
			return err
		}
		fmt.Printf("recorded run %s\n", id)
		return nil
	},
}

func init() {
	stressCmd.Flags().IntVar(&stressGoroutines, "goroutines", defaultGoroutines, "concurrent workers")
	stressCmd.Flags().Int64Var(&stressOps, "ops", defaultOps, "total table operations to perform")
	stressCmd.Flags().StringVar(&stressScenario, "scenario", defaultScenario, "op mix: mixed or churn")
	stressCmd.Flags().BoolVar(&stressRecord, "record", true, "record the run in the results database")
}

// stressKey carries a pointer-bearing field so dropped keys are individually
// collectable.
type stressKey struct {
	tag string
}

type payload struct {
	seq int64
}

// executeStress runs the named scenario and returns the run summary. A
// background loop forces collections so expiry and scavenging happen while
// the workers are still mutating the table.
func executeStress(scenario string, goroutines int, ops int64) (*benchstore.Run, error) {
	switch scenario {
	case scenarioMixed, scenarioChurn:
	default:
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}
	if goroutines < 1 {
		return nil, fmt.Errorf("goroutines must be positive, got %d", goroutines)
	}
	if ops < 1 {
		return nil, fmt.Errorf("ops must be positive, got %d", ops)
	}

	tbl := tether.New[stressKey, *payload]()
	defer tbl.Close()

	perWorker := ops / int64(goroutines)
	if perWorker == 0 {
		perWorker = 1
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				runtime.GC()
			}
		}
	}()

	var performed, failures atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch scenario {
			case scenarioMixed:
				mixedWorker(tbl, perWorker, &performed, &failures)
			case scenarioChurn:
				churnWorker(tbl, perWorker, &performed, &failures)
			}
		}()
	}
	wg.Wait()
	close(done)

	return &benchstore.Run{
		Scenario:   scenario,
		Goroutines: goroutines,
		Ops:        performed.Load(),
		Failures:   failures.Load(),
		Duration:   time.Since(start),
	}, nil
}

func mixedWorker(tbl *tether.Table[stressKey, *payload], ops int64, performed, failures *atomic.Int64) {
	held := make([]*stressKey, 0, 64)
	var seq, local int64
	for local < ops {
		seq++
		k := &stressKey{tag: "mixed"}

		if err := tbl.Add(k, &payload{seq: seq}); err != nil {
			failures.Add(1)
		}
		local++

		if _, _, err := tbl.TryGet(k); err != nil {
			failures.Add(1)
		}
		local++

		switch {
		case seq%2 == 0:
			if _, err := tbl.Remove(k); err != nil {
				failures.Add(1)
			}
			local++
		case seq%3 == 0:
			// Keep a rotating window live; evicted keys expire at the
			// next collection.
			held = append(held, k)
			if len(held) > 64 {
				held = held[1:]
			}
		}

		if seq%5 == 0 {
			_, err := tbl.GetOrAdd(&stressKey{tag: "factory"}, func(*stressKey) *payload {
				return &payload{seq: -seq}
			})
			if err != nil {
				failures.Add(1)
			}
			local++
		}
	}
	performed.Add(local)
}

func churnWorker(tbl *tether.Table[stressKey, *payload], ops int64, performed, failures *atomic.Int64) {
	var seq, local int64
	for local < ops {
		seq++
		if err := tbl.Add(&stressKey{tag: "churn"}, &payload{seq: seq}); err != nil {
			failures.Add(1)
		}
		local++
	}
	performed.Add(local)
}
