// Command dynpool-demo feeds a resizable pool with randomly generated
// events and prints colored per-priority output. It also runs a small
// sample autoscaler that watches the pool's queue depth and adjusts
// the worker count, standing in for the external controller the
// library itself does not provide.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Andrej220/go-utils/dynpool"
)

var (
	flagWorkers    int
	flagMinWorkers int
	flagMaxWorkers int
	flagEvents     int
	flagRate       time.Duration
	flagAutoscale  bool
	flagFailPct    int
)

var (
	styleHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleNormal = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

func priorityStyle(prio int) (lipgloss.Style, string) {
	switch prio {
	case 0:
		return styleHigh, "high"
	case 1:
		return styleNormal, "normal"
	default:
		return styleLow, "low"
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dynpool-demo",
		Short: "generate random prioritized events and run them on a resizable pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	cmd.Flags().IntVar(&flagWorkers, "workers", 2, "initial worker count")
	cmd.Flags().IntVar(&flagMinWorkers, "min-workers", 1, "autoscaler lower bound")
	cmd.Flags().IntVar(&flagMaxWorkers, "max-workers", 8, "autoscaler upper bound")
	cmd.Flags().IntVar(&flagEvents, "events", 50, "number of events to generate")
	cmd.Flags().DurationVar(&flagRate, "rate", 20*time.Millisecond, "delay between generated events")
	cmd.Flags().BoolVar(&flagAutoscale, "autoscale", true, "adjust worker count from queue depth")
	cmd.Flags().IntVar(&flagFailPct, "fail-pct", 10, "percentage of events that fail")
	return cmd
}

func run() error {
	metrics := &dynpool.AtomicMetrics{}

	var faults atomic.Int64
	pool, err := dynpool.New[int](flagWorkers, dynpool.Options{
		Metrics: metrics,
		OnTaskError: func(err error) {
			faults.Add(1)
			fmt.Println(styleErr.Render("fault: " + err.Error()))
		},
	})
	if err != nil {
		return err
	}

	stopScaler := make(chan struct{})
	if flagAutoscale {
		go autoscale(pool, stopScaler)
	}

	handles := make([]*dynpool.Handle, 0, flagEvents)
	for i := 0; i < flagEvents; i++ {
		id := i
		prio := rand.Intn(3)
		style, name := priorityStyle(prio)
		work := time.Duration(10+rand.Intn(120)) * time.Millisecond
		fail := rand.Intn(100) < flagFailPct

		h, err := pool.Submit(func() error {
			time.Sleep(work)
			if fail {
				return fmt.Errorf("event %d: simulated failure", id)
			}
			fmt.Println(style.Render(fmt.Sprintf("event %3d  prio=%-6s  took=%s", id, name, work)))
			return nil
		}, prio)
		if err != nil {
			return err
		}
		handles = append(handles, h)
		time.Sleep(flagRate)
	}

	// Joint error is already reported per event; only the join matters here.
	_ = dynpool.WaitAll(handles...)

	close(stopScaler)
	if err := pool.Dispose(); err != nil {
		return err
	}

	fmt.Println(styleInfo.Render(fmt.Sprintf(
		"done: executed=%d failed=%d reported=%d",
		metrics.Executed(), metrics.Failed(), faults.Load(),
	)))
	return nil
}

// autoscale samples the pool and resizes it toward the queue depth.
// The policy is deliberately naive; it only demonstrates the
// introspection surface.
func autoscale(pool *dynpool.Pool[int], stop <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			st := pool.Stats()
			target := st.QueueLength/2 + flagMinWorkers
			if target > flagMaxWorkers {
				target = flagMaxWorkers
			}
			if target == st.Workers {
				continue
			}
			if err := pool.SetWorkerCount(target); err != nil {
				return
			}
			fmt.Println(styleInfo.Render(fmt.Sprintf(
				"scale: workers %d -> %d (queued=%d active=%d)",
				st.Workers, target, st.QueueLength, st.ActiveWorkers,
			)))
		}
	}
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
