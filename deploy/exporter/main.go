// Command exporter is a sidecar that publishes per-project run metrics from
// the sandbox to Prometheus. The supervisor itself only exposes live loop
// gauges; this reads the durable metrics.jsonl files so dashboards keep
// history across supervisor restarts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/analytics"
	"github.com/ai-supervisor-foundry/foundry/internal/adapter/sandbox"
)

var (
	tasksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foundry_project_tasks_total",
			Help: "Retired tasks per project and outcome",
		},
		[]string{"project", "outcome"},
	)
	attemptsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foundry_project_attempts_total",
			Help: "Provider attempts spent per project",
		},
		[]string{"project"},
	)
	tokensTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foundry_project_tokens_total",
			Help: "Tokens spent per project and direction",
		},
		[]string{"project", "direction"},
	)
	workSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "foundry_project_work_seconds",
			Help: "Wall-clock seconds spent on retired tasks per project",
		},
		[]string{"project"},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal, attemptsTotal, tokensTotal, workSeconds)
}

func collectMetrics(box *sandbox.Sandbox) {
	entries, err := os.ReadDir(box.Root())
	if err != nil {
		log.Printf("Error reading sandbox root %s: %v", box.Root(), err)
		return
	}

	// Reset so projects whose files were removed drop out of the scrape.
	tasksTotal.Reset()
	attemptsTotal.Reset()
	tokensTotal.Reset()
	workSeconds.Reset()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		project := entry.Name()
		path, err := box.MetricsPath(project)
		if err != nil {
			continue
		}
		sum, err := analytics.NewFileSink(path).Summary(context.Background())
		if err != nil {
			log.Printf("Error summarizing project %s: %v", project, err)
			continue
		}

		tasksTotal.WithLabelValues(project, "completed").Set(float64(sum.TasksCompleted))
		tasksTotal.WithLabelValues(project, "blocked").Set(float64(sum.TasksBlocked))
		attemptsTotal.WithLabelValues(project).Set(float64(sum.TotalAttempts))
		tokensTotal.WithLabelValues(project, "input").Set(float64(sum.InputTokens))
		tokensTotal.WithLabelValues(project, "output").Set(float64(sum.OutputTokens))
		workSeconds.WithLabelValues(project).Set(sum.TotalSeconds)
	}
}

func main() {
	root := flag.String("sandbox-root", "./sandbox", "sandbox directory holding per-project metrics files")
	addr := flag.String("addr", ":8000", "listen address for /metrics")
	flag.Parse()

	box, err := sandbox.New(*root)
	if err != nil {
		log.Fatalf("sandbox root: %v", err)
	}

	go func() {
		for {
			collectMetrics(box)
			time.Sleep(15 * time.Second)
		}
	}()

	http.Handle("/metrics", promhttp.Handler())
	fmt.Printf("Starting foundry run exporter on %s (root %s)\n", *addr, box.Root())
	log.Fatal(http.ListenAndServe(*addr, nil))
}
