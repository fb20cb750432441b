package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-copilot/internal/llm"
	"github.com/jonathan/job-copilot/internal/queue"
	"github.com/jonathan/job-copilot/internal/server"
	"github.com/jonathan/job-copilot/internal/workflow"
)

var (
	servePort    int
	serveWorkers int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for job application analysis, including the batch queue workers.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 4, "Number of batch queue workers")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	gateway := llm.NewGateway()
	if err := gateway.Configure(ctx, llm.ConfigFromEnv()); err != nil {
		// The gateway retries configuration lazily on first use, so a
		// missing key at startup degrades health instead of refusing to
		// boot.
		log.Printf("Warning: model client not configured: %v", err)
	}
	defer func() { _ = gateway.Close() }()

	graph := workflow.New(gateway)

	qcfg := queue.DefaultConfig()
	qcfg.Concurrency = serveWorkers
	q := queue.New(graph, qcfg)
	q.Start(ctx)
	defer q.Stop()

	srv := server.New(server.Config{Port: servePort}, gateway, graph, q)
	return srv.Start()
}
