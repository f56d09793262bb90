package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight/internal/app"
	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/logger"
	"github.com/finsight/finsight/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fincli",
		Short:         "Ingest bank statements and manage goal allocations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newUploadCmd(), newAllocateCmd())
	return root
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	log := logger.New().Level(logger.ParseLevel(cfg.LogLevel))
	return app.New(ctx, cfg, log)
}

func newUploadCmd() *cobra.Command {
	var (
		file         string
		password     string
		user         string
		skipGapCheck bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Run the ingestion pipeline over a statement file",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read statement: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			outcome, err := a.Pipeline.Run(ctx, &pipeline.State{
				UserID:       user,
				Filename:     filepath.Base(file),
				Password:     password,
				Content:      content,
				SkipGapCheck: skipGapCheck,
			})
			if err != nil {
				return err
			}

			switch outcome.Status {
			case pipeline.StatusOK:
				fmt.Printf("stored %d transaction(s), %d failed, months: %v\n",
					outcome.StoredCount, outcome.FailedCount, outcome.MonthsDetected)
			case pipeline.StatusRejected:
				fmt.Printf("upload rejected: %s\n", outcome.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "statement file to ingest")
	cmd.Flags().StringVar(&password, "password", "", "document password, if protected")
	cmd.Flags().StringVar(&user, "user", "local", "user ID to ingest under")
	cmd.Flags().BoolVar(&skipGapCheck, "skip-continuity", false, "accept uploads that leave month gaps")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAllocateCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Recompute goal contributions from all stored transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Allocator.AllocateAll(ctx, user); err != nil {
				return err
			}
			fmt.Println("allocation complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "user ID to allocate for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
