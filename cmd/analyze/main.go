package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"contract-validator/internal/bootstrap"
	"contract-validator/internal/contracts"
	"contract-validator/internal/reviews"
	"contract-validator/internal/shared/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		description  string
		jurisdiction string
		contractType string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:          "analyze <file.docx>",
		Short:        "Analyze a DOCX contract and print the response envelope",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if timeout <= 0 {
				timeout = cfg.RequestTimeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			app, err := bootstrap.BuildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			env := run(ctx, app.ReviewService, reviews.Request{
				FileName:     filepath.Base(args[0]),
				Data:         data,
				Description:  description,
				ContractType: contractType,
				Jurisdiction: jurisdiction,
			}, cfg.MaxFileSize)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(env); err != nil {
				return err
			}
			if env.Status != contracts.StatusSuccess {
				return fmt.Errorf("analysis failed: %s", env.Error.ErrorCode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "what the contract is for")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "governing jurisdiction hint")
	cmd.Flags().StringVar(&contractType, "contract-type", "", "contract type hint, e.g. NDA")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline (default REQUEST_TIMEOUT)")
	return cmd
}

func run(ctx context.Context, svc *reviews.Service, req reviews.Request, maxFileSize int64) contracts.Envelope {
	result, err := svc.Review(ctx, req)
	if err != nil {
		f := reviews.Classify(err, maxFileSize)
		return contracts.Failure(f.Code, f.Message, f.Details, time.Now())
	}
	return contracts.Success(result)
}
