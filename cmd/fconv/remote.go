package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rijalprasetyo/converter-file/internal/daemon"
	"github.com/rijalprasetyo/converter-file/pkg/client"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tFROM\tTO\tSIZE")
			for _, e := range daemon.CatalogEntries() {
				size := ""
				if e.RequiresTargetSize {
					size = "required"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Category, e.From, strings.Join(e.To, ", "), size)
			}
			return w.Flush()
		},
	}
}

func newSubmitCmd() *cobra.Command {
	var flags pairFlags

	cmd := &cobra.Command{
		Use:   "submit <files or directories...>",
		Short: "Queue a batch on the daemon",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec(args)
			if err != nil {
				return err
			}

			c, err := newClient()
			if err != nil {
				return err
			}

			result, err := c.Submit(&client.SubmitPayload{
				Category:     string(spec.Category),
				From:         string(spec.Source),
				To:           string(spec.Target),
				TargetSizeKB: spec.TargetSizeKB,
				Inputs:       spec.Inputs,
				OutputDir:    spec.OutputDir,
			})
			if err != nil {
				return err
			}

			fmt.Printf("✓ Batch queued: %s\n", result.BatchID)
			fmt.Printf("  Jobs: %d\n", len(result.JobIDs))
			fmt.Printf("  Follow with: fconv batch %s\n", result.BatchID)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a queued job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id: %s", args[0])
			}

			c, err := newClient()
			if err != nil {
				return err
			}

			job, err := c.GetJob(id)
			if err != nil {
				return err
			}

			printJob(*job)
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <batch-id>",
		Short: "Show every job of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			b, err := c.GetBatch(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Batch %s: %d succeeded, %d failed, %d pending\n\n",
				b.BatchID, b.Succeeded, b.Failed, b.Pending)
			for _, job := range b.Jobs {
				printJob(job)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			jobs, err := c.ListRecent(limit)
			if err != nil {
				return err
			}

			if len(jobs) == 0 {
				fmt.Println("No jobs found")
				return nil
			}

			fmt.Printf("Recent jobs (%d):\n\n", len(jobs))
			for _, job := range jobs {
				printJob(job)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			stats, err := c.Stats()
			if err != nil {
				return err
			}

			fmt.Println("Queue Statistics:")
			fmt.Printf("  Pending:      %d\n", stats["pending"])
			fmt.Printf("  Processing:   %d\n", stats["processing"])
			fmt.Printf("  Completed:    %d\n", stats["completed"])
			fmt.Printf("  Failed:       %d\n", stats["failed"])
			fmt.Printf("  Total:        %d\n", stats["total"])
			fmt.Printf("  Workers:      %d / %d busy\n", stats["workers_busy"], stats["workers_total"])
			return nil
		},
	}
}

func printJob(job client.Job) {
	fmt.Printf("ID: %d\n", job.ID)
	fmt.Printf("  %s: %s → %s\n", job.Category, job.From, job.To)
	fmt.Printf("  Input:  %s\n", job.InputPath)
	fmt.Printf("  Output: %s\n", job.OutputPath)
	fmt.Printf("  Status: %s", job.Status)
	if job.ErrorKind != "" && job.ErrorKind != "none" {
		fmt.Printf(" (%s)", job.ErrorKind)
	}
	fmt.Println()
	if job.Quality > 0 {
		fmt.Printf("  Quality: %d, %d KB\n", job.Quality, job.OutputBytes/1024)
	}
	if job.ErrorMessage != "" {
		fmt.Printf("  Error: %s\n", job.ErrorMessage)
	}
	fmt.Println()
}
