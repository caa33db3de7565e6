package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"manual-assistant/internal/di"
	"manual-assistant/internal/domain"
	"manual-assistant/internal/infra"
	"manual-assistant/internal/infra/config"
	"manual-assistant/internal/infra/logger"
	"manual-assistant/internal/infra/registry"
	"manual-assistant/internal/usecase"
)

// bootstrap wires the full component graph for CLI use.
func bootstrap(ctx context.Context) (*di.ApplicationComponents, *pgxpool.Pool, error) {
	cfg := config.Load()
	log := logger.New()

	pool, err := infra.NewPostgresDB(ctx, cfg.DSN()+"?sslmode=disable")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	components, err := di.NewApplicationComponents(cfg, pool, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return components, pool, nil
}

// newSetupCmd ingests every available registered manual.
func newSetupCmd() *cobra.Command {
	var tier int

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Ingest all available manuals into the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			manuals := components.Registry.Available()
			if tier > 0 {
				var filtered []domain.ManualDefinition
				for _, m := range manuals {
					if m.Tier == tier {
						filtered = append(filtered, m)
					}
				}
				manuals = filtered
			}
			if len(manuals) == 0 {
				return fmt.Errorf("no available manuals to ingest")
			}

			start := time.Now()
			results, err := components.IngestUsecase.IngestAll(ctx, manuals)
			if err != nil {
				return err
			}

			total := 0
			for _, r := range results {
				fmt.Printf("%-50s %4d pages %5d passages\n", r.Source, r.Pages, r.Passages)
				total += r.Passages
			}
			fmt.Printf("\nIngested %d manuals, %d passages in %s\n", len(results), total, time.Since(start).Round(time.Second))
			return nil
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 0, "only ingest manuals of this tier")
	return cmd
}

// newInventoryCmd lists registered manuals and their availability.
func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List registered manuals and whether their files exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			reg, err := registry.Load(cfg.RegistryPath)
			if err != nil {
				return err
			}

			validation := reg.Validate()
			for _, m := range reg.Manuals {
				status := "ok"
				if !m.Exists() {
					status = "MISSING"
				}
				fmt.Printf("%-8s tier %d  %-20s %-18s %s\n", status, m.Tier, m.EquipmentBrand, m.EquipmentType, m.Path)
			}
			fmt.Printf("\n%s\n", inventorySummary(validation))
			return nil
		},
	}
}

func inventorySummary(v domain.RegistryValidation) string {
	return fmt.Sprintf("%d registered, %d available, %d missing",
		v.TotalRegistered, len(v.Available), len(v.Missing))
}

// newAskCmd answers a single question.
func newAskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			question := strings.Join(args, " ")
			out, err := components.AskUsecase.Execute(ctx, usecase.AskInput{
				Question: question,
				TopK:     topK,
			})
			if err != nil {
				return err
			}
			printAnswer(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of passages to retrieve")
	return cmd
}

// newChatCmd starts an interactive session that carries conversation
// context between turns.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with conversation memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Println("Type a question, 'clear' to reset the conversation, or 'exit' to quit.")

			var prior domain.ConversationContext
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				switch {
				case line == "":
					continue
				case line == "exit" || line == "quit":
					return nil
				case line == "clear":
					prior = domain.ConversationContext{}
					fmt.Println("Conversation cleared.")
					continue
				}

				out, err := components.AskUsecase.Execute(ctx, usecase.AskInput{
					Question: line,
					Prior:    prior,
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				printAnswer(out)
				prior = out.Context
			}
			return scanner.Err()
		},
	}
}

// newStatsCmd reports index and queue statistics.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show passage counts per manual and ingest queue state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := components.PassageRepo.Stats(ctx)
			if err != nil {
				return err
			}

			titles := make([]string, 0, len(stats.ManualCounts))
			for title := range stats.ManualCounts {
				titles = append(titles, title)
			}
			sort.Strings(titles)
			for _, title := range titles {
				fmt.Printf("%6d  %s\n", stats.ManualCounts[title], title)
			}
			fmt.Printf("\n%d passages total\n", stats.PassageCount)

			jobs, err := components.JobRepo.CountByStatus(ctx)
			if err != nil {
				return err
			}
			if len(jobs) > 0 {
				fmt.Println("\nIngest queue:")
				for status, count := range jobs {
					fmt.Printf("  %-12s %d\n", status, count)
				}
			}
			return nil
		},
	}
}

func printAnswer(out *usecase.AskOutput) {
	if out.Fallback {
		fmt.Printf("No answer available: %s\n", out.Reason)
		return
	}
	fmt.Println()
	fmt.Println(out.Answer)
	if out.Lock.Active() {
		fmt.Printf("\n[equipment: %s %s]\n", out.Lock.Brand, out.Lock.Type)
	}
	fmt.Println()
}
