// Command manage runs the Data Hub data maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datahub/backend/internal/application/management"
	searchapp "github.com/datahub/backend/internal/application/search"
	"github.com/datahub/backend/internal/bootstrap"
	"github.com/datahub/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "datahub-manage"

// dateLayout is the format of --before
const dateLayout = "2006-01-02"

type cli struct {
	cfg *config.Config
}

// app is what a command runs against
type app struct {
	infra    *bootstrap.Infrastructure
	repos    *bootstrap.Repositories
	services *bootstrap.Services
	log      *zap.Logger
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:           "manage",
		Short:         "Data Hub data maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		c.syncSearchCommand(),
		c.createIndexCommand(),
		c.oneListCommand(),
		c.deleteOldRecordsCommand(),
		c.loadMetadataCommand(),
		c.generateDataCommand(),
		c.createSuperuserCommand(),
		c.mergeCompaniesCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run opens the infrastructure, runs fn and closes everything again
func (c *cli) run(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	infra, err := bootstrap.Open(ctx, c.cfg, serviceName)
	if err != nil {
		return err
	}
	a := &app{infra: infra, log: infra.Logger}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if a.services != nil {
			_ = a.services.Bus.Stop(closeCtx)
		}
		if err := infra.Close(closeCtx); err != nil {
			fmt.Fprintln(os.Stderr, "Error closing infrastructure:", err)
		}
	}()

	a.repos = bootstrap.NewRepositories(infra.Database.DB, infra.Redis, a.log)
	a.services, err = bootstrap.NewServices(infra, a.repos)
	if err != nil {
		return err
	}
	if err := a.services.Bus.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

func (c *cli) syncSearchCommand() *cobra.Command {
	var (
		apps      []string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "sync-search",
		Short: "Reindex search documents from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				selected := apps
				if len(selected) == 0 {
					selected = searchapp.Apps()
				}
				start := time.Now()
				if err := a.services.Search.SyncApps(ctx, selected, batchSize); err != nil {
					return err
				}
				a.log.Info("Search sync complete",
					zap.Strings("apps", selected),
					zap.Duration("duration", time.Since(start)),
				)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&apps, "model", nil, "Search apps to sync (default: all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Records indexed per bulk request")
	return cmd
}

func (c *cli) createIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "es-create-index",
		Short: "Create the search indexes that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.services.Search.CreateIndexes(ctx); err != nil {
					return err
				}
				a.log.Info("Search indexes created", zap.Strings("apps", searchapp.Apps()))
				return nil
			})
		},
	}
}

func (c *cli) oneListCommand() *cobra.Command {
	opts := management.OneListOptions{}
	cmd := &cobra.Command{
		Use:   "update-one-list-fields",
		Short: "Correct company classifications and One List account owners from a CSV in S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				summary, err := a.services.OneList.Run(ctx, opts)
				if err != nil {
					return err
				}
				logSummary(a.log, "One List fields updated", summary, opts.Simulate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.BucketID, "bucket", config.DefaultBucketID, "Storage bucket holding the CSV")
	cmd.Flags().StringVar(&opts.Key, "key", "", "Object key of the CSV")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "Report changes without saving them")
	cmd.Flags().BoolVar(&opts.ResetUnmatched, "reset-unmatched", false, "Reset companies that are not in the CSV")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func (c *cli) deleteOldRecordsCommand() *cobra.Command {
	var (
		model    string
		before   string
		simulate bool
	)
	cmd := &cobra.Command{
		Use:   "delete-old-records",
		Short: "Delete archived records that nothing references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := time.Parse(dateLayout, before)
			if err != nil {
				return fmt.Errorf("invalid --before date %q, expected YYYY-MM-DD", before)
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				summary, err := a.services.Cleaner.DeleteOldRecords(ctx, model, cutoff, simulate)
				if err != nil {
					return err
				}
				logSummary(a.log.With(zap.String("model", model), zap.String("before", before)),
					"Old records deleted", summary, simulate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Model to clean up (interaction, company)")
	cmd.Flags().StringVar(&before, "before", "", "Delete records archived before this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Roll back instead of committing")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}

func (c *cli) loadMetadataCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load-metadata",
		Short: "Upsert reference data from a YAML fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				result, err := a.services.Metadata.Load(ctx, f)
				if err != nil {
					return err
				}
				for kind, n := range result.Items {
					a.log.Info("Metadata loaded", zap.String("kind", string(kind)), zap.Int("items", n))
				}
				a.log.Info("Service questions loaded", zap.Int("questions", result.Questions))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path of the YAML fixture")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) generateDataCommand() *cobra.Command {
	var (
		companies int
		seed      uint64
	)
	cmd := &cobra.Command{
		Use:   "generate-data",
		Short: "Create fake companies and contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.App.Env == "production" {
				return fmt.Errorf("refusing to generate fake data in production")
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				generator := management.NewGenerator(a.repos.Tx, a.repos.Companies, a.repos.Contacts,
					a.services.Recorder, seed, a.log.Named("generator"))
				summary, err := generator.GenerateCompanies(ctx, companies)
				if err != nil {
					return err
				}
				logSummary(a.log, "Fake data generated", summary, false)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&companies, "companies", 10, "Number of companies to create")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

func (c *cli) createSuperuserCommand() *cobra.Command {
	var email, password, firstName, lastName string
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create a staff adviser that can log in with a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("DATAHUB_SUPERUSER_PASSWORD")
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				adv, err := a.services.Advisers.CreateSuperuser(ctx, email, password, firstName, lastName)
				if err != nil {
					return err
				}
				a.log.Info("Superuser created", zap.String("id", adv.ID.String()), zap.String("email", adv.Email))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address, also the login name")
	cmd.Flags().StringVar(&password, "password", "", "Password (default: $DATAHUB_SUPERUSER_PASSWORD)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) mergeCompaniesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-companies <source-id> <target-id>",
		Short: "Move every record of the source company to the target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			target, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid target id %q", args[1])
			}
			return c.run(cmd.Context(), func(ctx context.Context, a *app) error {
				result, err := a.services.Companies.Merge(ctx, source, target, nil)
				if err != nil {
					return err
				}
				a.log.Info("Companies merged",
					zap.String("source", source.String()),
					zap.String("target", target.String()),
					zap.Int64("contacts", result.Contacts),
					zap.Int64("interactions", result.Interactions),
					zap.Int64("referrals", result.Referrals),
					zap.Int64("investment_projects", result.Projects),
					zap.Int64("export_wins", result.ExportWins),
				)
				return nil
			})
		},
	}
}

func logSummary(log *zap.Logger, msg string, summary *management.Summary, simulate bool) {
	log.Info(msg,
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Bool("simulate", simulate),
	)
}
