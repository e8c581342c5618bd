package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hajjumrahflow/internal/assistant"
	intconfig "hajjumrahflow/internal/config"
	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	router "hajjumrahflow/internal/http"
	"hajjumrahflow/internal/http/handlers"
	"hajjumrahflow/internal/notifier"
	"hajjumrahflow/internal/services"
	"hajjumrahflow/internal/storage"
	"hajjumrahflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		utils.Log.WithError(err).Error("hajjflow failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hajjflow",
		Short:         "Hajj and Umrah travel agency back office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), userCmd())
	return root
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (intconfig.Env, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return env, err
	}
	if err := env.Validate(); err != nil {
		return env, err
	}
	if err := utils.SetupLogger(utils.LogOptions{Level: env.LogLevel, Format: env.LogFormat, File: env.LogFile}); err != nil {
		return env, err
	}
	if _, err := intconfig.ConnectDB(env); err != nil {
		return env, err
	}
	return env, nil
}

func documentStore(ctx context.Context, env intconfig.Env) (storage.Store, error) {
	if env.DocumentStorage == "s3" {
		return storage.NewS3(ctx, env.S3Bucket, env.S3Region)
	}
	return storage.Local{Root: env.MediaRoot}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the payment reminder schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := bootstrap()
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()
			if env.GinMode != "" {
				gin.SetMode(env.GinMode)
			}

			store, err := documentStore(cmd.Context(), env)
			if err != nil {
				return fmt.Errorf("document storage: %w", err)
			}
			hooks := notifier.NewWebhook(map[domain.EventKind]string{
				domain.EventBookingCreated:         env.NewBookingWebhookURL,
				domain.EventPaymentReceived:        env.PaymentReceiptWebhookURL,
				domain.EventBookingPaymentReminder: env.PaymentReminderWebhookURL,
			})
			auth := services.AuthService{Secret: []byte(env.SecretKey)}
			handlers.Configure(handlers.Deps{
				Store:     store,
				Notifier:  hooks,
				Assistant: assistant.New(assistant.Config{APIKey: env.OpenRouterAPIKey, SiteURL: env.OpenRouterSiteURL}),
				Auth:      auth,
			})

			if env.ReminderInterval > 0 && hooks.Enabled(domain.EventBookingPaymentReminder) {
				sched, err := services.ReminderJob{Notifier: hooks, Cooldown: env.ReminderCooldown}.Schedule(env.ReminderInterval)
				if err != nil {
					return fmt.Errorf("reminder schedule: %w", err)
				}
				defer func() {
					if err := sched.Shutdown(); err != nil {
						utils.LogFailure("", "reminder", "shutdown", err)
					}
				}()
			}

			r := router.NewRouter(env, auth)
			srv := &http.Server{
				Addr:              env.AppAddr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       20 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.Log.Infof("server listening on http://localhost%s", env.AppAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			}

			utils.Log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			utils.Log.Info("server stopped")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and columns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer intconfig.CloseDB()
			if err := intdb.Migrate(cmd.Context(), intconfig.DB); err != nil {
				return err
			}
			utils.Log.Info("schema is up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var opts services.SeedOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace business data with generated demo records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer intconfig.CloseDB()
			if err := intdb.Migrate(cmd.Context(), intconfig.DB); err != nil {
				return err
			}
			report, err := services.Seeder{RequestID: "seed"}.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Customers, "customers", 250, "number of customers to generate")
	cmd.Flags().IntVar(&opts.Bookings, "bookings", 80, "number of bookings to generate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage staff accounts"}

	var in services.UserInput
	var role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer intconfig.CloseDB()
			r, ok := domain.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q (manager, agent or accountant)", role)
			}
			in.Role = r
			u, err := services.AuthService{RequestID: "cli"}.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (id %d, %s)\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&in.Username, "username", "", "login name")
	create.Flags().StringVar(&in.Email, "email", "", "email address")
	create.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	create.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	create.Flags().StringVar(&in.Password, "password", "", "password (min 8 characters)")
	create.Flags().StringVar(&role, "role", string(domain.RoleAgent), "manager, agent or accountant")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")

	user.AddCommand(create)
	return user
}
