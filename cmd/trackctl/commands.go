package main

import (
	"fmt"

	accountApp "github.com/calltrack/golang_services/internal/account_service/app"
	accountPg "github.com/calltrack/golang_services/internal/account_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/billing_service/adapters/paymentgateway"
	billingApp "github.com/calltrack/golang_services/internal/billing_service/app"
	billingDomain "github.com/calltrack/golang_services/internal/billing_service/domain"
	billingPg "github.com/calltrack/golang_services/internal/billing_service/repository/postgres"
	numbersApp "github.com/calltrack/golang_services/internal/numbers_service/app"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	numbersPg "github.com/calltrack/golang_services/internal/numbers_service/repository/postgres"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			applied, err := database.Migrate(ctx, e.pool, e.logger)
			if err != nil {
				return err
			}
			if applied == nil {
				applied = []string{}
			}
			return render(cmd.OutOrStdout(), e.output, map[string]any{"applied": applied})
		},
	}
}

func (e *env) billingService() *billingApp.BillingService {
	return billingApp.NewBillingService(e.pool,
		billingPg.NewPgBillingRepository(e.logger),
		billingPg.NewPgTransactionRepository(e.logger),
		billingPg.NewPgPaymentIntentRepository(e.logger),
		paymentgateway.NewMockPaymentGatewayAdapter(e.logger, e.cfg.PaymentWebhookSecret),
		e.cfg.DefaultCurrency, e.logger)
}

func accountCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage customer accounts",
	}

	var name, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with its admin user and billing record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			auth := accountApp.NewAuthService(
				accountPg.NewPgAccountRepository(e.pool, e.logger),
				accountPg.NewPgUserRepository(e.pool, e.logger),
				accountApp.AuthConfig{JWTSecret: e.cfg.JWTSecret, JWTExpiryHours: e.cfg.JWTExpiryHours},
				e.logger)
			account, admin, err := auth.CreateAccountWithAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}
			if err := e.billingService().EnsureAccount(ctx, account.ID); err != nil {
				return fmt.Errorf("creating billing record: %w", err)
			}
			return render(cmd.OutOrStdout(), e.output, map[string]any{"account": account, "admin": admin})
		},
	}
	create.Flags().StringVar(&name, "name", "", "account name")
	create.Flags().StringVar(&email, "email", "", "admin email")
	create.Flags().StringVar(&password, "password", "", "admin password")
	for _, f := range []string{"name", "email", "password"} {
		_ = create.MarkFlagRequired(f)
	}

	var description, reference string
	topUp := &cobra.Command{
		Use:   "top-up <account-id> <amount>",
		Short: "Credit an account balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid account id: %w", err)
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount: %w", err)
			}
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			tx, err := e.billingService().Credit(ctx, accountID, amount, billingDomain.TransactionTypeManualAdjustment, description, reference)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.output, tx)
		},
	}
	topUp.Flags().StringVar(&description, "description", "Operator credit", "ledger description")
	topUp.Flags().StringVar(&reference, "reference", "", "external reference")

	cmd.AddCommand(create, topUp)
	return cmd
}

func bankCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Inspect and manage the shared number bank",
	}

	numberService := func() *numbersApp.NumberService {
		phoneRepo := numbersPg.NewPgPhoneNumberRepository(e.logger)
		bankRepo := numbersPg.NewPgBankedNumberRepository(e.logger)
		provisioner := numbersApp.NewProvisioner(phoneRepo, bankRepo, e.carrier(), e.billingService(), e.cfg.InboundWebhookBaseURL, e.logger)
		return numbersApp.NewNumberService(e.pool, phoneRepo, bankRepo, provisioner, e.logger)
	}

	var (
		country, numberType string
		limit, offset       int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List banked numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			numbers, err := numberService().ListBank(ctx, country, numbersDomain.NumberType(numberType), limit, offset)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.output, numbers)
		},
	}
	list.Flags().StringVar(&country, "country", "", "ISO country filter")
	list.Flags().StringVar(&numberType, "type", "", "number type filter (local, toll_free)")
	list.Flags().IntVar(&limit, "limit", 100, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "page offset")

	var sid, importCountry, importType, releasedBy string
	importCmd := &cobra.Command{
		Use:   "import <e164>",
		Short: "Add a number the platform already owns at the carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := uuid.Parse(releasedBy)
			if err != nil {
				return fmt.Errorf("invalid --released-by: %w", err)
			}
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			banked, err := numberService().ImportBankedNumber(ctx, owner, sid, args[0], importCountry, numbersDomain.NumberType(importType))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.output, banked)
		},
	}
	importCmd.Flags().StringVar(&sid, "sid", "", "carrier SID")
	importCmd.Flags().StringVar(&importCountry, "country", "", "ISO country (default US)")
	importCmd.Flags().StringVar(&importType, "type", string(numbersDomain.NumberTypeLocal), "number type (local, toll_free)")
	importCmd.Flags().StringVar(&releasedBy, "released-by", uuid.Nil.String(), "account recorded as the releasing owner")
	_ = importCmd.MarkFlagRequired("sid")

	var deletedBy string
	release := &cobra.Command{
		Use:   "release <account-id> <phone-number-id>",
		Short: "Move an account's number into the bank without a carrier release",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, 3)
			for _, raw := range []string{args[0], args[1], deletedBy} {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", raw, err)
				}
				ids = append(ids, id)
			}
			ctx := cmd.Context()
			if err := e.connect(ctx); err != nil {
				return err
			}
			releaseService := numbersApp.NewReleaseService(numbersApp.ReleaseServiceDeps{
				DB:              e.pool,
				PhoneRepo:       numbersPg.NewPgPhoneNumberRepository(e.logger),
				BankRepo:        numbersPg.NewPgBankedNumberRepository(e.logger),
				PoolRepo:        numbersPg.NewPgPoolRepository(e.logger),
				KeywordPoolRepo: numbersPg.NewPgKeywordPoolRepository(e.logger),
				SessionRepo:     numbersPg.NewPgKeywordSessionRepository(e.logger),
				Campaigns:       numbersPg.NewPgPhoneNumberRepository(e.logger),
				Carrier:         e.carrier(),
				TestMode:        e.cfg.IsCarrierTestMode(),
			}, e.logger)
			banked, err := releaseService.BankNumber(ctx, ids[0], ids[1], ids[2])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.output, banked)
		},
	}
	release.Flags().StringVar(&deletedBy, "by", uuid.Nil.String(), "user recorded as deleting the number")

	cmd.AddCommand(list, importCmd, release)
	return cmd
}
