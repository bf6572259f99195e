package main

import (
	"context"
	"fmt"
	"log/slog"

	"go_vocab_builder/internal/config"
	"go_vocab_builder/internal/middleware"
	"go_vocab_builder/internal/repository"
	"go_vocab_builder/internal/service"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := openDB(slog.Default())
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := repository.Migrate(db); err != nil {
				return err
			}
			slog.Info("Database schema migrated")
			return nil
		},
	}
}

// withAdminService は CLI 用に AdminService を組み立てて fn を実行します
func withAdminService(ctx context.Context, fn func(ctx context.Context, s service.AdminService) error) error {
	logger := slog.Default()
	db, err := openDB(logger)
	if err != nil {
		return err
	}
	defer closeDB(db)

	s := service.NewAdminService(
		db,
		repository.NewGormRoleRepository(),
		repository.NewGormUserRepository(),
		repository.NewGormWordAdminRepository(),
		repository.NewGormTokenRepository(),
		&config.Cfg,
	)
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(middleware.WithLogger(ctx, logger), s)
}

func newRolesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Manage roles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the admin and user roles if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAdminService(cmd.Context(), func(ctx context.Context, s service.AdminService) error {
				roles, err := s.SeedRoles(ctx)
				if err != nil {
					return err
				}
				for _, role := range roles {
					fmt.Fprintf(cmd.OutOrStdout(), "role %s (id=%d)\n", role.Name, role.ID)
				}
				return nil
			})
		},
	})
	return cmd
}

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "grant <email-or-username> <role>",
		Short: "Grant a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdminService(cmd.Context(), func(ctx context.Context, s service.AdminService) error {
				user, err := s.GrantRole(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s now has roles %v\n", user.Username, user.RoleNames())
				return nil
			})
		},
	})
	return cmd
}
