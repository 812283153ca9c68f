package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/internal/users"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, closeDB, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		repo := users.NewStoreUserRepository(db.Collection(store.Users))
		svc := users.NewService(repo, cfg, users.Options{})
		u, err := svc.Promote(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) is now an admin\n", u.Email, u.ID)
		return nil
	},
}
