package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tautx/internal/tautulli"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	var (
		urlFlag    string
		apiKeyFlag string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users known to the Tautulli server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyServerFlags(cfg, urlFlag, apiKeyFlag)
			if err := cfg.RequireServer(); err != nil {
				return err
			}

			client := ctx.newClient(cfg)
			users, err := client.Users(cmd.Context())
			if err != nil {
				// Some servers restrict get_users to admins; the name list
				// still works there.
				users, err = client.UserNames(cmd.Context())
				if err != nil {
					return fmt.Errorf("list users: %w", err)
				}
			}

			sort.Slice(users, func(i, j int) bool {
				return strings.ToLower(displayName(users[i])) < strings.ToLower(displayName(users[j]))
			})

			if asJSON {
				return writeJSON(cmd, users)
			}
			return renderUsers(cmd, users)
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Tautulli base URL (overrides config)")
	cmd.Flags().StringVar(&apiKeyFlag, "apikey", "", "Tautulli API key (overrides config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	return cmd
}

func renderUsers(cmd *cobra.Command, users []tautulli.User) error {
	headers := []string{"ID", "Username", "Friendly Name", "Active"}
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			strconv.FormatInt(int64(user.UserID), 10),
			user.Username,
			user.FriendlyName,
			yesNo(user.IsActive != 0),
		})
	}

	out := cmd.OutOrStdout()
	if !stdoutIsTerminal() {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
		return nil
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
	return nil
}

func displayName(user tautulli.User) string {
	if user.Username != "" {
		return user.Username
	}
	return user.FriendlyName
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
