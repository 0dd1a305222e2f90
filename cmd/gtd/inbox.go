package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nadir-Urbina/myGTD-sub000/internal/models"
	"github.com/Nadir-Urbina/myGTD-sub000/internal/store"
)

func inboxCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Capture and list inbox items",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&userID, "user", "", "user ID the items belong to")

	var description string
	add := &cobra.Command{
		Use:   "add [title...]",
		Short: "Capture a new inbox item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := models.InboxItem{Title: strings.Join(args, " ")}
			if description != "" {
				item.Description = &description
			}
			return withStores(cmd, func(s *store.Stores) error {
				id, err := s.Inbox.Capture(cmd.Context(), userID, item)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "item description")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List inbox items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, func(s *store.Stores) error {
				var (
					items []models.InboxItem
					err   error
				)
				if all {
					items, err = s.Inbox.List(cmd.Context(), userID)
				} else {
					items, err = s.Inbox.ListUnprocessed(cmd.Context(), userID)
				}
				if err != nil {
					return err
				}
				for _, it := range items {
					mark := " "
					if it.Processed {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s  %s  %s\n", mark, it.ID, it.CreatedAt.Format("2006-01-02"), it.Title)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include processed items")

	cmd.AddCommand(add, list)
	return cmd
}

func withStores(cmd *cobra.Command, fn func(*store.Stores) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	gw, err := openGateway(cmd.Context(), cfg, nil, logger)
	if err != nil {
		return err
	}
	defer gw.Close()
	return fn(store.New(gw, nil, store.WithLogger(logger)))
}
