package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novathreads/storefront-backend/pkg/client"
)

func newNewsletterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Manage newsletter subscriptions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "subscribe <email>",
			Short: "Subscribe an email address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := a.api.Subscribe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		},
		&cobra.Command{
			Use:   "unsubscribe <email>",
			Short: "Unsubscribe an email address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := a.api.Unsubscribe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		},
		newNewsletterSubscribersCmd(a),
	)
	return cmd
}

func newNewsletterSubscribersCmd(a *app) *cobra.Command {
	var (
		q      client.SubscriberQuery
		active bool
	)
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "List subscribers (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.RequireAdmin(cmd.Context()); err != nil {
				return err
			}
			if cmd.Flags().Changed("active") {
				q.Active = &active
			}
			res, err := a.api.Subscribers(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Subscribers) == 0 {
				fmt.Fprintln(out, "No subscribers found.")
			} else {
				tw := newTable(out)
				fmt.Fprintln(tw, "EMAIL\tACTIVE\tSUBSCRIBED")
				for _, s := range res.Subscribers {
					fmt.Fprintf(tw, "%s\t%t\t%s\n", s.Email, s.IsActive, s.SubscribedAt.Format("2006-01-02 15:04"))
				}
				_ = tw.Flush()
			}
			printPagination(out, res.Pagination)
			return nil
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "filter on active (true) or inactive (false) subscribers")
	cmd.Flags().IntVar(&q.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "page size")
	return cmd
}
