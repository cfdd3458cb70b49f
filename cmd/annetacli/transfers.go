package main

import (
	"fmt"
	"strconv"
	"time"

	"anneta.link/services"

	"github.com/spf13/cobra"
)

func transfersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Manage transfer batches",
	}
	cmd.AddCommand(transfersAssignCmd())
	cmd.AddCommand(transfersListCmd())
	cmd.AddCommand(transfersDeleteCmd())
	cmd.AddCommand(transfersSentCmd())
	return cmd
}

// transfersAssignCmd creates a transfer batch and claims every finalized,
// unassigned donation in the given date range for it.
func transfersAssignCmd() *cobra.Command {
	var fromStr, toStr, recipient, notes string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Create a transfer batch and assign donations by date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fmt.Errorf("invalid --from date: %w", err)
			}
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}

			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			ctx := cmd.Context()
			svc := services.NewTransferService()
			transfer, err := svc.CreateTransfer(ctx, time.Now(), recipient, notes)
			if err != nil {
				return fmt.Errorf("creating transfer: %w", err)
			}
			assigned, err := svc.AssignByDateRange(ctx, transfer.ID, from, to)
			if err != nil {
				return fmt.Errorf("assigning donations: %w", err)
			}

			fmt.Printf("Transfer %d created, %d donations assigned (%s to %s)\n",
				transfer.ID, assigned, fromStr, toStr)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&recipient, "recipient", "", "transfer recipient")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func transfersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an empty transfer batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid transfer id: %w", err)
			}

			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			if err := services.NewTransferService().DeleteTransfer(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Printf("Transfer %d deleted\n", id)
			return nil
		},
	}
}

// transfersSentCmd marks donations as wired onward to their organizations,
// after the operator has executed the actual bank transfer.
func transfersSentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sent [donation-id...]",
		Short: "Mark donations as sent to their organizations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uint, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 32)
				if err != nil {
					return fmt.Errorf("invalid donation id %q: %w", arg, err)
				}
				ids = append(ids, uint(id))
			}

			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			marked, err := services.NewTransferService().MarkSentToOrganization(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Printf("%d donations marked as sent\n", marked)
			return nil
		},
	}
}

func transfersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transfer batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			defer teardown()

			transfers, err := services.NewTransferService().GetTransfers(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range transfers {
				fmt.Printf("%d\t%s\t%s\t%s\n", t.ID, t.Date.Format("2006-01-02"), t.Recipient, t.Notes)
			}
			return nil
		},
	}
}
