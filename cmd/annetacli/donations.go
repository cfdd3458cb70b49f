package main

import (
	"fmt"

	"anneta.link/models"
	"anneta.link/pkg/queryparams"
	"anneta.link/services"

	"github.com/spf13/cobra"
)

func donationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donations",
		Short: "Inspect donations",
	}
	cmd.AddCommand(donationsListCmd())
	return cmd
}

func donationsListCmd() *cobra.Command {
	var page, perPage int
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List donations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer teardown()

			result, err := services.NewDonationService(cfg).GetDonationsPaginated(cmd.Context(), queryparams.ListParams{
				Page:    page,
				PerPage: perPage,
				Status:  status,
			})
			if err != nil {
				return err
			}

			donations, ok := result.Data.([]models.Donation)
			if !ok {
				return fmt.Errorf("unexpected result type %T", result.Data)
			}
			for _, d := range donations {
				fmt.Printf("%d\t%s\t%d.%02d EUR\tfinalized=%t\t%s\n",
					d.ID, d.CreatedAt.Format("2006-01-02"), d.Amount/100, d.Amount%100,
					d.Finalized, d.PaymentMethod)
			}
			fmt.Printf("page %d/%d, %d donations total\n",
				result.Meta.CurrentPage, result.Meta.TotalPages, result.Meta.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "rows per page")
	cmd.Flags().StringVar(&status, "status", "", "filter by finalization (true/false)")

	return cmd
}
