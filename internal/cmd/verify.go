package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sweetshop/internal/catalog"
)

var verifyCmd = &cobra.Command{
	Use:   "verify-products",
	Short: "Check the products document and product images",
	Long: `Check that the products document exists and is structured as the shop
expects, and list every product whose image is missing from the images
directory. Missing images are reported but do not fail the check.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, cleanup, err := openStore(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := catalog.New(s).Verify(ctx, cfg.ImagesDir)
	if err != nil {
		return fmt.Errorf("product setup is invalid: %w", err)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, report catalog.Report) {
	fmt.Fprintf(w, "Products document OK: %d categories, %d products\n", report.Categories, report.Products)
	if len(report.MissingImages) == 0 {
		fmt.Fprintf(w, "All product images present in %s\n", report.ImagesDir)
		return
	}
	fmt.Fprintf(w, "Missing images in %s:\n", report.ImagesDir)
	for _, m := range report.MissingImages {
		fmt.Fprintf(w, "  - %s (product %s)\n", m.Image, m.Product)
	}
}
