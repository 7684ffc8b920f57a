// painelctl runs the dashboard pipeline from the command line: the same
// sources, cleaning and aggregation as the server, printed as a table or
// rendered to a PNG file.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"cartorios/internal/backend"
	"cartorios/internal/chart"
	"cartorios/internal/config"
	"cartorios/internal/core"
	"cartorios/internal/dashboard"
)

var args struct {
	uf     string
	cns    string
	output string
	width  int
	height int
}

var rootCmd = &cobra.Command{
	Use:   "painelctl",
	Short: "Query the notarial collections dashboard from the terminal",
	Long: "painelctl reads the office registry and the monthly collections " +
		"export through the configured source backend and reports the " +
		"aggregated series for a state or a single office.",
	SilenceUsage: true,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the monthly series as a table",
	RunE:  runReport,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the monthly series to a PNG file",
	RunE:  runChart,
}

func init() {
	for _, cmd := range []*cobra.Command{reportCmd, chartCmd} {
		cmd.Flags().StringVar(&args.uf, "uf", "", "state code to aggregate (region mode)")
		cmd.Flags().StringVar(&args.cns, "cns", "", "office code to aggregate (office mode)")
	}
	chartCmd.Flags().StringVarP(&args.output, "output", "o", "arrecadacao.png", "output PNG path")
	chartCmd.Flags().IntVar(&args.width, "width", 800, "image width in pixels")
	chartCmd.Flags().IntVar(&args.height, "height", 400, "image height in pixels")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(chartCmd)
}

func main() {
	godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func selection() dashboard.Selection {
	if args.cns != "" {
		return dashboard.Selection{Mode: dashboard.ModeOffice, CNS: args.cns}
	}
	return dashboard.Selection{Mode: dashboard.ModeRegion, UF: args.uf}
}

// resolveSeries runs the selection through the full pipeline and turns
// the non-ready states into command errors.
func resolveSeries(cmd *cobra.Command) (dashboard.Outcome, error) {
	if args.uf == "" && args.cns == "" {
		return dashboard.Outcome{}, fmt.Errorf("either --uf or --cns is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return dashboard.Outcome{}, err
	}

	srcs, err := backend.NewFactory(nil).Create(cmd.Context(), cfg)
	if err != nil {
		return dashboard.Outcome{}, err
	}

	svc := dashboard.NewService(dashboard.NewLoader(srcs.Registry, srcs.Collections))
	out := svc.Series(cmd.Context(), selection())
	switch out.State {
	case dashboard.StateFailed:
		return out, fmt.Errorf("load sources: %w", out.Err)
	case dashboard.StateNotReady:
		return out, fmt.Errorf("selection incomplete: %s", out.Reason)
	}
	return out, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	out, err := resolveSeries(cmd)
	if err != nil {
		return err
	}
	if out.State == dashboard.StateNoData {
		fmt.Println("no collection data for this selection")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Mês", "Arrecadação"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, p := range out.Points {
		table.Append([]string{p.Month.Format("01/2006"), core.FormatBRL(p.Total.Cents)})
	}
	table.Render()

	if out.HasMetric {
		m := out.Metric
		fmt.Printf("\nÚltimo mês (%s): %s\n", m.Month.Format("01/2006"), core.FormatBRL(m.Total.Cents))
		if m.HasDelta {
			note := ""
			if m.NonAdjacent() {
				note = fmt.Sprintf(" (vs %d meses antes)", m.SpanMonths)
			}
			fmt.Printf("Variação: %s%s\n", core.FormatBRL(m.Delta.Cents), note)
		}
	}
	return nil
}

func runChart(cmd *cobra.Command, _ []string) error {
	out, err := resolveSeries(cmd)
	if err != nil {
		return err
	}
	if out.State == dashboard.StateNoData {
		return fmt.Errorf("no collection data for this selection")
	}

	title := "Evolução da Arrecadação - " + args.uf
	if args.cns != "" {
		title = "Evolução da Arrecadação - CNS " + args.cns
	}
	png, err := chart.Render(out.Points, chart.Options{
		Title:  title,
		Width:  args.width,
		Height: args.height,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(args.output, png, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	fmt.Printf("wrote %s (%d months, rendered at %s)\n",
		args.output, len(out.Points), time.Now().Format(time.RFC3339))
	return nil
}
