package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/wrsn/app"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Print the clusters and visiting order of the configured field",
	RunE:  listClusters,
}

func init() {
	clustersCmd.Flags().Int64Var(&runSeed, "seed", 0, "placement seed")
	rootCmd.AddCommand(clustersCmd)
}

func listClusters(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := app.BuildWorld(cfg)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLUSTER\tCENTROID\tSIZE\tPATH\tDIAMETER\tORDER")
	for _, c := range world.Clusters {
		order := make([]string, 0, c.Size())
		for _, p := range c.PathMembers() {
			order = append(order, fmt.Sprintf("%d(%d,%d)", p.ID, p.Location.X, p.Location.Y))
		}
		fmt.Fprintf(w, "%d\t(%d,%d)\t%d\t%.3f\t%.3f\t%v\n",
			c.ID, c.Centroid.X, c.Centroid.Y, c.Size(), c.PathLength, c.Diameter, order)
	}
	return w.Flush()
}
