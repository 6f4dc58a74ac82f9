package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/gridbox/gridbox/internal/container"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List gridbox containers (running and stopped)",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := container.NewDockerEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		infos, err := engine.ListContainers(ctx)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No gridbox containers.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tIMAGE\tSTATUS\tCREATED")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				info.ID, info.Name, info.Image, info.Status,
				info.Created.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
