package cli

import (
	"fmt"

	"github.com/gridbox/gridbox/internal/image"
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List the browser image table",
	Run: func(cmd *cobra.Command, args []string) {
		for _, browser := range image.Browsers() {
			img, err := image.Resolve(browser, "")
			if err != nil {
				continue
			}
			fmt.Printf("%-10s %s\n", browser, img)
		}
		fmt.Printf("%-10s %s\n", "video", image.DefaultVideoImage)
	},
}

func init() {
	rootCmd.AddCommand(imagesCmd)
}
