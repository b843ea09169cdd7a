package main

import (
	"github.com/spf13/cobra"

	"github.com/signet-dev/signet/internal/api"
	"github.com/signet-dev/signet/internal/config"
	"github.com/signet-dev/signet/internal/match"
)

var similarThreshold int

var similarCmd = &cobra.Command{
	Use:   "similar <image1> <image2>",
	Short: "Compare two images by feature-match count",
	Long: `Detect keypoints in both images, compute binary descriptors, and count
cross-checked Hamming matches. The images are similar when the match
count exceeds the threshold.

Examples:
  signet similar sig_a.png sig_b.png
  signet similar sig_a.png sig_b.png --threshold 50`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold := similarThreshold
		if threshold <= 0 {
			threshold = match.DefaultThreshold
			if cfgMgr, err := config.NewManager(cfgFile); err == nil {
				if t := cfgMgr.Get().Defaults.MatchThreshold; t > 0 {
					threshold = t
				}
			}
		}
		result, err := match.CompareFiles(args[0], args[1], threshold)
		if err != nil {
			return err
		}
		return api.Output(result)
	},
}

func init() {
	similarCmd.Flags().IntVar(&similarThreshold, "threshold", 0, "Minimum match count for similarity (default: configured match_threshold)")

	rootCmd.AddCommand(similarCmd)
}
