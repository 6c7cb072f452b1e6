package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/internal/seeder"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run a simulated sensor node",
	Long: `Post generated telemetry to the server on a fixed cadence, pulling
the actuator flags each cycle and echoing them in the next reading the
way the real node firmware does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")
		dropRate, _ := cmd.Flags().GetFloat64("drop-rate")

		runner := seeder.NewRunner(apiClient(), seeder.Config{
			Count:    count,
			Interval: interval,
			DropRate: dropRate,
		})
		return runner.Run(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().Int("count", 0, "number of readings to post (0 = run until interrupted)")
	seedCmd.Flags().Duration("interval", 3*time.Second, "pause between readings")
	seedCmd.Flags().Float64("drop-rate", 0.05, "chance an optional channel is omitted from a reading")

	rootCmd.AddCommand(seedCmd)
}
