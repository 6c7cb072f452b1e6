package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/internal/liveness"
	"github.com/nodewatch-systems/nodewatch/internal/poller"
	"github.com/nodewatch-systems/nodewatch/pkg/color"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live terminal dashboard",
	Long: `Run the dashboard loop against the server: poll for the latest
reading every few seconds, watch for disconnects independently, and
redraw on every change. Ctrl-C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fahrenheit, _ := cmd.Flags().GetBool("fahrenheit")
		pollEvery, _ := cmd.Flags().GetDuration("poll")

		p := poller.New(apiClient(), poller.Config{PollInterval: pollEvery})
		p.OnUpdate(func(snap poller.Snapshot) {
			drawDashboard(snap, fahrenheit)
		})

		if err := p.Start(cmd.Context()); err != nil {
			return err
		}
		defer p.Stop()

		drawDashboard(p.Snapshot(), fahrenheit)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
		case <-cmd.Context().Done():
		}
		fmt.Println()
		return nil
	},
}

// drawDashboard repaints the whole screen from one snapshot.
func drawDashboard(snap poller.Snapshot, fahrenheit bool) {
	fmt.Print("\033[2J\033[H")

	fmt.Println(color.Sprint("NodeWatch", color.FgWhite, color.Bold) + "  " + stateBadge(snap.State))
	fmt.Println()

	switch snap.State {
	case liveness.StateUnknown:
		fmt.Println("  waiting for first reading...")
	case liveness.StateStale:
		fmt.Println("  sensor node disconnected")
	case liveness.StateFresh:
		r := snap.Reading
		if r.Temperature != nil {
			if fahrenheit {
				fmt.Printf("  Temperature  %.1f °F\n", poller.CelsiusToFahrenheit(*r.Temperature))
			} else {
				fmt.Printf("  Temperature  %.1f °C\n", *r.Temperature)
			}
		}
		if r.Humidity != nil {
			fmt.Printf("  Humidity     %.1f %%\n", *r.Humidity)
		}
		if r.CO2PPM != nil {
			fmt.Printf("  CO2          %.0f ppm\n", *r.CO2PPM)
		}
		if r.SoilRaw != nil {
			fmt.Printf("  Soil         %d %%\n", poller.SoilPercentFromRaw(*r.SoilRaw))
		} else if r.SoilPercent != nil {
			fmt.Printf("  Soil         %d %%\n", *r.SoilPercent)
		}
		if r.MotionDetected != nil && *r.MotionDetected {
			fmt.Println("  Motion       " + color.Sprint("detected", color.FgYellow))
		}
		fmt.Printf("\n  updated %s\n", r.CapturedAt.Format("15:04:05"))
	}

	fmt.Println()
	fmt.Printf("  Relay %s   LED %s   (%d readings in window)\n",
		actuatorBadge(snap.Relay), actuatorBadge(snap.Led), len(snap.History))
	fmt.Printf("\n  %s\n", time.Now().Format("15:04:05"))
}

func stateBadge(s liveness.State) string {
	switch s {
	case liveness.StateFresh:
		return color.Sprint("LIVE", color.FgGreen, color.Bold)
	case liveness.StateStale:
		return color.Sprint("DISCONNECTED", color.FgRed, color.Bold)
	default:
		return color.Sprint("WAITING", color.FgYellow)
	}
}

func actuatorBadge(on bool) string {
	if on {
		return color.Sprint("ON", color.FgGreen, color.Bold)
	}
	return color.Sprint("off", color.FgWhite, color.Dim)
}

func init() {
	watchCmd.Flags().Bool("fahrenheit", false, "display temperature in Fahrenheit")
	watchCmd.Flags().Duration("poll", 3*time.Second, "poll interval")

	rootCmd.AddCommand(watchCmd)
}
