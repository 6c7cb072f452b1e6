package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/internal/poller"
	"github.com/nodewatch-systems/nodewatch/pkg/output"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest sensor reading",
	Long:  "Fetch the latest reading and its liveness verdict from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := apiClient().Latest(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch latest reading: %w", err)
		}

		if outputFormat == "json" {
			return output.JSON(res)
		}

		switch {
		case res.NoData:
			output.Info("No data available yet")
		case res.Stale:
			output.Warn("Sensor node disconnected (last update %s, %.0fs ago)",
				res.LastUpdate.Format("2006-01-02 15:04:05"), res.AgeSeconds)
		default:
			fahrenheit, _ := cmd.Flags().GetBool("fahrenheit")
			renderReading(res.Reading, fahrenheit)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent readings",
	Long:  "List readings from the last N hours, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, _ := cmd.Flags().GetInt("hours")
		limit, _ := cmd.Flags().GetInt("limit")

		readings, err := apiClient().History(cmd.Context(), hours, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch history: %w", err)
		}

		if outputFormat == "json" {
			return output.JSON(readings)
		}

		if len(readings) == 0 {
			output.Info("No readings in the requested window")
			return nil
		}

		table := output.NewTable("Time", "Temp °C", "Humidity %", "CO2 ppm", "Soil %", "Motion", "Relay", "LED")
		for _, r := range readings {
			table.AddRow(
				r.CapturedAt.Format("01-02 15:04:05"),
				fmtFloat(r.Temperature, 1),
				fmtFloat(r.Humidity, 1),
				fmtFloat(r.CO2PPM, 0),
				fmtInt(r.SoilPercent),
				fmtBool(r.MotionDetected),
				fmtBool(r.RelayOn),
				fmtBool(r.LedOn),
			)
		}
		table.Render()
		output.Info("\n%d readings", len(readings))
		return nil
	},
}

func renderReading(r *models.Reading, fahrenheit bool) {
	output.Success("Reading #%d at %s", r.ID, r.CapturedAt.Format("2006-01-02 15:04:05"))

	table := output.NewTable("Channel", "Value")
	if r.Temperature != nil {
		if fahrenheit {
			table.AddRow("Temperature", fmt.Sprintf("%.1f °F", poller.CelsiusToFahrenheit(*r.Temperature)))
		} else {
			table.AddRow("Temperature", fmt.Sprintf("%.1f °C", *r.Temperature))
		}
	}
	if r.Humidity != nil {
		table.AddRow("Humidity", fmt.Sprintf("%.1f %%", *r.Humidity))
	}
	if r.MQ135Raw != nil {
		table.AddRow("MQ-135 raw", strconv.Itoa(*r.MQ135Raw))
	}
	if r.MQ135Voltage != nil {
		table.AddRow("MQ-135 voltage", fmt.Sprintf("%.3f V", *r.MQ135Voltage))
	}
	if r.CO2PPM != nil {
		table.AddRow("CO2", fmt.Sprintf("%.1f ppm", *r.CO2PPM))
	}
	if r.NH4PPM != nil {
		table.AddRow("NH4", fmt.Sprintf("%.2f ppm", *r.NH4PPM))
	}
	if r.AlcoholPPM != nil {
		table.AddRow("Alcohol", fmt.Sprintf("%.2f ppm", *r.AlcoholPPM))
	}
	if r.COPPM != nil {
		table.AddRow("CO", fmt.Sprintf("%.2f ppm", *r.COPPM))
	}
	if r.AcetonePPM != nil {
		table.AddRow("Acetone", fmt.Sprintf("%.2f ppm", *r.AcetonePPM))
	}
	if r.SoilRaw != nil {
		soil := poller.SoilPercentFromRaw(*r.SoilRaw)
		table.AddRow("Soil moisture", fmt.Sprintf("%d %% (raw %d)", soil, *r.SoilRaw))
	} else if r.SoilPercent != nil {
		table.AddRow("Soil moisture", fmt.Sprintf("%d %%", *r.SoilPercent))
	}
	if r.MotionDetected != nil {
		table.AddRow("Motion", onOff(*r.MotionDetected, "detected", "none"))
	}
	if r.RelayOn != nil {
		table.AddRow("Relay", onOff(*r.RelayOn, "ON", "off"))
	}
	if r.LedOn != nil {
		table.AddRow("LED", onOff(*r.LedOn, "ON", "off"))
	}
	table.Render()
}

func fmtFloat(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func fmtBool(v *bool) string {
	if v == nil {
		return "-"
	}
	if *v {
		return "yes"
	}
	return "no"
}

func onOff(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func init() {
	latestCmd.Flags().Bool("fahrenheit", false, "display temperature in Fahrenheit")

	historyCmd.Flags().Int("hours", 24, "window size in hours")
	historyCmd.Flags().Int("limit", 100, "maximum readings to return")

	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(historyCmd)
}
