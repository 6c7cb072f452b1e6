package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/pkg/output"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [channel=value ...]",
	Short: "Post a reading by hand",
	Long:  "Post a reading with the given channel values, mostly for poking at a dev server",
	Example: `  nwctl ingest temperature=24.5 humidity=61
  nwctl ingest temperature=22 relay_on=true motion_detected=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := make(map[string]interface{}, len(args))
		for _, arg := range args {
			key, raw, found := strings.Cut(arg, "=")
			if !found || key == "" {
				return fmt.Errorf("expected channel=value, got %q", arg)
			}
			payload[key] = coerce(raw)
		}

		res, err := apiClient().Ingest(cmd.Context(), payload)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}

		if outputFormat == "json" {
			return output.JSON(res)
		}
		output.Success("Saved reading #%d at %s", res.ID, res.Timestamp.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// coerce guesses the JSON type of a command-line value. Unparseable
// values pass through as strings; the server's coercion handles those.
func coerce(raw string) interface{} {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
