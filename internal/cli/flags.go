package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodewatch-systems/nodewatch/internal/models"
	"github.com/nodewatch-systems/nodewatch/pkg/output"
)

var relayCmd = newActuatorCmd(models.FlagRelay, "Control the relay actuator")
var ledCmd = newActuatorCmd(models.FlagLED, "Control the LED actuator")

// newActuatorCmd builds the shared on/off/status command tree for one
// control flag.
func newActuatorCmd(name, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long:  short + ". Commands take effect on the node's next poll.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "on",
		Short: "Switch " + name + " on",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setFlag(cmd, name, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "off",
		Short: "Switch " + name + " off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setFlag(cmd, name, false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the desired " + name + " state",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := apiClient().GetFlag(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to read %s state: %w", name, err)
			}
			if outputFormat == "json" {
				return output.JSON(map[string]interface{}{"flag": name, "value": value})
			}
			output.Info("%s: %s", name, onOff(value, "ON", "off"))
			return nil
		},
	})

	return cmd
}

func setFlag(cmd *cobra.Command, name string, value bool) error {
	applied, err := apiClient().SetFlag(cmd.Context(), name, value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	if outputFormat == "json" {
		return output.JSON(map[string]interface{}{"flag": name, "value": applied})
	}
	output.Success("%s set to %s", name, onOff(applied, "ON", "off"))
	return nil
}

func init() {
	rootCmd.AddCommand(relayCmd)
	rootCmd.AddCommand(ledCmd)
}
