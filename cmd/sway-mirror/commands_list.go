package main

import (
	"encoding/json"
	"fmt"

	"github.com/pescheckit/sway-mirror/internal/log"
	"github.com/pescheckit/sway-mirror/internal/session"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available outputs",
	Long:  "Query the compositor for output names, descriptions, modes, positions and scales via wl_output and xdg-output",
	Run: func(cmd *cobra.Command, args []string) {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		listOutputs(jsonFlag)
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "Output in JSON format")
}

type listJSON struct {
	Outputs []outputJSON `json:"outputs"`
}

type outputJSON struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Width         int32  `json:"width"`
	Height        int32  `json:"height"`
	Refresh       int32  `json:"refresh"`
	X             int32  `json:"x"`
	Y             int32  `json:"y"`
	LogicalWidth  int32  `json:"logical_width"`
	LogicalHeight int32  `json:"logical_height"`
	Scale         int32  `json:"scale"`
}

func queryOutputs() ([]outputJSON, error) {
	sess, err := session.Connect()
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	list := sess.Outputs().List()
	result := make([]outputJSON, 0, len(list))
	for _, o := range list {
		result = append(result, outputJSON{
			Name:          o.Name,
			Description:   o.Description,
			Width:         o.Width,
			Height:        o.Height,
			Refresh:       o.Refresh,
			X:             o.X,
			Y:             o.Y,
			LogicalWidth:  o.LogicalWidth,
			LogicalHeight: o.LogicalHeight,
			Scale:         o.Scale,
		})
	}
	return result, nil
}

func listOutputs(asJSON bool) {
	outputs, err := queryOutputs()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if asJSON {
		data, err := json.Marshal(listJSON{Outputs: outputs})
		if err != nil {
			log.Fatalf("failed to marshal JSON: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Println("Available outputs:")
	for _, out := range outputs {
		fmt.Printf("  %s - %s (%dx%d)\n", out.Name, out.Description, out.Width, out.Height)
		fmt.Printf("      Position: %d,%d  Scale: %d", out.X, out.Y, out.Scale)
		if out.LogicalWidth > 0 && out.LogicalHeight > 0 {
			fmt.Printf("  Logical: %dx%d", out.LogicalWidth, out.LogicalHeight)
		}
		if out.Refresh > 0 {
			fmt.Printf("  Refresh: %.2f Hz", float64(out.Refresh)/1000.0)
		}
		fmt.Println()
	}
}
