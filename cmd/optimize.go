package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pitops/minedispatch/core/alert"
	"github.com/pitops/minedispatch/core/dispatch"
	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/infra/logger"
	"github.com/pitops/minedispatch/internal/eventbus"
	"github.com/pitops/minedispatch/simulator"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run a single dispatch round against the demo fleet",
	RunE:  optimizeOnce,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func optimizeOnce(cmd *cobra.Command, args []string) error {
	logg := logger.New("optimize-command")
	bus := eventbus.New()
	defer bus.Close()

	registry := fleet.NewRegistry(simulator.DemoFleet())
	manager, err := dispatch.NewManager(registry, alert.NewManager(), dispatch.Config{}, nil, bus, logg)
	if err != nil {
		return err
	}

	for _, c := range manager.Suggestions() {
		logg.Infof("candidate %s -> %s score %.1f (%s)", c.HaulerID, c.LoaderID, c.Score, c.Reason)
	}
	created := manager.AutoAssign()
	for _, a := range created {
		logg.Infof("committed %s: hauler %s -> loader %s, %s to %s (%s priority)",
			a.ID, a.HaulerID, a.LoaderID, a.Material, a.DestinationZone, a.Priority)
	}
	if len(created) == 0 {
		logg.Infof("no candidate cleared the auto-commit threshold")
	}
	return nil
}
