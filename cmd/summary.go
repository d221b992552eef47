package cmd

import (
	"fmt"

	"github.com/kilianp07/solarace/core/model"
)

func printSummary(it *model.RouteItinerary) {
	fmt.Printf("run %s: %s\n", it.RunID, it.Terminal)
	fmt.Printf("  days:            %d\n", len(it.Days))
	fmt.Printf("  distance:        %.1f km\n", it.TotalDistanceKm)
	fmt.Printf("  solar harvest:   %.1f kWh\n", it.TotalEnergyProductionKWh)
	fmt.Printf("  consumption:     %.1f kWh\n", it.TotalEnergyConsumptionKWh)
	fmt.Printf("  charging time:   %.1f h\n", it.TotalChargingHours)
	fmt.Printf("  average battery: %.0f%%\n", it.AverageBatteryPct)
	if it.Terminal == model.DestinationReached && it.EstimatedArrivalDate != "" {
		fmt.Printf("  arrival:         %s %s\n", it.EstimatedArrivalDate, it.EstimatedArrivalTime)
	}
}
