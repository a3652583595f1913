package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curbz/navgraph/internal/world"
	"github.com/curbz/navgraph/pkg/geometry"
)

var (
	radiusNM  float64
	runway    string
	transName string

	rootCmd = &cobra.Command{
		Use:               "navgraph",
		Short:             "Load X-Plane navigation data and query the resulting graph",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Load all navigation data and print a summary",
		RunE:  runLoad,
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Load all navigation data and print record counters",
		RunE:  runStats,
	}
	airportCmd = &cobra.Command{
		Use:   "airport [keyword]",
		Short: "Search airports by id or name",
		Args:  cobra.ExactArgs(1),
		RunE:  runAirport,
	}
	fixCmd = &cobra.Command{
		Use:   "fix [id]",
		Short: "List airports and fixes with an identifier",
		Args:  cobra.ExactArgs(1),
		RunE:  runFix,
	}
	nearCmd = &cobra.Command{
		Use:   "near [lat] [lon]",
		Short: "List nodes within a radius of a position",
		Args:  cobra.ExactArgs(2),
		RunE:  runNear,
	}
	routeCmd = &cobra.Command{
		Use:   "route [airport] [procedure]",
		Short: "Print the node sequence of a SID, STAR or approach",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoute,
	}
	planCmd = &cobra.Command{
		Use:   "plan [file.fms]",
		Short: "Resolve the waypoints of a flight plan",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}
	metarCmd = &cobra.Command{
		Use:   "metar [icao]",
		Short: "Print the newest METAR report of a station",
		Args:  cobra.ExactArgs(1),
		RunE:  runMetar,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&xplaneRoot, "root", "", "X-Plane installation directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override")

	nearCmd.Flags().Float64VarP(&radiusNM, "radius", "r", 10, "radius in nautical miles")
	routeCmd.Flags().StringVar(&runway, "runway", "", "runway, e.g. 16L")
	routeCmd.Flags().StringVar(&transName, "transition", "", "enroute or approach transition")

	rootCmd.AddCommand(loadCmd, statsCmd, airportCmd, fixCmd, nearCmd, routeCmd, planCmd, metarCmd)
}

// loadWorld runs a full load that Ctrl-C cancels. File errors are
// reported but do not stop the command.
func loadWorld(cmd *cobra.Command) (*world.World, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		log.WithError(err).Warn("navigation data loaded with errors")
	}
	return service.World(), nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	w, err := loadWorld(cmd)
	if err != nil {
		return err
	}
	s := w.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "regions     %d\n", s.Regions)
	fmt.Fprintf(out, "airports    %d\n", s.Airports)
	fmt.Fprintf(out, "fixes       %d (%d navaids)\n", s.Fixes, s.Navaids)
	fmt.Fprintf(out, "user fixes  %d\n", s.UserFixes)
	fmt.Fprintf(out, "airways     %d\n", s.Airways)
	fmt.Fprintf(out, "procedures  %d\n", s.Procedures)
	fmt.Fprintf(out, "connections %d\n", s.Connections)
	fmt.Fprintf(out, "grid cells  %d\n", s.GridCells)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if _, err := loadWorld(cmd); err != nil {
		return err
	}
	samples, err := service.Metrics().Counters()
	if err != nil {
		return err
	}
	for _, s := range samples {
		fmt.Fprintf(cmd.OutOrStdout(), "%-34s %-22s %8.0f\n", s.Name, s.Label, s.Value)
	}
	return nil
}

func runAirport(cmd *cobra.Command, args []string) error {
	w, err := loadWorld(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, apt := range w.FindAirport(args[0]) {
		printAirport(out, apt)
	}
	return nil
}

func printAirport(out io.Writer, apt *world.Airport) {
	loc := apt.Location()
	fmt.Fprintf(out, "%s %s (%.4f, %.4f) elev %d ft", apt.ID(), apt.Name, loc.Lat, loc.Lon, apt.Elevation)
	if apt.Closed {
		fmt.Fprint(out, " closed")
	}
	fmt.Fprintln(out)

	var names []string
	for _, r := range apt.Runways() {
		names = append(names, r.Name())
	}
	if len(names) > 0 {
		fmt.Fprintf(out, "  runways     %s\n", strings.Join(names, " "))
	}
	fmt.Fprintf(out, "  procedures  %d SID, %d STAR, %d approach\n", len(apt.SIDs()), len(apt.STARs()), len(apt.Approaches()))
}

func runFix(cmd *cobra.Command, args []string) error {
	w, err := loadWorld(cmd)
	if err != nil {
		return err
	}
	for _, n := range w.FindNavNodes(args[0]) {
		printNode(cmd.OutOrStdout(), n)
	}
	return nil
}

func printNode(out io.Writer, n world.NavNode) {
	loc := n.Location()
	fmt.Fprintf(out, "%-8s %-10s %9.4f %10.4f", n.Kind(), n.ID(), loc.Lat, loc.Lon)
	if f, ok := n.(*world.Fix); ok {
		fmt.Fprintf(out, " %s", f.RegionID())
		switch {
		case f.VOR != nil:
			fmt.Fprintf(out, " VOR %.2f", float64(f.VOR.KHz)/1000)
		case f.NDB != nil:
			fmt.Fprintf(out, " NDB %d", f.NDB.KHz)
		case f.ILS != nil:
			fmt.Fprintf(out, " ILS %s", f.ILS.Runway)
		}
	}
	fmt.Fprintln(out)
}

func runNear(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}

	w, err := loadWorld(cmd)
	if err != nil {
		return err
	}
	for _, n := range w.NodesWithin(geometry.Point{Lat: lat, Lon: lon}, radiusNM) {
		printNode(cmd.OutOrStdout(), n)
	}
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	w, err := loadWorld(cmd)
	if err != nil {
		return err
	}
	apt := w.FindAirportByID(args[0])
	if apt == nil {
		return fmt.Errorf("unknown airport %s", args[0])
	}

	id := strings.ToUpper(args[1])
	for _, kind := range []world.ProcedureKind{world.ProcedureSID, world.ProcedureSTAR, world.ProcedureApproach} {
		proc := apt.Procedure(kind, id)
		if proc == nil {
			continue
		}
		nodes, ok := proc.Sequence(runway, transName)
		if !ok {
			return fmt.Errorf("%s has no transition %s", proc, transName)
		}
		fmt.Fprintln(cmd.OutOrStdout(), proc)
		for _, n := range nodes {
			printNode(cmd.OutOrStdout(), n)
		}
		return nil
	}
	return fmt.Errorf("no procedure %s at %s", id, apt.ID())
}

func runPlan(cmd *cobra.Command, args []string) error {
	if _, err := loadWorld(cmd); err != nil {
		return err
	}
	nodes, err := service.LoadFlightPlan(args[0])
	if err != nil {
		return err
	}
	for _, n := range nodes {
		printNode(cmd.OutOrStdout(), n)
	}
	return nil
}

func runMetar(cmd *cobra.Command, args []string) error {
	if err := service.ReloadMetar(); err != nil {
		return err
	}
	m, ok := service.Metar(args[0])
	if !ok {
		return fmt.Errorf("no METAR for %s", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", m.Issued.Format("2006-01-02 15:04"), m.Raw)
	return nil
}
