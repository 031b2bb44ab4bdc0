package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rengatools/geometry/internal/geo"
	"github.com/rengatools/geometry/internal/geometry"
	"github.com/rengatools/geometry/internal/handlers"
	"github.com/rengatools/geometry/pkg/core"
	"github.com/rengatools/geometry/pkg/nativeabi"

	"github.com/spf13/cobra"
)

// rootCmd runs the library functions from a shell. It is only reachable
// when the package is built as an executable.
var rootCmd = &cobra.Command{
	Use:           LibraryName,
	Short:         "Run Renga geometry functions from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// extentCmd prints the bounding-box extent of a point list
var extentCmd = &cobra.Command{
	Use:   "extent <points-json | x,y[,z]...>",
	Short: "Compute the bounding-box extent of a point list",
	Long: `Compute width, depth and height of the points' bounding box.

Points are a JSON array of [x,y] or [x,y,z] entries, or one x,y[,z]
argument per point, for example:
  renga_geometry extent '[[0,0,0],[1000,500,300]]'
  renga_geometry extent 0,0,0 1000,500,300`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtent,
}

// pathCmd prints the path between two point ids
var pathCmd = &cobra.Command{
	Use:   "path <start> <end>",
	Short: "Find the path between two point ids",
	Args:  cobra.ExactArgs(2),
	RunE:  runPath,
}

// commandCmd runs a raw text command as GeometryCommand would
var commandCmd = &cobra.Command{
	Use:   "command <COMMAND|arg...>",
	Short: "Run a text command and print the host response",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), nativeabi.RunCommand(args[0]))
	},
}

// auditCmd prints the most recent journaled calls
var auditCmd = &cobra.Command{
	Use:   "audit [n]",
	Short: "Print the most recent journaled native calls",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAudit,
}

// commandsCmd lists the text commands GeometryCommand understands
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the registered text commands",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range nativeabi.GetDispatcher().Commands() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the library version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s)\n", LibraryName, CurrentVersion, BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(extentCmd, pathCmd, commandCmd, auditCmd, commandsCmd, versionCmd)
}

// parsePointArgs reads a single JSON point list or one x,y[,z] per arg.
func parsePointArgs(args []string) ([]core.Point3D, error) {
	if len(args) == 1 && strings.HasPrefix(strings.TrimSpace(args[0]), "[") {
		return geo.ParsePoints(args[0])
	}
	points := make([]core.Point3D, 0, len(args))
	for _, arg := range args {
		p, err := geo.Point3DFromString(arg)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", arg, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func runExtent(cmd *cobra.Command, args []string) error {
	points, err := parsePointArgs(args)
	if err != nil {
		return err
	}
	result := geometryService.CalculateGeometry(points, 0, 0)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	return nil
}

func runPath(cmd *cobra.Command, args []string) error {
	start, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid start id %q: %w", args[0], err)
	}
	end, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid end id %q: %w", args[1], err)
	}

	path, ok := geometryService.FindPath(int32(start), int32(end), geometry.MinPathCapacity)
	if !ok {
		return geometry.ErrPathBufferTooSmall
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	n := handlers.DefaultAuditLimit
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		n = v
	}

	calls, err := geometryService.RecentCalls(n)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calls: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func main() {
	err := rootCmd.Execute()
	shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
