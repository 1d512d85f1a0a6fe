package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/elevsim/datarecording"
	"github.com/sarchlab/elevsim/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report <recording.sqlite3>",
	Short: "Summarize the rides in a recording.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := report(context.Background(), args[0], cmd.OutOrStdout())
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

type elevatorRides struct {
	count int
	total float64
}

func report(ctx context.Context, path string, out io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.RideTable, tracing.RideEntry{})

	results, total, err := reader.Query(ctx, tracing.RideTable,
		datarecording.QueryParams{OrderBy: "StartTime"})
	if err != nil {
		return err
	}

	byElevator := make(map[string]*elevatorRides)
	sum := 0.0

	for _, r := range results {
		ride := r.(*tracing.RideEntry)
		sum += ride.Duration

		e, ok := byElevator[ride.Elevator]
		if !ok {
			e = &elevatorRides{}
			byElevator[ride.Elevator] = e
		}

		e.count++
		e.total += ride.Duration
	}

	fmt.Fprintf(out, "Rides: %d\n", total)
	if total == 0 {
		return nil
	}

	fmt.Fprintf(out, "Mean ride time: %v\n", seconds(sum/float64(total)))

	names := make([]string, 0, len(byElevator))
	for name := range byElevator {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := byElevator[name]
		fmt.Fprintf(out, "  %s: %d rides, mean %v\n",
			name, e.count, seconds(e.total/float64(e.count)))
	}

	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond)
}
