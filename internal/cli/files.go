package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mwatdr/mwatdr/fingerprint"
	"github.com/mwatdr/mwatdr/ipfb"
	"github.com/mwatdr/mwatdr/outsignal"
)

func (a *app) ipfbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipfb",
		Short: "Inverse polyphase filter coefficient files",
	}

	inspect := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the tap count and per-tap range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ipfb.Read(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "taps: %d\nchannels: %d\n", f.Taps(), ipfb.Channels)
			for t := 0; t < f.Taps(); t++ {
				row := f.Row(t)
				lo, hi := row[0], row[0]
				for _, v := range row[1:] {
					lo, hi = min(lo, v), max(hi, v)
				}
				fmt.Fprintf(a.stdout, "tap %3d  min %-12g max %g\n", t, lo, hi)
			}
			return nil
		},
	}

	var taps int
	identity := &cobra.Command{
		Use:   "identity FILE",
		Short: "Write a pass-through filter with a unit centre tap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]float32, max(taps, 0))
			for t := range rows {
				rows[t] = make([]float32, ipfb.Channels)
			}
			if taps > 0 {
				for c := range rows[taps/2] {
					rows[taps/2][c] = 1
				}
			}
			if err := ipfb.WriteRows(args[0], rows); err != nil {
				return err
			}
			a.log.Info("wrote identity filter")
			return nil
		},
	}
	identity.Flags().IntVar(&taps, "taps", 12, "number of taps (1-255)")

	cmd.AddCommand(inspect, identity)
	return cmd
}

func (a *app) signalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Reconstructed time-domain signal files",
	}

	var allowEmpty bool
	inspect := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the sample count and range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := outsignal.Read(args[0], allowEmpty)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "samples: %d\n", len(s))
			if len(s) > 0 {
				lo, hi := s[0], s[0]
				for _, v := range s[1:] {
					lo, hi = min(lo, v), max(hi, v)
				}
				fmt.Fprintf(a.stdout, "min: %d\nmax: %d\n", lo, hi)
			}
			return nil
		},
	}
	inspect.Flags().BoolVar(&allowEmpty, "allow-empty", false, "accept an empty file")

	name := &cobra.Command{
		Use:   "name OBS_ID START_TIME TILE_ID CHAIN",
		Short: "Print the file name of a signal",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var nums [3]uint64
			for i := range nums {
				v, err := strconv.ParseUint(args[i], 10, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				nums[i] = v
			}
			if len(args[3]) != 1 {
				return fmt.Errorf("chain must be a single character, got %q", args[3])
			}
			fmt.Fprintln(a.stdout, outsignal.FileName(nums[0], nums[1], nums[2], args[3][0]))
			return nil
		},
	}

	parse := &cobra.Command{
		Use:   "parse NAME",
		Short: "Split a signal file name into its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, ok := outsignal.ParseFileName(args[0])
			if !ok {
				return &exitCodeError{code: 1, err: fmt.Errorf("%q is not a signal file name", args[0])}
			}
			fmt.Fprintf(a.stdout, "observation_id: %d\nstart_time: %d\ntile_id: %d\nsignal_chain: %c\n",
				n.ObservationID, n.StartTime, n.TileID, n.SignalChain)
			return nil
		},
	}

	cmd.AddCommand(inspect, name, parse)
	return cmd
}

func (a *app) fingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint FILE...",
		Short: "Print the MD5 digest and modification time of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				fp, err := fingerprint.Of(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s  %s\n", fp, p)
			}
			return nil
		},
	}
}
