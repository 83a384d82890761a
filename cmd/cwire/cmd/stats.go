package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"cwire/cli"
	"cwire/value"
	"cwire/wire"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Summarizes the items in the input by type.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cmd, args)
		if err != nil {
			return err
		}
		agg := &statsAgg{counts: make(map[value.Kind]int)}
		dec := newDecoder(data)
		items := 0
		for {
			if _, err := dec.Peek(); err != nil {
				if wire.IsEndOfInput(err) {
					break
				}
				return err
			}
			v, err := value.Decode(dec)
			if err != nil {
				return err
			}
			agg.walk(v, 1)
			items++
		}
		logger.Debug("aggregated input", "items", items, "max_depth", agg.maxDepth)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Kind", "Count"})
		for kind := value.KindUint; kind <= value.KindFloat; kind++ {
			if agg.counts[kind] == 0 {
				continue
			}
			table.Append([]string{kind.String(), strconv.Itoa(agg.counts[kind])})
		}
		table.Append([]string{"top-level items", strconv.Itoa(items)})
		table.Append([]string{"max depth", strconv.Itoa(agg.maxDepth)})
		table.Append([]string{"string bytes", strconv.Itoa(agg.stringBytes)})
		table.Append([]string{"input bytes", strconv.Itoa(len(data))})
		table.Render()
		return nil
	},
}

type statsAgg struct {
	counts      map[value.Kind]int
	maxDepth    int
	stringBytes int
}

func (s *statsAgg) walk(v value.Value, depth int) {
	if depth > s.maxDepth {
		s.maxDepth = depth
	}
	s.counts[v.Kind()]++
	switch t := v.(type) {
	case value.Bytes:
		s.stringBytes += len(t)
	case value.Text:
		s.stringBytes += len(t)
	case value.Array:
		for _, el := range t {
			s.walk(el, depth+1)
		}
	case value.Map:
		for _, p := range t {
			s.walk(p.Key, depth+1)
			s.walk(p.Value, depth+1)
		}
	case value.Tag:
		s.walk(t.Inner, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
