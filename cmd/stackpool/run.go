package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"stackpool/metrics"
	"stackpool/workload"
)

func newRunCommand(a *app) *cobra.Command {
	def := workload.DefaultConfig()
	var (
		output      string
		dumpMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a randomized push/pop/free workload and print a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := def
			if err := a.v.Unmarshal(&cfg); err != nil {
				return errors.Wrap(err, "decode workload config")
			}

			collector := metrics.NewPoolCollector("stackpool")
			rep, err := workload.Run(cmd.Context(), cfg, a.logger, collector)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := writeReport(w, output, rep); err != nil {
				return err
			}
			if dumpMetrics {
				return writeMetrics(w, collector)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("shards", def.Shards, "concurrent shards, one pool each")
	f.Int("rounds", def.Rounds, "pools created and released per shard")
	f.Int("stacks", def.Stacks, "stacks per pool")
	f.Int("ops", def.Ops, "operations per round")
	f.Uint64("seed", def.Seed, "random seed")
	f.Int("cap-hint", def.CapHint, "initial node capacity of each pool")
	f.Int("push-weight", def.PushWeight, "relative frequency of push")
	f.Int("pop-weight", def.PopWeight, "relative frequency of pop")
	f.Int("free-weight", def.FreeWeight, "relative frequency of free-stack")
	f.Int("recycler-size", def.RecyclerSize, "parked storage slices per size class")
	f.Int("recycler-limit", def.RecyclerLimit, "unused parked slices before trimming starts")
	f.StringVarP(&output, "output", "o", "text", "report format: text, json or yaml")
	f.BoolVar(&dumpMetrics, "metrics", false, "print Prometheus metrics after the report")
	return cmd
}

func writeReport(w io.Writer, format string, rep *workload.Report) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode report")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return errors.Wrap(err, "encode report")
		}
		return enc.Close()
	case "text", "":
		return writeText(w, rep)
	default:
		return errors.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

func writeText(w io.Writer, rep *workload.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "shard\trounds\tpushes\tpops\treused\tgrows\tfreed\tmax depth\tnodes\tcapacity\t")
	for _, s := range rep.Shards {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			s.Shard, s.Rounds, s.Stats.Pushes, s.Stats.Pops, s.Stats.Reused,
			s.Stats.Grows, s.Stats.NodesFreed, s.MaxDepth, s.Stats.Nodes, s.Stats.Capacity)
	}
	t := rep.Total
	fmt.Fprintf(tw, "total\t\t%d\t%d\t%d\t%d\t%d\t\t%d\t%d\t\n",
		t.Pushes, t.Pops, t.Reused, t.Grows, t.NodesFreed, t.Nodes, t.Capacity)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "parked storage: %d, elapsed: %s\n", rep.Parked, rep.Elapsed)
	return err
}

func writeMetrics(w io.Writer, c *metrics.PoolCollector) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return errors.Wrap(err, "register collector")
	}
	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
