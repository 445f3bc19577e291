package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cnclabs/kgfeed/pkg/sampler"
)

var statsMode string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report graph sizes, index sizes and subsampling weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := sampler.ParseMode(statsMode)
		if err != nil {
			return err
		}
		e, err := setup()
		if err != nil {
			return err
		}

		heads := map[int64]struct{}{}
		tails := map[int64]struct{}{}
		for _, t := range e.kg.Triples {
			heads[t.Head] = struct{}{}
			tails[t.Tail] = struct{}{}
		}

		d, err := e.dataset(mode)
		if err != nil {
			return err
		}
		ws := sampler.WeightStats(d)

		e.logger.WithFields(logrus.Fields{
			"mode":             d.Mode(),
			"entities":         d.NumEntities(),
			"derived_entities": d.DerivedEntities(),
			"relations":        d.NumRelations(),
			"triples":          d.Len(),
			"distinct_heads":   len(heads),
			"distinct_tails":   len(tails),
		}).Info("graph")
		e.logger.WithFields(logrus.Fields{
			"mean":   ws.Mean,
			"stddev": ws.StdDev,
			"min":    ws.Min,
			"max":    ws.Max,
		}).Info("subsampling weights")

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsMode, "mode", "m", string(sampler.TailBatch), "head-batch or tail-batch")
}
