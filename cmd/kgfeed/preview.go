package main

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/cnclabs/kgfeed/pkg/feeder"
	"github.com/cnclabs/kgfeed/pkg/sampler"
)

var previewSteps int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Pull batches from the alternating head/tail feeder and report them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if previewSteps <= 0 {
			return errors.New("steps must be positive")
		}
		e, err := setup()
		if err != nil {
			return err
		}

		head, err := e.loader(sampler.HeadBatch)
		if err != nil {
			return err
		}
		tail, err := e.loader(sampler.TailBatch)
		if err != nil {
			return err
		}
		it, err := feeder.NewBidirectionalIterator(head, tail)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < previewSteps; i++ {
			b, err := it.Next()
			if err != nil {
				return err
			}

			negRows, negCols := 0, 0
			if b.Negative != nil {
				negRows, negCols = b.Negative.Dims()
			}
			e.logger.WithFields(logrus.Fields{
				"step":        it.Step(),
				"mode":        b.Mode,
				"rows":        b.Size(),
				"negative":    [2]int{negRows, negCols},
				"mean_weight": stat.Mean(b.Weights.RawVector().Data, nil),
			}).Info("batch")
		}

		e.logger.WithFields(logrus.Fields{
			"steps":       previewSteps,
			"head_epochs": head.Epoch(),
			"tail_epochs": tail.Epoch(),
			"seconds":     time.Since(start).Seconds(),
		}).Info("preview complete")
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVarP(&previewSteps, "steps", "n", 10, "number of batches to pull")
}
