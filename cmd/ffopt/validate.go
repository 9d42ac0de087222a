package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/anneal"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
)

func newValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, compile expressions and select the optimizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			model, err := evaluator.NewModel(cfg)
			if err != nil {
				return err
			}
			params, err := forcefield.NewSet(cfg.Parameters)
			if err != nil {
				return err
			}
			opt, err := anneal.New(cfg.Algorithm, params, model)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: algorithm=%s parameters=%d movable=%d objectives=%d\n",
				opt.Kind(), params.Len(), params.MovableCount(), len(model.Objectives()))
			return nil
		},
	}
}
