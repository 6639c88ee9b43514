package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/services/evaluation"
	"github.com/krishimitra/krishi_mitra/internal/speech"
)

var evalFlags struct {
	moisture, ph, nitrogen float64
	lang                   string
	speak                  bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Classify a soil sample and print the findings",
	Example: `  krishimitra evaluate --moisture 45 --ph 6.5 --nitrogen 80
  krishimitra evaluate --moisture 45 --ph 6.5 --nitrogen 80 --speak --lang hi`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.Float64Var(&evalFlags.moisture, "moisture", 0, "soil moisture in % (0-100)")
	f.Float64Var(&evalFlags.ph, "ph", 0, "soil pH (0-14)")
	f.Float64Var(&evalFlags.nitrogen, "nitrogen", 0, "nitrogen in ppm")
	f.StringVar(&evalFlags.lang, "lang", "en", "narration language (en, hi, te, ta)")
	f.BoolVar(&evalFlags.speak, "speak", false, "read the results aloud")
	for _, name := range []string{"moisture", "ph", "nitrogen"} {
		_ = evaluateCmd.MarkFlagRequired(name)
	}
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	var voice *speech.Voice
	var speaker speech.Speaker
	if evalFlags.speak {
		voice = speech.NewVoice(speech.NewWriterSynth(out, false), zap.NewNop().Sugar())
		defer voice.Close()
		speaker = voice
	}
	// nothing is saved from the command line
	p := evaluation.NewPipeline(nil, speaker, nil, zap.NewNop().Sugar())

	findings, err := p.Evaluate(entities.SoilSample{
		Moisture: evalFlags.moisture,
		PH:       evalFlags.ph,
		Nitrogen: evalFlags.nitrogen,
	})
	if err != nil {
		return err
	}
	renderFindings(out, findings)

	if voice == nil {
		return nil
	}
	if _, err := p.Speak(cmd.Context(), findings, evalFlags.lang); err != nil {
		return err
	}
	return waitSilent(cmd.Context(), voice)
}

func waitSilent(ctx context.Context, v *speech.Voice) error {
	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()
	for v.Speaking() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
