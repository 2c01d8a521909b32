package dataprocessing

import (
	"fmt"

	"tablenorm/internal/config"
	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/exporter"
	"tablenorm/internal/files"
	"tablenorm/internal/normalizer"
)

// Settings bundles everything a Processor needs from the configuration
type Settings struct {
	Normalizer  normalizer.Options
	Read        files.ReadOptions
	Export      exporter.Options
	PreviewRows int
	Workers     int
}

// SettingsFromConfig translates a validated configuration into processor
// settings. Without configured rules the built-in employee rules apply, using
// the configured fill strategy and case style.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	enc, err := files.ParseEncoding(cfg.Input.Encoding)
	if err != nil {
		return Settings{}, apperrors.NewConfigError("invalid input encoding", err)
	}
	inDelim, err := config.ParseDelimiter(cfg.Input.Delimiter)
	if err != nil {
		return Settings{}, apperrors.NewConfigError("invalid input delimiter", err)
	}
	outDelim, err := config.ParseDelimiter(cfg.Output.Delimiter)
	if err != nil {
		return Settings{}, apperrors.NewConfigError("invalid output delimiter", err)
	}

	preferred := cfg.Cleaning.PreferredOrder
	if len(preferred) == 0 {
		preferred = normalizer.DefaultPreferredOrder()
	}

	synonyms := normalizer.DefaultSynonyms()
	for from, to := range cfg.Cleaning.Synonyms {
		synonyms[from] = to
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = config.DefaultWorkers
	}

	return Settings{
		Normalizer: normalizer.Options{
			Rules:          columnRules(cfg.Cleaning),
			Synonyms:       synonyms,
			PreferredOrder: preferred,
			DateOrder:      normalizer.DateOrder(cfg.Cleaning.DateOrder),
			DefaultFill:    normalizer.FillStrategy(cfg.Cleaning.Fill),
			DefaultCase:    normalizer.CaseStyle(cfg.Cleaning.Case),
		},
		Read: files.ReadOptions{
			Delimiter: inDelim,
			Encoding:  enc,
			Sheet:     cfg.Input.Sheet,
		},
		Export: exporter.Options{
			BOMPrefix:   cfg.Output.BOM,
			Delimiter:   outDelim,
			SQLiteTable: cfg.Output.SQLiteTable,
			Sheet:       cfg.Output.Sheet,
		},
		PreviewRows: config.DefaultPreviewRows,
		Workers:     workers,
	}, nil
}

// columnRules returns the configured rules, or the default rules with their
// fill and case left to the cleaning-wide defaults. A rule without its own
// fill strategy takes the cleaning-wide constant.
func columnRules(cleaning config.CleaningConfig) []normalizer.ColumnRule {
	var rules []normalizer.ColumnRule
	if len(cleaning.Rules) == 0 {
		rules = normalizer.DefaultRules()
		for i := range rules {
			rules[i].Fill = ""
			rules[i].Case = ""
		}
	} else {
		rules = make([]normalizer.ColumnRule, len(cleaning.Rules))
		for i, rc := range cleaning.Rules {
			rules[i] = normalizer.ColumnRule{
				Column:    rc.Column,
				Type:      normalizer.ColumnType(rc.Type),
				Case:      normalizer.CaseStyle(rc.Case),
				Fill:      normalizer.FillStrategy(rc.Fill),
				FillValue: rc.FillValue,
			}
		}
	}

	for i := range rules {
		if rules[i].Fill == "" {
			rules[i].FillValue = cleaning.FillValue
		}
	}
	return rules
}

func (s Settings) String() string {
	return fmt.Sprintf("rules=%d date_order=%s fill=%s case=%s workers=%d",
		len(s.Normalizer.Rules), s.Normalizer.DateOrder, s.Normalizer.DefaultFill,
		s.Normalizer.DefaultCase, s.Workers)
}
