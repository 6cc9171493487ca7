package feed

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/rs/zerolog/log"
)

// DisruptionFilter is a compiled expr program over a disruption's tags,
// status and severity. Keeping the rule as an expression makes the domain
// filter auditable from configuration rather than buried in code.
type DisruptionFilter struct {
	program *vm.Program
}

func filterEnv(disruption *transit.Disruption) map[string]interface{} {
	tags := disruption.Tags
	if tags == nil {
		tags = []string{}
	}

	return map[string]interface{}{
		"tags":     tags,
		"status":   disruption.Status,
		"severity": disruption.Severity.Name,
	}
}

func CompileDisruptionFilter(expression string) (*DisruptionFilter, error) {
	program, err := expr.Compile(expression,
		expr.Env(filterEnv(&transit.Disruption{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, err
	}

	return &DisruptionFilter{program: program}, nil
}

func (f *DisruptionFilter) Matches(disruption *transit.Disruption) bool {
	result, err := expr.Run(f.program, filterEnv(disruption))
	if err != nil {
		log.Error().Err(err).Str("disruption", disruption.ID).Msg("Disruption filter failed")
		return false
	}

	matches, ok := result.(bool)
	return ok && matches
}
