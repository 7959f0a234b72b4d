package blockconfig

import (
	"fmt"
	"math"

	"github.com/wonny/tradeblocks/internal/contracts"
)

// ValidationError 검증 실패 (로딩 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.Name == "" {
		return ValidationError{"meta.name", "required"}
	}

	// === SuperBlock ===
	if !cfg.Alignment().Valid() {
		return ValidationError{"super_block.alignment", fmt.Sprintf("unknown alignment %q", cfg.SuperBlock.Alignment)}
	}
	if rf := cfg.SuperBlock.RiskFreeRate; rf != nil {
		if math.IsNaN(*rf) || *rf <= -100 || *rf > 100 {
			return ValidationError{"super_block.risk_free_rate", "must be in (-100, 100]"}
		}
	}
	if len(cfg.SuperBlock.Components) == 0 {
		return ValidationError{"super_block.components", "at least one component required"}
	}

	ids := make(map[string]struct{}, len(cfg.SuperBlock.Components))
	names := make(map[string]struct{}, len(cfg.SuperBlock.Components))
	for i, comp := range cfg.SuperBlock.Components {
		field := fmt.Sprintf("super_block.components[%d]", i)
		if comp.BlockID == "" {
			return ValidationError{field + ".block_id", "required"}
		}
		if _, dup := ids[comp.BlockID]; dup {
			return ValidationError{field + ".block_id", fmt.Sprintf("duplicate block %q", comp.BlockID)}
		}
		ids[comp.BlockID] = struct{}{}

		// 합성 결과의 ComponentValues 키가 겹치면 안 됨
		if _, dup := names[comp.DisplayName()]; dup {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate name %q", comp.DisplayName())}
		}
		names[comp.DisplayName()] = struct{}{}
	}

	// === Analysis ===
	switch contracts.CorrelationMethod(cfg.Analysis.CorrelationMethod) {
	case contracts.MethodPearson, contracts.MethodSpearman:
	default:
		return ValidationError{"analysis.correlation_method", "must be pearson or spearman"}
	}
	switch contracts.AlignmentPolicy(cfg.Analysis.CorrelationAlignment) {
	case contracts.AlignCommon, contracts.AlignZeroFill:
	default:
		return ValidationError{"analysis.correlation_alignment", "must be common or zero-fill"}
	}

	return nil
}

// Check returns non-fatal recommendations
func Check(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.SuperBlock.Components) == 1 {
		warnings = append(warnings, Warning{
			Code:    "SINGLE_COMPONENT",
			Message: "super block has one component; combined stats equal the component stats",
		})
	}
	if cfg.Alignment() == contracts.AlignUnion {
		warnings = append(warnings, Warning{
			Code:    "UNION_FORWARD_FILL",
			Message: "union alignment forward-fills missing days, flat stretches lower volatility",
		})
	}
	if cfg.Meta.Version == "" {
		warnings = append(warnings, Warning{
			Code:    "NO_VERSION",
			Message: "meta.version is empty; hashes are the only way to tell revisions apart",
		})
	}

	return warnings
}
