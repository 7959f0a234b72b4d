package blockconfig

import "github.com/wonny/tradeblocks/internal/contracts"

// Config is a super-block definition file
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	SuperBlock SuperBlock `yaml:"super_block" json:"super_block"`
	Analysis   Analysis   `yaml:"analysis" json:"analysis"`
}

// Meta 메타 정보
type Meta struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// SuperBlock 합성 대상과 정렬 방식
type SuperBlock struct {
	Alignment    string      `yaml:"alignment" json:"alignment"`           // intersection, union, earliest-common, latest-common
	RiskFreeRate *float64    `yaml:"risk_free_rate" json:"risk_free_rate"` // nil → 서버 기본값
	Components   []Component `yaml:"components" json:"components"`
}

// Component references one stored block
type Component struct {
	BlockID string `yaml:"block_id" json:"block_id"`
	Name    string `yaml:"name" json:"name"` // 비어 있으면 block_id 사용
}

// Analysis 추가 분석 옵션
type Analysis struct {
	CorrelationMethod    string `yaml:"correlation_method" json:"correlation_method"`       // pearson, spearman
	CorrelationAlignment string `yaml:"correlation_alignment" json:"correlation_alignment"` // common, zero-fill
	Benchmark            string `yaml:"benchmark" json:"benchmark"`                         // KOSPI, KOSDAQ, KPI200
}

// Alignment returns the typed alignment strategy
func (c *Config) Alignment() contracts.SuperBlockAlignment {
	return contracts.SuperBlockAlignment(c.SuperBlock.Alignment)
}

// DisplayName returns the component label used in combined output
func (c Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.BlockID
}

// BlockIDs lists the referenced blocks in file order
func (c *Config) BlockIDs() []string {
	ids := make([]string, len(c.SuperBlock.Components))
	for i, comp := range c.SuperBlock.Components {
		ids[i] = comp.BlockID
	}
	return ids
}
