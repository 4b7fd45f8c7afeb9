package prompt

// Probe names the judged dimension an instruction measures.
type Probe string

// Judged probes.
const (
	ProbeRelevance Probe = "relevance"
	ProbeFormality Probe = "formality"
	ProbeBias      Probe = "bias"
)

// Probes lists every probe in scoring order.
var Probes = []Probe{ProbeRelevance, ProbeFormality, ProbeBias}

// Config describes a judge instruction loaded from YAML frontmatter.
type Config struct {
	Slug           string `yaml:"slug" json:"slug"`
	Name           string `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string `yaml:"description,omitempty" json:"description,omitempty"`
	Version        string `yaml:"version,omitempty" json:"version,omitempty"`
	Probe          Probe  `yaml:"probe" json:"probe"`
	Mode           string `yaml:"mode" json:"mode"`
	SystemTemplate string `yaml:"system_template,omitempty" json:"system_template,omitempty"`
	// Scale documents how the judge answer maps onto [0, 1].
	Scale string `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Prompt wraps a validated instruction with its source.
type Prompt struct {
	Config Config
	Source string
}

// Instruction returns the instruction text sent to the judge.
func (p *Prompt) Instruction() string {
	if p == nil {
		return ""
	}
	return p.Config.SystemTemplate
}

// SlugFor returns the registry slug for probe in mode, e.g. "bias-local".
func SlugFor(probe Probe, mode string) string {
	return string(probe) + "-" + mode
}
