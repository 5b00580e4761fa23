package config

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Catalogfile represents the structure of the kiln.yaml catalog.
type Catalogfile struct {
	Version  string      `yaml:"version"`
	Settings SettingsDTO `yaml:"settings"`
	Targets  TargetsDTO  `yaml:"targets"`
}

// SettingsDTO represents the run-wide settings block.
type SettingsDTO struct {
	Prefix           string            `yaml:"prefix"`
	WorkDir          string            `yaml:"work_dir"`
	PatchDir         string            `yaml:"patch_dir"`
	Jobs             int               `yaml:"jobs"`
	Architectures    []string          `yaml:"architectures"`
	DeploymentTarget string            `yaml:"deployment_target"`
	Fetch            FetchDTO          `yaml:"fetch"`
	Environment      map[string]string `yaml:"environment"`
}

// FetchDTO represents download settings.
type FetchDTO struct {
	Retries *int   `yaml:"retries"`
	Timeout string `yaml:"timeout"`
}

// TargetDTO represents a target definition in the catalog.
type TargetDTO struct {
	Kind          string            `yaml:"kind"`
	Version       string            `yaml:"version"`
	MultiPlatform *bool             `yaml:"multi_platform"`
	Prerequisites []string          `yaml:"prerequisites"`
	Source        SourceDTO         `yaml:"source"`
	Detect        string            `yaml:"detect"`
	Installs      []string          `yaml:"installs"`
	Generator     string            `yaml:"generator"`
	Options       Pairs             `yaml:"options"`
	AppendOptions Pairs             `yaml:"append_options"`
	Environment   map[string]string `yaml:"environment"`
	ExtraArgs     string            `yaml:"extra_args"`
	Commands      CommandsDTO       `yaml:"commands"`
	Conditionals  []ConditionalDTO  `yaml:"conditionals"`
	PostBuild     PostBuildDTO      `yaml:"post_build"`
}

// SourceDTO represents the source of a target.
type SourceDTO struct {
	URL      string   `yaml:"url"`
	Checksum string   `yaml:"checksum"`
	Git      string   `yaml:"git"`
	Ref      string   `yaml:"ref"`
	Patches  []string `yaml:"patches"`
}

// CommandsDTO lists the command lines of a manual target.
type CommandsDTO struct {
	Configure []string `yaml:"configure"`
	Build     []string `yaml:"build"`
	Install   []string `yaml:"install"`
}

// ConditionalDTO represents adjustments enabled by a feature.
type ConditionalDTO struct {
	When          string            `yaml:"when"`
	Options       Pairs             `yaml:"options"`
	AppendOptions Pairs             `yaml:"append_options"`
	Environment   map[string]string `yaml:"environment"`
	Patches       []string          `yaml:"patches"`
}

// PostBuildDTO represents post-install touch-ups.
type PostBuildDTO struct {
	Rewrite   []RewriteDTO `yaml:"rewrite"`
	CopyToBin []string     `yaml:"copy_to_bin"`
	Rename    Pairs        `yaml:"rename"`
}

// RewriteDTO maps line prefixes of an installed file to their replacement.
type RewriteDTO struct {
	File  string `yaml:"file"`
	Lines Pairs  `yaml:"lines"`
}

// Pair is one entry of a YAML mapping. Null is set for entries without a value.
type Pair struct {
	Key   string
	Value string
	Null  bool
}

// Pairs is a YAML mapping of scalars that keeps declaration order.
type Pairs []Pair

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("expected a mapping"), "line", node.Line)
	}
	out := make(Pairs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return zerr.With(zerr.With(zerr.New("value must be a scalar"), "key", k.Value), "line", v.Line)
		}
		out = append(out, Pair{Key: k.Value, Value: v.Value, Null: v.Tag == "!!null"})
	}
	*p = out
	return nil
}

// NamedTarget is a target together with its catalog key.
type NamedTarget struct {
	Name   string
	Line   int
	Target TargetDTO
}

// TargetsDTO is the targets mapping in declaration order.
type TargetsDTO []NamedTarget

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TargetsDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return zerr.With(zerr.New("targets must be a mapping"), "line", node.Line)
	}
	out := make(TargetsDTO, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var dto TargetDTO
		if err := v.Decode(&dto); err != nil {
			return zerr.With(zerr.Wrap(err, "invalid target"), "target", k.Value)
		}
		out = append(out, NamedTarget{Name: k.Value, Line: k.Line, Target: dto})
	}
	*t = out
	return nil
}
