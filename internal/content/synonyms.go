// Package content embeds static assets that ship with the binary.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/joonhokim/examgen/internal/core/domain"
)

//go:embed synonyms.yaml
var synonymsYAML []byte

type synonymFile struct {
	Groups []synonymGroup `yaml:"groups"`
}

type synonymGroup struct {
	Label    string   `yaml:"label"`
	Variants []string `yaml:"variants"`
}

// LoadSynonyms parses the embedded synonym table into its immutable
// runtime form.
func LoadSynonyms() (domain.SynonymTable, error) {
	var file synonymFile
	if err := yaml.Unmarshal(synonymsYAML, &file); err != nil {
		return domain.SynonymTable{}, fmt.Errorf("parse synonyms.yaml: %w", err)
	}
	groups := make([][]string, 0, len(file.Groups))
	for _, g := range file.Groups {
		if len(g.Variants) == 0 {
			return domain.SynonymTable{}, fmt.Errorf("synonym group %q has no variants", g.Label)
		}
		groups = append(groups, g.Variants)
	}
	return domain.NewSynonymTable(groups), nil
}
