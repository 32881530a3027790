package reporting

import (
	"gopkg.in/yaml.v3"
)

// RenderYAML renders the full report as YAML.
func RenderYAML(r *Report) (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
