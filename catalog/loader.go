package catalog

import (
	"os"

	apperrors "learnpath/errors"

	"gopkg.in/yaml.v3"
)

type taxonomyFile struct {
	Tags  []Tag  `yaml:"tags"`
	Edges []Edge `yaml:"edges"`
}

type catalogFile struct {
	Items []CourseItem `yaml:"items"`
}

// LoadTaxonomy reads tags and relation edges from a YAML file. Edges whose
// endpoints are not present in the tag set are dropped; weights are clamped
// into [0,1]. Empty collections are valid.
func LoadTaxonomy(path string) ([]Tag, []Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, apperrors.WrapErrorf(err, "read taxonomy file %s", path)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, apperrors.WrapErrorf(err, "parse taxonomy file %s", path)
	}

	known := make(map[string]struct{}, len(file.Tags))
	tags := make([]Tag, 0, len(file.Tags))
	for _, tag := range file.Tags {
		if tag.ID == "" {
			continue
		}
		if _, dup := known[tag.ID]; dup {
			continue
		}
		known[tag.ID] = struct{}{}
		tags = append(tags, tag)
	}

	edges := make([]Edge, 0, len(file.Edges))
	for _, edge := range file.Edges {
		if _, ok := known[edge.Source]; !ok {
			continue
		}
		if _, ok := known[edge.Target]; !ok {
			continue
		}
		if edge.Weight < 0 {
			edge.Weight = 0
		}
		if edge.Weight > 1 {
			edge.Weight = 1
		}
		edges = append(edges, edge)
	}

	return tags, edges, nil
}

// LoadCatalog reads course items from a YAML file.
func LoadCatalog(path string) ([]CourseItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(err, "read catalog file %s", path)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.WrapErrorf(err, "parse catalog file %s", path)
	}

	items := make([]CourseItem, 0, len(file.Items))
	for _, item := range file.Items {
		if item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
