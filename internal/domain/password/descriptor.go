package password

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultDescriptors returns the validator configuration used when none is
// supplied.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		{Name: NameMinimumLength, Options: Options{"min_length": DefaultMinLength}},
		{Name: NameMaximumLength, Options: Options{"max_length": DefaultMaxLength}},
		{Name: NameCommonPassword},
		{Name: NameNumericPassword},
	}
}

// ParseDescriptors decodes a YAML list of descriptors:
//
//	- name: minimum_length
//	  options:
//	    min_length: 10
//	- name: common_password
//
// An empty document yields an empty, non-nil list: a policy with no validators.
func ParseDescriptors(data []byte) ([]Descriptor, error) {
	descriptors := []Descriptor{}
	if err := yaml.Unmarshal(data, &descriptors); err != nil {
		return nil, fmt.Errorf("failed to parse password validator descriptors: %w", err)
	}
	if descriptors == nil {
		descriptors = []Descriptor{}
	}

	for i, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("password validator descriptor %d has no name", i)
		}
	}
	return descriptors, nil
}
