// Package inventory resolves target specs from a YAML inventory file.
package inventory

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/tiller/pkg/domain"
	"gopkg.in/yaml.v3"
)

// File is the on-disk inventory shape.
//
//	targets:
//	  - name: web-1
//	    transport: ssh
//	    features: [tiller.agent]
//	    install:
//	      strategy: script
//	      options:
//	        command: ./provision.sh {{target}}
//	    vars:
//	      host: 10.0.0.5
//	groups:
//	  web: [web-1, web-2]
type File struct {
	Targets []*domain.Target    `yaml:"targets"`
	Groups  map[string][]string `yaml:"groups,omitempty"`
}

// Resolver implements ports.TargetResolver over a parsed inventory file.
type Resolver struct {
	byName []*domain.Target
	groups map[string][]string
}

// Load reads and parses an inventory file.
func Load(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return Parse(data)
}

// Parse builds a resolver from raw YAML.
func Parse(data []byte) (*Resolver, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid inventory: %w", err)
	}

	seen := make(map[string]bool, len(file.Targets))
	for _, t := range file.Targets {
		if t.Name == "" {
			return nil, fmt.Errorf("invalid inventory: target missing a name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("invalid inventory: duplicate target %q", t.Name)
		}
		seen[t.Name] = true
	}
	for group, members := range file.Groups {
		for _, m := range members {
			if !seen[m] {
				return nil, fmt.Errorf("invalid inventory: group %q references unknown target %q", group, m)
			}
		}
	}

	return &Resolver{byName: file.Targets, groups: file.Groups}, nil
}

// Expand resolves a spec into targets, preserving inventory order.
// "all" (or empty) selects everything; a group name selects its members;
// anything else selects a single target by name.
func (r *Resolver) Expand(ctx context.Context, spec string) ([]*domain.Target, error) {
	if spec == "" || spec == "all" {
		return r.byName, nil
	}

	if members, ok := r.groups[spec]; ok {
		selected := make(map[string]bool, len(members))
		for _, m := range members {
			selected[m] = true
		}
		var out []*domain.Target
		for _, t := range r.byName {
			if selected[t.Name] {
				out = append(out, t)
			}
		}
		return out, nil
	}

	for _, t := range r.byName {
		if t.Name == spec {
			return []*domain.Target{t}, nil
		}
	}
	return nil, fmt.Errorf("target spec %q matches nothing in inventory", spec)
}
