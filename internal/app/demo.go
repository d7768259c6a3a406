// Package app implements the runnable demos and the session they share.
package app

import (
	"fmt"

	"github.com/Faultbox/glprojects/internal/config"
)

// Demo is one runnable sample. Init creates GPU resources, Run blocks until
// the window is closed, Close releases what Init created.
type Demo interface {
	Init() error
	Run() error
	Close()
}

// Kind selects a demo.
type Kind int

const (
	ModelLoadingKind Kind = iota
	BasicLightingKind
	Basic3DSceneKind
)

var kindNames = map[Kind]string{
	ModelLoadingKind:  config.DemoModel,
	BasicLightingKind: config.DemoLighting,
	Basic3DSceneKind:  config.DemoScene,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a config name to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown demo %q", name)
}

// New builds the demo selected by cfg.Demo.Kind over s.
func New(s *Session, cfg *config.Config) (Demo, error) {
	kind, err := ParseKind(cfg.Demo.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ModelLoadingKind:
		return NewModelLoading(s, cfg.Model), nil
	case BasicLightingKind:
		return NewBasicLighting(s), nil
	default:
		return NewBasic3DScene(s, cfg.Scene), nil
	}
}
