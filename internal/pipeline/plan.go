// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"fmt"

	"github.com/bundlecell/bundlecell/internal/dag"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"
	"github.com/bundlecell/bundlecell/pkg/transform"
)

// Stage names, in the order a default Planner runs them.
const (
	StageApp        Stage = "app"
	StageStyling    Stage = "styling"
	StageTypeScript Stage = "typescript"
	StageReact      Stage = "react"
	StageCustom     Stage = "custom"
	StagePresetEnv  Stage = "preset_env"
)

type (
	// Stage groups transforms that share a position in the plan.
	Stage string

	// Planner orders transform stages by their "runs before" graph.
	Planner struct {
		stages *dag.Graph[Stage]
	}

	// Step is one planned transform together with the stage it came from.
	Step struct {
		Stage     Stage
		Transform transform.Transform
	}
)

// NewPlanner returns a Planner with the default stage ordering:
// app transforms first, then styling and TypeScript stripping, then React,
// then the general custom transforms and finally preset-env lowering.
func NewPlanner() *Planner {
	g := dag.New[Stage]()
	g.AddEdge(StageApp, StageStyling)
	g.AddEdge(StageApp, StageTypeScript)
	g.AddEdge(StageStyling, StageReact)
	g.AddEdge(StageTypeScript, StageReact)
	g.AddEdge(StageReact, StageCustom)
	g.AddEdge(StageCustom, StagePresetEnv)
	return &Planner{stages: g}
}

// Plan expands vc using a default Planner.
func Plan(vc moduleoptions.Vc) ([]transform.Transform, error) {
	return NewPlanner().Plan(vc)
}

// Plan returns the transforms implied by vc in application order.
func (p *Planner) Plan(vc moduleoptions.Vc) ([]transform.Transform, error) {
	steps, err := p.Steps(vc)
	if err != nil {
		return nil, err
	}
	plan := make([]transform.Transform, 0, len(steps))
	for _, s := range steps {
		plan = append(plan, s.Transform)
	}
	return plan, nil
}

// Steps is Plan with the originating stage attached to each transform.
func (p *Planner) Steps(vc moduleoptions.Vc) ([]Step, error) {
	order, err := p.stages.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("ordering transform stages: %w", err)
	}

	var steps []Step
	for _, stage := range order {
		for _, t := range stageTransforms(stage, vc) {
			steps = append(steps, Step{Stage: stage, Transform: t})
		}
	}
	return steps, nil
}

// Stages returns the stage groups; stages in one group do not depend on
// each other.
func (p *Planner) Stages() ([][]Stage, error) {
	return p.stages.Levels()
}

func stageTransforms(stage Stage, vc moduleoptions.Vc) []transform.Transform {
	switch stage {
	case StageApp:
		return vc.CustomEcmascriptAppTransforms()
	case StageStyling:
		var ts []transform.Transform
		if vc.EnableEmotion() {
			ts = append(ts, transform.Emotion())
		}
		if vc.EnableStyledComponents() {
			ts = append(ts, transform.StyledComponents())
		}
		if vc.EnableStyledJSX() {
			ts = append(ts, transform.StyledJSX())
		}
		return ts
	case StageTypeScript:
		if vc.EnableTypeScriptTransform() {
			return []transform.Transform{transform.TypeScript()}
		}
	case StageReact:
		if vc.EnableReactRefresh() {
			return []transform.Transform{transform.React(true)}
		}
	case StageCustom:
		return vc.CustomEcmascriptTransforms()
	case StagePresetEnv:
		if env := vc.PresetEnvVersions(); env != nil {
			return []transform.Transform{transform.PresetEnv(env)}
		}
	}
	return nil
}
