// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"io"
	"testing"

	"github.com/bundlecell/bundlecell/internal/dag"
	"github.com/bundlecell/bundlecell/pkg/cell"
	"github.com/bundlecell/bundlecell/pkg/environment"
	"github.com/bundlecell/bundlecell/pkg/moduleoptions"
	"github.com/bundlecell/bundlecell/pkg/transform"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

var sameEnv = cmp.Comparer(func(a, b *environment.Environment) bool { return a == b })

func newStore() *moduleoptions.Store {
	return moduleoptions.NewStore(cell.WithLogger(log.New(io.Discard)))
}

func TestPlan(t *testing.T) {
	t.Parallel()

	env := environment.New("legacy", environment.KindBrowser,
		environment.Target{Engine: environment.EngineSafari, Version: "12"})

	tests := []struct {
		name string
		ctx  moduleoptions.ModuleOptionsContext
		want []transform.Transform
	}{
		{
			name: "default is empty",
			ctx:  moduleoptions.Default(),
			want: []transform.Transform{},
		},
		{
			name: "full",
			ctx: moduleoptions.New(
				moduleoptions.WithEmotion(true),
				moduleoptions.WithStyledJSX(true),
				moduleoptions.WithReactRefresh(true),
				moduleoptions.WithTypeScriptTransform(true),
				moduleoptions.WithPresetEnv(env),
				moduleoptions.AppendAppTransforms(transform.Custom("relay"), transform.CommonJS()),
				moduleoptions.AppendTransforms(transform.Custom("graphql")),
			),
			want: []transform.Transform{
				transform.Custom("relay"),
				transform.CommonJS(),
				transform.Emotion(),
				transform.StyledJSX(),
				transform.TypeScript(),
				transform.React(true),
				transform.Custom("graphql"),
				transform.PresetEnv(env),
			},
		},
		{
			name: "custom sequences keep duplicates and order",
			ctx: moduleoptions.New(
				moduleoptions.AppendAppTransforms(transform.Custom("b"), transform.Custom("a"), transform.Custom("b")),
				moduleoptions.WithStyledComponents(true),
			),
			want: []transform.Transform{
				transform.Custom("b"),
				transform.Custom("a"),
				transform.Custom("b"),
				transform.StyledComponents(),
			},
		},
	}

	s := newStore()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vc := s.Cell(tt.ctx)
			got, err := Plan(vc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, sameEnv); diff != "" {
				t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlan_LeavesCellUntouched(t *testing.T) {
	t.Parallel()

	s := newStore()
	vc := s.Cell(moduleoptions.New(moduleoptions.AppendAppTransforms(transform.Custom("a"))))
	before := vc.Hash()

	plan, err := Plan(vc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan[0] = transform.Custom("changed")

	if vc.Hash() != before || vc.CustomEcmascriptAppTransforms()[0] != transform.Custom("a") {
		t.Error("planning must not modify the cell")
	}
}

func TestPlanner_Steps(t *testing.T) {
	t.Parallel()

	vc := newStore().Cell(moduleoptions.New(
		moduleoptions.WithTypeScriptTransform(true),
		moduleoptions.AppendTransforms(transform.CommonJS()),
	))
	steps, err := NewPlanner().Steps(vc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Step{
		{Stage: StageTypeScript, Transform: transform.TypeScript()},
		{Stage: StageCustom, Transform: transform.CommonJS()},
	}
	if diff := cmp.Diff(want, steps, sameEnv); diff != "" {
		t.Errorf("Steps() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanner_Stages(t *testing.T) {
	t.Parallel()

	got, err := NewPlanner().Stages()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]Stage{
		{StageApp},
		{StageStyling, StageTypeScript},
		{StageReact},
		{StageCustom},
		{StagePresetEnv},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stages() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanner_Cycle(t *testing.T) {
	t.Parallel()

	p := NewPlanner()
	// preset_env already runs after app; the reverse edge closes a loop.
	p.stages.AddEdge(StagePresetEnv, StageApp)

	_, err := p.Plan(moduleoptions.DefaultVc())
	if !errors.Is(err, dag.ErrCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	var cycleErr *dag.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *dag.CycleError, got %T", err)
	}
}
