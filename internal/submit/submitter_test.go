package submit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

type fakeSurface struct {
	openErr    error
	openNil    bool
	injectErr  error
	ready      bool
	triggered  bool
	injected   string
	steps      []string
	triggerOut bool
}

func (f *fakeSurface) OpenInputSurface(ctx context.Context, c domain.Candidate) (ports.Surface, error) {
	f.steps = append(f.steps, "open")
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.openNil {
		return nil, nil
	}
	return "surface-handle", nil
}

func (f *fakeSurface) InjectText(ctx context.Context, s ports.Surface, text string) error {
	f.steps = append(f.steps, "inject")
	if f.injectErr != nil {
		return f.injectErr
	}
	f.injected = text
	return nil
}

func (f *fakeSurface) WaitReady(ctx context.Context, s ports.Surface) bool {
	f.steps = append(f.steps, "wait")
	return f.ready
}

func (f *fakeSurface) Trigger(ctx context.Context, s ports.Surface) bool {
	f.steps = append(f.steps, "trigger")
	f.triggered = f.triggerOut
	return f.triggerOut
}

func candidate() domain.Candidate {
	return domain.Candidate{Aliases: []string{"item-1"}, Content: "post", AuthorKey: "a"}
}

func TestSubmitHappyPath(t *testing.T) {
	t.Parallel()

	surface := &fakeSurface{ready: true, triggerOut: true}
	submitter := NewSurfaceSubmitter(surface, nil)

	ok := submitter.Submit(context.Background(), candidate(), "great point")
	require.True(t, ok)
	assert.Equal(t, "great point", surface.injected)
	assert.Equal(t, []string{"open", "inject", "wait", "trigger"}, surface.steps)
}

func TestSubmitAbortsOnFirstFailingStep(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		surface   *fakeSurface
		wantSteps []string
	}{
		{"open error", &fakeSurface{openErr: fmt.Errorf("no control")}, []string{"open"}},
		{"open nil", &fakeSurface{openNil: true}, []string{"open"}},
		{"inject error", &fakeSurface{injectErr: fmt.Errorf("detached")}, []string{"open", "inject"}},
		{"never ready", &fakeSurface{ready: false}, []string{"open", "inject", "wait"}},
		{"trigger refused", &fakeSurface{ready: true, triggerOut: false}, []string{"open", "inject", "wait", "trigger"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			submitter := NewSurfaceSubmitter(tc.surface, nil)
			ok := submitter.Submit(context.Background(), candidate(), "text")

			assert.False(t, ok)
			assert.Equal(t, tc.wantSteps, tc.surface.steps, "must abort at the failing step")
		})
	}
}

func TestStagingSubmitterQueuesInOrder(t *testing.T) {
	t.Parallel()

	staging := NewStagingSubmitter()

	first := candidate()
	second := domain.Candidate{Aliases: []string{"item-2"}, Content: "other", AuthorKey: "b"}

	require.True(t, staging.Submit(context.Background(), first, "reply one"))
	require.True(t, staging.Submit(context.Background(), second, "reply two"))

	staged := staging.Drain()
	require.Len(t, staged, 2)
	assert.Equal(t, "reply one", staged[0].Text)
	assert.Equal(t, "item-2", staged[1].Candidate.CanonicalAlias())

	assert.Empty(t, staging.Drain(), "drain clears the queue")
}
