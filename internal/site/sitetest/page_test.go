package sitetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resultwatch/internal/site"
)

func TestRecordedWalk(t *testing.T) {
	ctx := context.Background()
	p := Recorded()
	a := site.Default()

	require.NoError(t, p.Navigate(ctx, a.HomeURL))
	require.Equal(t, "home", p.Current())

	for _, step := range a.Steps {
		ok, err := p.Exists(ctx, step.Locator)
		require.NoError(t, err)
		require.True(t, ok, step.Name)
		require.NoError(t, p.Click(ctx, step.Locator))
	}
	require.Equal(t, "form", p.Current())

	var submitted string
	p.OnSubmit = func(v string) error {
		submitted = v
		return nil
	}
	require.NoError(t, p.Fill(ctx, a.RollInput, "24UECC8022"))
	require.NoError(t, p.Click(ctx, a.Submit))
	require.Equal(t, "24UECC8022", submitted)
	require.Equal(t, "24UECC8022", p.Value(site.RollInputID))
}

func TestTapsSwallowClicks(t *testing.T) {
	ctx := context.Background()
	p := New("a", map[string]string{
		"a": `<a data-goto="b" data-taps="2">next</a>`,
		"b": `<p id="done">done</p>`,
	})
	require.NoError(t, p.Navigate(ctx, ""))

	loc := site.Locator{TextAll: []string{"next"}}
	require.NoError(t, p.Click(ctx, loc))
	require.Equal(t, "a", p.Current())
	require.NoError(t, p.Click(ctx, loc))
	require.Equal(t, "b", p.Current())
}

func TestClickMissing(t *testing.T) {
	ctx := context.Background()
	p := Recorded()
	require.NoError(t, p.Navigate(ctx, ""))
	err := p.Click(ctx, site.ByID("nope"))
	require.ErrorIs(t, err, ErrNoElement)
}
