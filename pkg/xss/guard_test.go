package xss_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternSet_InvalidExpression(t *testing.T) {
	_, err := xss.NewPatternSet("(")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, xss.ErrInvalidPattern))

	_, err = xss.NewPatternSet("  ")
	assert.True(t, errors.Is(err, xss.ErrInvalidPattern))
}

func TestNewPatternSet_CaseInsensitive(t *testing.T) {
	set, err := xss.NewPatternSet("foo", "(?i)bar")
	require.NoError(t, err)

	assert.Equal(t, []string{"(?i)foo", "(?i)bar"}, set.Expressions())
	assert.True(t, set.At(0).MatchString("/FOO"))
}

func TestResolvePatternSet(t *testing.T) {
	tests := []struct {
		name          string
		custom        []string
		append        bool
		expectedCount int
	}{
		{name: "Defaults", expectedCount: len(xss.DefaultExpressions)},
		{name: "Defaults With Append And No Custom", append: true, expectedCount: len(xss.DefaultExpressions)},
		{name: "Replace", custom: []string{"foo"}, expectedCount: 1},
		{name: "Append", custom: []string{"foo", "bar"}, append: true, expectedCount: len(xss.DefaultExpressions) + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := xss.ResolvePatternSet(tt.custom, tt.append)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCount, set.Len())
		})
	}
}

func TestGuard_ReplaceDefaults(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Patterns: []string{"foo"}})
	require.NoError(t, err)

	out, err := guard.Inspect("/x?q=<script>")
	assert.NoError(t, err)
	assert.False(t, out.Matched)
	assert.Equal(t, "/x?q=<script>", out.URL)

	out, err = guard.Inspect("/foo")
	assert.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "/", out.URL)
}

func TestGuard_AppendToDefaults(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Patterns: []string{"foo"}, PatternAppend: true})
	require.NoError(t, err)

	out, err := guard.Inspect("/foo?q=<script>")
	assert.NoError(t, err)
	assert.True(t, out.Matched)
	assert.Equal(t, "/?q=>", out.URL)
}

func TestGuard_BlockMode(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Block: true})
	require.NoError(t, err)
	assert.True(t, guard.Blocking())

	out, err := guard.Inspect("/x?q=<script>alert(1)</script>")
	assert.ErrorIs(t, err, xss.ErrBlocked)
	assert.True(t, out.Matched)

	out, err = guard.Inspect("/x?q=hello")
	assert.NoError(t, err)
	assert.False(t, out.Matched)
}

func TestGuard_InvalidCustomPattern(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Patterns: []string{"[a-"}})
	assert.Nil(t, guard)
	assert.ErrorIs(t, err, xss.ErrInvalidPattern)
}

func TestGuard_FilterOverride(t *testing.T) {
	var seen int
	override := func(rawURL string, patterns xss.PatternSet) xss.Outcome {
		seen = patterns.Len()
		return xss.Outcome{URL: "/rewritten", Matched: true}
	}

	guard, err := xss.NewGuard(xss.Config{Block: true}, xss.WithFilter(override), xss.WithFilter(nil))
	require.NoError(t, err)

	out, err := guard.Inspect("/anything")
	assert.ErrorIs(t, err, xss.ErrBlocked)
	assert.Equal(t, "/rewritten", out.URL)
	assert.Equal(t, len(xss.DefaultExpressions), seen)
}

func TestGuard_Notify(t *testing.T) {
	var got []xss.Detection
	first := xss.ObserverFunc(func(_ context.Context, d xss.Detection) {
		got = append(got, d)
	})
	second := xss.ObserverFunc(func(_ context.Context, d xss.Detection) {
		got = append(got, d)
	})

	guard, err := xss.NewGuard(xss.Config{}, xss.WithObserver(xss.Observers{first, nil, second}))
	require.NoError(t, err)

	guard.Notify(context.Background(), xss.Detection{ID: "1"})
	assert.Len(t, got, 2)

	silent, err := xss.NewGuard(xss.Config{})
	require.NoError(t, err)
	silent.Notify(context.Background(), xss.Detection{ID: "2"})
	assert.Len(t, got, 2)
}

func TestGuard_ConcurrentInspectionsAreIndependent(t *testing.T) {
	guard, err := xss.NewGuard(xss.Config{Block: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := guard.Inspect(fmt.Sprintf("/x?q=<script>%d", i)); !errors.Is(err, xss.ErrBlocked) {
				errs <- fmt.Errorf("matching request %d was not blocked", i)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			out, err := guard.Inspect(fmt.Sprintf("/x?q=clean%d", i))
			if err != nil || out.Matched {
				errs <- fmt.Errorf("clean request %d reported a match", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := xss.DecodeConfig(map[string]interface{}{
		"block":          true,
		"patterns":       []interface{}{"foo", "bar"},
		"pattern_append": true,
	})
	require.NoError(t, err)
	assert.True(t, cfg.Block)
	assert.True(t, cfg.PatternAppend)
	assert.Equal(t, []string{"foo", "bar"}, cfg.Patterns)

	cfg, err = xss.DecodeConfig(map[string]interface{}{
		"block":    "true",
		"patterns": "javascript:",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Block)
	assert.Equal(t, []string{"javascript:"}, cfg.Patterns)

	_, err = xss.DecodeConfig(map[string]interface{}{"block": map[string]interface{}{"on": true}})
	assert.Error(t, err)
}
