package generic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/generic"
)

func sampleTree() generic.Tree {
	return generic.Tree{
		"enabled": true,
		"balancedFunctions": []any{"A1", "A2", "B1"},
		"maxDeviation": map[string]any{
			"monthly": float64(2),
			"yearly":  float64(5),
		},
		"advanced": map[string]any{
			"logWarnings": true,
			"nested":      map[string]any{"level": float64(1)},
		},
	}
}

// =============================================================================
// MERGE LAWS
// =============================================================================

func TestDeepMerge_EmptySourceIsIdentity(t *testing.T) {
	base := sampleTree()

	merged, err := generic.DeepMerge(base, generic.Tree{})
	require.NoError(t, err)

	assert.Equal(t, base, merged)
}

func TestDeepMerge_SelfMergeIsIdentity(t *testing.T) {
	base := sampleTree()

	merged, err := generic.DeepMerge(base, sampleTree())
	require.NoError(t, err)

	assert.Equal(t, base, merged)
}

func TestDeepMerge_ArraysReplaceWholesale(t *testing.T) {
	// GIVEN: A three-element list in the base
	// WHEN: The override carries a one-element list
	// THEN: The result holds exactly the override's list
	base := sampleTree()

	merged, err := generic.DeepMerge(base, generic.Tree{"balancedFunctions": []any{"C9"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"C9"}, merged["balancedFunctions"])

	// Longer override also replaces exactly
	longer := []any{"A1", "A2", "B1", "B2", "C1"}
	merged, err = generic.DeepMerge(base, generic.Tree{"balancedFunctions": longer})
	require.NoError(t, err)
	assert.Equal(t, longer, merged["balancedFunctions"])
}

func TestDeepMerge_ObjectsMergeRecursively(t *testing.T) {
	base := sampleTree()

	merged, err := generic.DeepMerge(base, generic.Tree{
		"maxDeviation": map[string]any{"monthly": float64(3)},
		"advanced":     map[string]any{"nested": map[string]any{"extra": "x"}},
	})
	require.NoError(t, err)

	dev := merged["maxDeviation"].(map[string]any)
	assert.Equal(t, float64(3), dev["monthly"])
	assert.Equal(t, float64(5), dev["yearly"], "sibling keys survive")

	nested := merged["advanced"].(map[string]any)["nested"].(map[string]any)
	assert.Equal(t, float64(1), nested["level"])
	assert.Equal(t, "x", nested["extra"])
	assert.Equal(t, true, merged["advanced"].(map[string]any)["logWarnings"])
}

func TestDeepMerge_MissingKeyAdoptsSourceObject(t *testing.T) {
	merged, err := generic.DeepMerge(generic.Tree{}, generic.Tree{
		"cspSolver": map[string]any{"enabled": true},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"enabled": true}, merged["cspSolver"])
}

func TestDeepMerge_ObjectOverScalarReplaces(t *testing.T) {
	merged, err := generic.DeepMerge(generic.Tree{"x": float64(1)}, generic.Tree{
		"x": map[string]any{"y": float64(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"y": float64(2)}, merged["x"])
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	base := sampleTree()
	override := generic.Tree{"maxDeviation": map[string]any{"monthly": float64(9)}}

	merged, err := generic.DeepMerge(base, override)
	require.NoError(t, err)

	merged["maxDeviation"].(map[string]any)["yearly"] = float64(100)
	merged["balancedFunctions"].([]any)[0] = "ZZ"

	assert.Equal(t, float64(2), base["maxDeviation"].(map[string]any)["monthly"])
	assert.Equal(t, float64(5), base["maxDeviation"].(map[string]any)["yearly"])
	assert.Equal(t, "A1", base["balancedFunctions"].([]any)[0])
}

func TestDeepMerge_DepthBound(t *testing.T) {
	// GIVEN: A tree nested deeper than the merge bound
	deep := map[string]any{"leaf": true}
	for i := 0; i < generic.MaxMergeDepth+2; i++ {
		deep = map[string]any{"n": deep}
	}

	// THEN: Merging fails fast instead of recursing without bound
	_, err := generic.DeepMerge(generic.Tree{}, generic.Tree(deep))
	assert.True(t, errors.Is(err, generic.ErrMergeTooDeep))
}

// =============================================================================
// TREE CONVERSION
// =============================================================================

func TestToTreeFromTree_RoundTrip(t *testing.T) {
	type inner struct {
		Enabled bool     `json:"enabled"`
		Skills  []string `json:"skills"`
	}
	type cfg struct {
		Inner inner `json:"inner"`
		Max   int   `json:"max"`
	}
	in := cfg{Inner: inner{Enabled: true, Skills: []string{"a"}}, Max: 7}

	tree, err := generic.ToTree(in)
	require.NoError(t, err)
	assert.Equal(t, float64(7), tree["max"])

	out, err := generic.FromTree[cfg](tree)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseTree_RejectsNonObjects(t *testing.T) {
	_, err := generic.ParseTree([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = generic.ParseTree([]byte(`null`))
	assert.Error(t, err)

	_, err = generic.ParseTree([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestParseDomain(t *testing.T) {
	d, err := generic.ParseDomain("night_shift")
	require.NoError(t, err)
	assert.Equal(t, generic.DomainNightShift, d)

	_, err = generic.ParseDomain("lunch_shift")
	assert.ErrorIs(t, err, generic.ErrUnknownDomain)
}
