package volume

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestEffectiveAccess_DefaultApplies(t *testing.T) {
	v := &Volume{DefaultAccess: Access{Read: true, Write: true}}

	acc := EffectiveAccess(v, "any/path.txt")
	require.True(t, acc.Read)
	require.True(t, acc.Write)
	require.False(t, acc.Locked)
}

func TestEffectiveAccess_NearestOverrideWins(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "private", Write: boolPtr(false)},
			{Path: "private/inbox", Write: boolPtr(true)},
		},
	}

	require.False(t, EffectiveAccess(v, "private").Write)
	require.False(t, EffectiveAccess(v, "private/report.txt").Write)
	require.True(t, EffectiveAccess(v, "private/inbox").Write)
	require.True(t, EffectiveAccess(v, "private/inbox/new.txt").Write)
	require.True(t, EffectiveAccess(v, "public/report.txt").Write)
}

func TestEffectiveAccess_RemovedOverrideFallsToAncestor(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "private", Write: boolPtr(false)},
			{Path: "private/inbox", Write: boolPtr(true)},
		},
	}
	require.True(t, EffectiveAccess(v, "private/inbox/new.txt").Write)

	// Dropping the child exception re-exposes the ancestor's policy.
	v.Overrides = v.Overrides[:1]
	require.False(t, EffectiveAccess(v, "private/inbox/new.txt").Write)
}

func TestEffectiveAccess_FlagsResolveIndependently(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "mixed", Write: boolPtr(false)},
			{Path: "mixed/deep", Locked: boolPtr(true)},
		},
	}

	acc := EffectiveAccess(v, "mixed/deep/file.txt")
	require.True(t, acc.Read)
	require.False(t, acc.Write, "write comes from the mixed override")
	require.True(t, acc.Locked, "locked comes from the deep override")
}

func TestEffectiveAccess_NameMatchAppliesAnywhere(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: ".git", Read: boolPtr(false), Write: boolPtr(false)},
		},
	}

	require.False(t, EffectiveAccess(v, "project/.git").Read)
	require.False(t, EffectiveAccess(v, "other/place/.git").Write)
	require.True(t, EffectiveAccess(v, "project/src").Read)
}

func TestEffectiveAccess_ExactPathBeatsNameMatch(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "special", Write: boolPtr(false)},
			{Path: "docs/special", Write: boolPtr(true)},
		},
	}

	require.True(t, EffectiveAccess(v, "docs/special").Write)
	require.False(t, EffectiveAccess(v, "elsewhere/special").Write)
}

func TestEffectiveAccess_RootOverride(t *testing.T) {
	v := &Volume{
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "/", Write: boolPtr(false)},
		},
	}

	require.False(t, EffectiveAccess(v, "").Write)
	require.False(t, EffectiveAccess(v, "anything.txt").Write)
}

func TestEffectiveAccess_ReadOnlyVolumeForcesWriteOff(t *testing.T) {
	v := &Volume{
		ReadOnly:      true,
		DefaultAccess: Access{Read: true, Write: true},
		Overrides: []AccessOverride{
			{Path: "docs", Write: boolPtr(true)},
		},
	}

	acc := EffectiveAccess(v, "docs/file.txt")
	require.True(t, acc.Read)
	require.False(t, acc.Write)
}

func TestEffectiveAccess_LockedVolumeForcesLockedOn(t *testing.T) {
	v := &Volume{
		Locked:        true,
		DefaultAccess: Access{Read: true, Write: true},
	}

	require.True(t, EffectiveAccess(v, "file.txt").Locked)
}
