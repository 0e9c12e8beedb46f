// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagIndex_VariantRoundTrip(t *testing.T) {
	idx := NewTagIndex([]string{"+DG-M1"}, nil)

	for _, variant := range []string{"DG-M1", "M1", "+DG_M1", "+DG.M1"} {
		canonical, ok := idx.Lookup(variant)
		require.True(t, ok, "variant %q must resolve", variant)
		assert.Equal(t, "+DG-M1", canonical)
	}
}

func TestTagIndex_StrippedSignVariant(t *testing.T) {
	idx := NewTagIndex([]string{"-K1"}, nil)

	canonical, ok := idx.Lookup("K1")
	require.True(t, ok)
	assert.Equal(t, "-K1", canonical)
}

func TestTagIndex_TerminalSeparatorTruncation(t *testing.T) {
	idx := NewTagIndex([]string{"-X5:3"}, nil)

	canonical, ok := idx.Lookup("-X5")
	require.True(t, ok)
	assert.Equal(t, "-X5:3", canonical)
}

func TestTagIndex_AmbiguousVariantDropped(t *testing.T) {
	// Both tags claim the shared segment "K1": it must resolve to neither.
	idx := NewTagIndex([]string{"-K1", "+DG-K1"}, nil)

	_, ok := idx.Lookup("K1")
	assert.False(t, ok, "ambiguous variant must be dropped from the index")
	assert.Contains(t, idx.Dropped(), "K1")

	// Exact membership is untouched by the drop
	assert.True(t, idx.Contains("-K1"))
	assert.True(t, idx.Contains("+DG-K1"))
}

func TestTagIndex_VariantNeverShadowsCanonicalTag(t *testing.T) {
	// "K1" is itself a canonical tag; the stripped variant of "-K1" must not
	// hijack it.
	idx := NewTagIndex([]string{"-K1", "K1"}, nil)

	_, ok := idx.Lookup("K1")
	assert.False(t, ok, "canonical strings resolve by exact match only")
	assert.True(t, idx.Contains("K1"))
}

func TestTagIndex_DuplicateAndBlankInputTags(t *testing.T) {
	idx := NewTagIndex([]string{"-K1", "-K1", "  ", ""}, nil)

	assert.Equal(t, []string{"-K1"}, idx.Tags())
}

func TestExpandVariants_NoSelfVariant(t *testing.T) {
	for _, v := range expandVariants("-K1") {
		assert.NotEqual(t, "-K1", v, "a tag is not its own variant")
	}
}
