// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cardio-medqa/pkg/types"
)

func TestCompile_Empty(t *testing.T) {
	_, err := Compile([]string{"", "  ", "\t"})
	assert.ErrorIs(t, err, ErrNoKeywords)

	_, err = Compile(nil)
	assert.ErrorIs(t, err, ErrNoKeywords)
}

func TestMatcher_Find(t *testing.T) {
	m, err := Compile(CardiologyEN)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "multi word phrase case insensitive",
			text: "A 60-year-old with Myocardial   Infarction presents",
			want: []string{"Myocardial   Infarction"},
		},
		{
			name: "short keyword needs word boundary",
			text: "He has a history of MI. Minimal findings in the mid abdomen.",
			want: []string{"MI"},
		},
		{
			name: "all caps keyword on word boundary",
			text: "STEMI on ECG; NSTEMI ruled out",
			want: []string{"STEMI", "NSTEMI"},
		},
		{
			name: "single word substring",
			text: "Signs of pericarditis and endocarditis",
			want: []string{"pericarditis", "endocarditis"},
		},
		{
			name: "no hit",
			text: "Patient with a broken femur",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Find(tt.text, 0))
		})
	}
}

func TestMatcher_FindCap(t *testing.T) {
	m, err := Compile([]string{"angina"})
	require.NoError(t, err)

	hits := m.Find("angina angina angina angina", 2)
	assert.Len(t, hits, 2)
}

func TestMatcher_Chinese(t *testing.T) {
	m, err := Compile(CardiologyZH)
	require.NoError(t, err)

	assert.True(t, m.Match("患者既往有冠心病病史"))
	assert.Equal(t, []string{"心绞痛"}, m.Find("胸骨后心绞痛发作", 0))
	assert.False(t, m.Match("患者骨折"))
}

func TestMatcher_FullWidthNormalized(t *testing.T) {
	m, err := Compile([]string{"CHF"})
	require.NoError(t, err)

	assert.True(t, m.Match("history of ＣＨＦ exacerbation"))
}

func TestMatcher_Keywords(t *testing.T) {
	m, err := Compile([]string{" Angina ", "angina", "", "chest pain"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Angina", "chest pain"}, m.Keywords())

	got := m.Keywords()
	got[0] = "changed"
	assert.Equal(t, "Angina", m.Keywords()[0])
}

func TestUnion(t *testing.T) {
	got := Union([]string{"Angina", " cardiac ", ""}, []string{"angina", "chest pain", "Cardiac"})
	assert.Equal(t, []string{"Angina", "cardiac", "chest pain"}, got)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, CardiologyEN, Strict(types.LanguageEN))
	assert.Equal(t, CardiologyZH, Strict(types.LanguageZH))
	assert.Len(t, Strict(types.LanguageBoth), len(CardiologyEN)+len(CardiologyZH))
	assert.Len(t, Related(types.LanguageBoth), len(RelatedEN)+len(RelatedZH))

	// Related terms must not already be strict, or a broad-only match could
	// never happen for them.
	strict := map[string]bool{}
	for _, kw := range Strict(types.LanguageBoth) {
		strict[kw] = true
	}
	for _, kw := range Related(types.LanguageBoth) {
		assert.False(t, strict[kw], "related keyword %q duplicates a strict keyword", kw)
	}
}
