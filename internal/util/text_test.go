package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accents and case", input: "Código Civil", want: "codigo civil"},
		{name: "cedilla and tilde", input: "CONSTITUIÇÃO Federal", want: "constituicao federal"},
		{name: "spaces", input: "  Lei   de\tIntrodução ", want: "lei de introducao"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FoldText(tc.input))
		})
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Art. 1º Toda pessoa é capaz.", StripHTML("<p>Art. 1º <b>Toda</b> pessoa é capaz.</p>"))
	assert.Equal(t, "linha um linha dois", StripHTML("linha um<br/>linha dois"))
	assert.Equal(t, "sem tags", StripHTML("  sem   tags "))
	assert.Equal(t, "a < b", StripHTML("a < b"))
}

func TestContainsFolded(t *testing.T) {
	assert.True(t, ContainsFolded("Código Civil", "codigo civil"))
	assert.True(t, ContainsFolded("Código Civil", ""))
	assert.False(t, ContainsFolded("Código Penal", "civil"))
}

func TestCompareLocale(t *testing.T) {
	assert.Negative(t, CompareLocale("Código Civil", "Constituição Federal"))
	assert.Negative(t, CompareLocale("ação", "acordo"))
	assert.Zero(t, CompareLocale("Lei", "Lei"))
}
