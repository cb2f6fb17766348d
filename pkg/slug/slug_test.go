// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compatdex/compatdex/pkg/slug"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain title", input: "Chrono Trigger", want: "chrono-trigger"},
		{name: "accents stripped", input: "Pokémon Émeraude", want: "pokemon-emeraude"},
		{name: "punctuation", input: "Ratchet & Clank: Up Your Arsenal!", want: "ratchet-clank-up-your-arsenal"},
		{name: "repeated separators", input: "Metal  Gear -- Solid", want: "metal-gear-solid"},
		{name: "leading and trailing junk", input: "  ~Shadow of the Colossus~  ", want: "shadow-of-the-colossus"},
		{name: "digits kept", input: "Mega Man X4", want: "mega-man-x4"},
		{name: "empty", input: "", want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, slug.From(test.input))
		})
	}
}

func TestJoin(t *testing.T) {
	got := slug.Join("Metroid Prime", "Dolphin", "Steam Deck")

	assert.Equal(t, "metroid-prime-dolphin-steam-deck", got)
}

func TestJoin_SkipsEmptySegments(t *testing.T) {
	got := slug.Join("Okami", "", "  !!  ", "PS2")

	assert.Equal(t, "okami-ps2", got)
}
