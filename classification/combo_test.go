package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOutsCombos(t *testing.T) {
	tests := []struct {
		name  string
		hero  string
		board string
		want  []ComboDraw
	}{
		{"pair with gutshot", "Jc 9d", "Jh Ks Qc", []ComboDraw{PairPlusGutshot}},
		{"paired board with two live hole cards", "Ac Kd", "7h 7s 2c", []ComboDraw{DoublePairDraw}},
		{"runner-runner flush and straight", "9h 8h", "7h 2c Kd", []ComboDraw{BackdoorFlush, BackdoorStraight}},
		{"no backdoors on the turn", "9h 8h", "7h 2c Kd 3s", nil},
		{"flush draw is not a backdoor", "4h 5h", "6h 7h 2c", nil},
		{"trips on a paired board", "Kc 7d", "7h 7s 2c", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CalculateOuts(cards(tt.hero), cards(tt.board))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Combos)
		})
	}
}

func TestOutsLabels(t *testing.T) {
	res, err := CalculateOuts(cards("Jc 9d"), cards("Jh Ks Qc"))
	require.NoError(t, err)

	labels := res.Labels()
	require.Len(t, labels, len(res.Draws())+1)
	assert.Contains(t, labels, Gutshot.String())
	assert.Equal(t, "pair_plus_gutshot", labels[len(labels)-1])
}

func TestComboDrawMarshalText(t *testing.T) {
	b, err := BackdoorStraight.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "backdoor_straight_draw", string(b))

	_, err = ComboDraw(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", ComboDraw(99).String())
}
