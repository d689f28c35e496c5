package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anchor(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"anchor_type":      "fait",
		"location":         "p. 1, §2",
		"evidence_snippet": "courte citation",
		"confidence":       0.9,
	}
}

func TestNormalizeAnchorIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{
			name: "conforming ids are untouched",
			ids:  []string{"F-1", "MOT-12", "SOL-999"},
			want: []string{"F-1", "MOT-12", "SOL-999"},
		},
		{
			name: "lowercase id is rewritten",
			ids:  []string{"f-1"},
			want: []string{"A-1"},
		},
		{
			name: "missing digits is rewritten",
			ids:  []string{"FAIT-"},
			want: []string{"A-1"},
		},
		{
			name: "too many letters is rewritten",
			ids:  []string{"MOTIF-1"},
			want: []string{"A-1"},
		},
		{
			name: "generated ids follow array order",
			ids:  []string{"F-1", "bogus", "M-2", "also bad"},
			want: []string{"F-1", "A-2", "M-2", "A-4"},
		},
		{
			name: "empty id is rewritten",
			ids:  []string{""},
			want: []string{"A-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchors := make([]interface{}, len(tt.ids))
			for i, id := range tt.ids {
				anchors[i] = anchor(id)
			}
			answer := map[string]interface{}{"anchors": anchors}

			NormalizeAnchorIDs(answer)

			for i, want := range tt.want {
				got := anchors[i].(map[string]interface{})["id"]
				assert.Equal(t, want, got, "anchor %d", i)
			}
		})
	}
}

func TestNormalizeAnchorIDsMissingAnchors(t *testing.T) {
	answer := map[string]interface{}{"faits": "..."}
	assert.NotPanics(t, func() { NormalizeAnchorIDs(answer) })

	answer = map[string]interface{}{"anchors": "not an array"}
	assert.NotPanics(t, func() { NormalizeAnchorIDs(answer) })
}

func TestRedactURLs(t *testing.T) {
	answer := map[string]interface{}{
		"motifs": "Voir https://legifrance.gouv.fr/decision pour le texte intégral.",
		"portee": "Consultez www.courdecassation.fr et HTTP://EXAMPLE.COM/x.",
		"faits":  "Aucun lien ici.",
		"anchors": []interface{}{
			map[string]interface{}{
				"id":               "F-1",
				"evidence_snippet": "source: http://exemple.fr/arret.pdf",
			},
		},
	}

	RedactURLs(answer)

	assert.Equal(t, "Voir [lien supprimé] pour le texte intégral.", answer["motifs"])
	assert.Equal(t, "Consultez [lien supprimé] et [lien supprimé]", answer["portee"])
	assert.Equal(t, "Aucun lien ici.", answer["faits"])

	snippet := answer["anchors"].([]interface{})[0].(map[string]interface{})["evidence_snippet"]
	assert.Equal(t, "source: [lien supprimé]", snippet)
}

func TestRedactURLsGluedToPrecedingText(t *testing.T) {
	answer := map[string]interface{}{
		"motifs":   "voirhttps://exemple.fr/arret pour le détail",
		"portee":   "cf.www.exemple.fr pour la suite",
		"solution": "(https://exemple.fr) entre parenthèses",
	}

	RedactURLs(answer)

	assert.Equal(t, "voir[lien supprimé] pour le détail", answer["motifs"])
	assert.Equal(t, "cf.[lien supprimé] pour la suite", answer["portee"])
	assert.Equal(t, "([lien supprimé] entre parenthèses", answer["solution"])
	for _, v := range answer {
		assert.NotContains(t, v, "http")
		assert.NotContains(t, v, "www.")
	}
}

func TestGuardAnswerIdempotent(t *testing.T) {
	build := func() map[string]interface{} {
		return map[string]interface{}{
			"motifs": "Détails sur https://exemple.fr/arret.",
			"anchors": []interface{}{
				anchor("bad id"),
				anchor("F-2"),
			},
		}
	}

	once := build()
	GuardAnswer(once)

	twice := build()
	GuardAnswer(twice)
	GuardAnswer(twice)

	require.Equal(t, once, twice)
	assert.Equal(t, "Détails sur [lien supprimé]", once["motifs"])
	assert.Equal(t, "A-1", once["anchors"].([]interface{})[0].(map[string]interface{})["id"])
	assert.Equal(t, "F-2", once["anchors"].([]interface{})[1].(map[string]interface{})["id"])
}

func TestRedactionMarkerSurvivesGuard(t *testing.T) {
	answer := map[string]interface{}{"portee": "Lien retiré : [lien supprimé]."}
	GuardAnswer(answer)
	assert.Equal(t, "Lien retiré : [lien supprimé].", answer["portee"])
}
