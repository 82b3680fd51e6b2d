package seeding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/activity-seeder/internal/reviews"
	"github.com/angelmondragon/activity-seeder/pkg/enums"
	pkgerrors "github.com/angelmondragon/activity-seeder/pkg/errors"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultProfileHasEnoughTemplates(t *testing.T) {
	profile := DefaultProfile()
	require.NoError(t, profile.Validate())
	for _, s := range enums.Sentiments {
		tpl := profile.Templates[s]
		assert.GreaterOrEqual(t, len(tpl.Titles), reviews.MinTemplates, "%s titles", s)
		assert.GreaterOrEqual(t, len(tpl.Bodies), reviews.MinTemplates, "%s bodies", s)
	}
}

func TestLoadProfileWithoutPathReturnsDefaults(t *testing.T) {
	profile, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)
}

func TestLoadProfileOverridesSections(t *testing.T) {
	path := writeProfile(t, `
status_weights:
  - value: Received
    weight: 1
templates:
  neutral:
    titles: [a, b, c, d, e]
    bodies: [f, g, h, i, j]
`)
	profile, err := LoadProfile(path)
	require.NoError(t, err)

	require.Len(t, profile.StatusWeights, 1)
	assert.Equal(t, enums.OrderStatusReceived, profile.StatusWeights[0].Value)
	assert.Equal(t, DefaultProfile().RatingWeights, profile.RatingWeights)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, profile.Templates[enums.SentimentNeutral].Titles)
	assert.Equal(t, DefaultProfile().Templates[enums.SentimentPositive], profile.Templates[enums.SentimentPositive])
}

func TestLoadProfileRejectsUnknownStatus(t *testing.T) {
	path := writeProfile(t, `
status_weights:
  - value: Lost
    weight: 1
`)
	_, err := LoadProfile(path)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoadProfileReportsMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfig))
}

func TestLoadProfileAcceptsLegacyStatusNames(t *testing.T) {
	path := writeProfile(t, `
status_weights:
  - value: En cocina
    weight: 0.05
  - value: En camino
    weight: 0.10
  - value: Recibido
    weight: 0.85
`)
	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile().StatusWeights, profile.StatusWeights)
}
