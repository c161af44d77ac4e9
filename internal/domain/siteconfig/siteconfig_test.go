package siteconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverridesScalarsFieldByField(t *testing.T) {
	stamp := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got := Merge(Default(), Config{
		HotelName: "Harbour Inn",
		Contact:   Contact{Email: "desk@harbour.example"},
		UpdatedAt: stamp,
	})

	assert.Equal(t, "Harbour Inn", got.HotelName)
	assert.Equal(t, Default().Tagline, got.Tagline)
	assert.Equal(t, "desk@harbour.example", got.Contact.Email)
	assert.Equal(t, Default().Contact.Phone, got.Contact.Phone)
	assert.Equal(t, stamp, got.UpdatedAt)
}

func TestMergeNavigationByKey(t *testing.T) {
	got := Merge(Default(), Config{Navigation: []NavEntry{
		{Key: "offers", Label: "Deals", Visible: false},
		{Key: "spa", Label: "Spa", Path: "/spa", Visible: true},
	}})

	require.Len(t, got.Navigation, 5)
	keys := make([]string, 0, len(got.Navigation))
	for _, e := range got.Navigation {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"home", "rooms", "offers", "contact", "spa"}, keys)

	offers := got.Navigation[2]
	assert.Equal(t, "Deals", offers.Label)
	assert.Equal(t, "/offers", offers.Path)
	assert.False(t, offers.Visible)
}

func TestBuilderDoesNotMutateBase(t *testing.T) {
	base := Default()
	b := NewBuilder(base)
	b.With(Config{Navigation: []NavEntry{{Key: "home", Label: "Start"}}})
	built := b.Build()

	assert.Equal(t, "Home", base.Navigation[0].Label)
	assert.Equal(t, "Start", built.Navigation[0].Label)

	built.Navigation[0].Label = "changed"
	assert.Equal(t, "Start", b.Build().Navigation[0].Label)
}

func TestMergeWithEmptyOverrideIsIdentity(t *testing.T) {
	assert.Equal(t, Default(), Merge(Default(), Config{}))
}
