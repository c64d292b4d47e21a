package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebsiteURL(t *testing.T) {
	tests := []struct {
		website string
		want    string
	}{
		{website: "", want: ""},
		{website: "boots.com", want: "https://boots.com"},
		{website: "http://example.org", want: "http://example.org"},
		{website: "https://nhs.uk/pharmacy", want: "https://nhs.uk/pharmacy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Service{Website: tt.website}.WebsiteURL(), tt.website)
	}
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Pharmacy", CategoryLabel("pharmacy"))
	assert.Equal(t, "Dentist", CategoryLabel("DENTIST"))
	assert.Equal(t, "Édifice", CategoryLabel("édifice"))
	assert.Equal(t, "", CategoryLabel(""))
}

func TestFind(t *testing.T) {
	services := fixture()

	got := Find(services, "3")
	require.NotNil(t, got)
	assert.Equal(t, "Cheapside Clinic", got.Name)

	got.Name = "changed"
	assert.Equal(t, "Cheapside Clinic", services[2].Name)

	assert.Nil(t, Find(services, "missing"))
	assert.Nil(t, Find(services, ""))
}
