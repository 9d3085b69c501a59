package models

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to LeadStatus
		want     bool
	}{
		{StatusNew, StatusContacted, true},
		{StatusNew, StatusScheduled, true},
		{StatusNew, StatusClosed, true},
		{StatusContacted, StatusLost, true},
		{StatusScheduled, StatusScheduled, true},
		{StatusContacted, StatusNew, false},
		{StatusClosed, StatusLost, false},
		{StatusLost, StatusNew, false},
		{StatusNew, LeadStatus("archived"), false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestEnumValid(t *testing.T) {
	if !Source99Acres.Valid() || LeadSource("zillow").Valid() {
		t.Error("LeadSource.Valid mismatch")
	}
	if !PropertyPlot.Valid() || PropertyType("castle").Valid() {
		t.Error("PropertyType.Valid mismatch")
	}
	if !RoleViewer.Valid() || Role("root").Valid() {
		t.Error("Role.Valid mismatch")
	}
	if !ChannelCall.Valid() || ChannelType("fax").Valid() {
		t.Error("ChannelType.Valid mismatch")
	}
	if !LanguageHindi.Valid() || Language("fr").Valid() {
		t.Error("Language.Valid mismatch")
	}
}
