package ircd

import "testing"

func TestApplyUserModeString(t *testing.T) {
	tests := []struct {
		Start   UserMode
		Modes   string
		Applied string
		Unknown byte
		End     UserMode
	}{
		// Setting a flag already set is not echoed.
		{UserMode{Invisible: true}, "+i", "", 0, UserMode{Invisible: true}},
		{UserMode{Invisible: true}, "-i", "-i", 0, UserMode{}},
		{UserMode{Invisible: true}, "+iwB", "+wB", 0,
			UserMode{Invisible: true, SeeWallops: true, Bot: true}},
		// A missing leading sign means positive.
		{UserMode{}, "wB", "+wB", 0, UserMode{SeeWallops: true, Bot: true}},
		// Signs are re-emitted only when the direction changes.
		{UserMode{Invisible: true}, "+w-i+B", "+w-i+B", 0,
			UserMode{SeeWallops: true, Bot: true}},
		{UserMode{Invisible: true}, "-i+i", "-i+i", 0,
			UserMode{Invisible: true}},
		{UserMode{}, "+w+B", "+wB", 0, UserMode{SeeWallops: true, Bot: true}},
		// Unknown letters are skipped; the last one is reported.
		{UserMode{}, "+x", "", 'x', UserMode{}},
		{UserMode{}, "+xy", "", 'y', UserMode{}},
		{UserMode{Invisible: true}, "+w+x-i", "+w-i", 'x',
			UserMode{SeeWallops: true}},
		{UserMode{}, "", "", 0, UserMode{}},
	}

	for _, test := range tests {
		mode := test.Start
		applied, unknown := applyModeString(mode.flag, test.Modes)
		if applied != test.Applied || unknown != test.Unknown {
			t.Errorf("apply(%v, %q) = (%q, %q), wanted (%q, %q)", test.Start,
				test.Modes, applied, string(unknown), test.Applied,
				string(test.Unknown))
		}
		if mode != test.End {
			t.Errorf("apply(%v, %q) left %v, wanted %v", test.Start,
				test.Modes, mode, test.End)
		}
	}
}

func TestApplyChannelModeString(t *testing.T) {
	tests := []struct {
		Start   ChannelMode
		Modes   string
		Applied string
		Unknown byte
		End     ChannelMode
	}{
		{ChannelMode{NoExternalMsgs: true}, "+n", "", 0,
			ChannelMode{NoExternalMsgs: true}},
		{ChannelMode{NoExternalMsgs: true}, "-n", "-n", 0, ChannelMode{}},
		{ChannelMode{}, "+n+s", "+n", 's', ChannelMode{NoExternalMsgs: true}},
	}

	for _, test := range tests {
		mode := test.Start
		applied, unknown := applyModeString(mode.flag, test.Modes)
		if applied != test.Applied || unknown != test.Unknown {
			t.Errorf("apply(%v, %q) = (%q, %q), wanted (%q, %q)", test.Start,
				test.Modes, applied, string(unknown), test.Applied,
				string(test.Unknown))
		}
		if mode != test.End {
			t.Errorf("apply(%v, %q) left %v, wanted %v", test.Start,
				test.Modes, mode, test.End)
		}
	}
}

func TestModeString(t *testing.T) {
	if got := defaultUserMode().String(); got != "+i" {
		t.Errorf("default user mode = %q, wanted +i", got)
	}
	if got := defaultChannelMode().String(); got != "+n" {
		t.Errorf("default channel mode = %q, wanted +n", got)
	}

	m := UserMode{Invisible: true, SeeWallops: true, Bot: true}
	if got := m.String(); got != "+iwB" {
		t.Errorf("got %q, wanted +iwB", got)
	}
	if got := (UserMode{}).String(); got != "+" {
		t.Errorf("got %q, wanted +", got)
	}
}
