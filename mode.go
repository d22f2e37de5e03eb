package ircd

import "strings"

// ChanModes is the CHANMODES ISUPPORT value: no list, key, or
// parameterized modes, and one flag mode (n).
const ChanModes = ",,,n"

// UserMode is the set of user mode flags a client may carry. New
// clients start invisible.
type UserMode struct {
	Invisible  bool // +i
	SeeWallops bool // +w
	Bot        bool // +B
}

func defaultUserMode() UserMode {
	return UserMode{Invisible: true}
}

func (m *UserMode) flag(c byte) *bool {
	switch c {
	case 'i':
		return &m.Invisible
	case 'w':
		return &m.SeeWallops
	case 'B':
		return &m.Bot
	}
	return nil
}

func (m UserMode) String() string {
	s := "+"
	if m.Invisible {
		s += "i"
	}
	if m.SeeWallops {
		s += "w"
	}
	if m.Bot {
		s += "B"
	}
	return s
}

// ChannelMode is the set of channel mode flags. New channels start +n.
type ChannelMode struct {
	NoExternalMsgs bool // +n
}

func defaultChannelMode() ChannelMode {
	return ChannelMode{NoExternalMsgs: true}
}

func (m *ChannelMode) flag(c byte) *bool {
	switch c {
	case 'n':
		return &m.NoExternalMsgs
	}
	return nil
}

func (m ChannelMode) String() string {
	s := "+"
	if m.NoExternalMsgs {
		s += "n"
	}
	return s
}

// applyModeString walks a mode string such as "+i-w+x" and applies each
// recognized flag through lookup. It returns the minimal string of
// changes actually made, normalized so each sign appears only when the
// direction switches, plus the last unrecognized mode letter (0 if
// none). Letters that would not change anything are dropped from the
// echo.
func applyModeString(lookup func(byte) *bool, modes string) (string, byte) {
	var applied strings.Builder
	positive := true
	appliedPositive := false
	var unknown byte

	for i := 0; i < len(modes); i++ {
		c := modes[i]
		switch c {
		case '+':
			positive = true
		case '-':
			positive = false
		default:
			flag := lookup(c)
			if flag == nil {
				unknown = c
				continue
			}
			if *flag == positive {
				continue
			}
			*flag = positive
			if applied.Len() == 0 || appliedPositive != positive {
				if positive {
					applied.WriteByte('+')
				} else {
					applied.WriteByte('-')
				}
				appliedPositive = positive
			}
			applied.WriteByte(c)
		}
	}

	return applied.String(), unknown
}
