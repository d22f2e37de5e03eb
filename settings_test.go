package ircd

import "testing"

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		Name   string
		Mutate func(*ServerSettings)
		Valid  bool
	}{
		{"defaults", func(s *ServerSettings) {}, true},
		{"blank listen addr", func(s *ServerSettings) {
			s.ListenAddr = ""
		}, false},
		{"blank server name", func(s *ServerSettings) {
			s.ServerName = ""
		}, false},
		{"server name with space", func(s *ServerSettings) {
			s.ServerName = "irc example.com"
		}, false},
		{"network name with space", func(s *ServerSettings) {
			s.NetworkName = "My Network"
		}, false},
		{"zero nick length", func(s *ServerSettings) {
			s.MaxNickLength = 0
		}, false},
		{"huge topic length", func(s *ServerSettings) {
			s.MaxTopicLength = 416
		}, false},
		{"zero max channels", func(s *ServerSettings) {
			s.MaxChannels = 0
		}, false},
	}

	for _, test := range tests {
		settings := DefaultSettings()
		test.Mutate(&settings)
		err := settings.validate()
		if test.Valid && err != nil {
			t.Errorf("%s: validate() = %s, wanted nil", test.Name, err)
		}
		if !test.Valid && err == nil {
			t.Errorf("%s: validate() = nil, wanted an error", test.Name)
		}
	}
}

func TestIsValidChannelName(t *testing.T) {
	tests := []struct {
		MaxLen int
		Name   string
		Valid  bool
	}{
		{50, "#go", true},
		{50, "#", false},
		{50, "go", false},
		{50, "#has space", false},
		{50, "#has,comma", false},
		{50, "#has\x07bell", false},
		{5, "#abcd", true},
		{5, "#abcde", false},
	}

	for _, test := range tests {
		if got := isValidChannelName(test.MaxLen, test.Name); got != test.Valid {
			t.Errorf("isValidChannelName(%d, %q) = %v, wanted %v", test.MaxLen,
				test.Name, got, test.Valid)
		}
	}
}

func TestSafeWord(t *testing.T) {
	tests := []struct {
		In, Out string
	}{
		{"plain", "plain"},
		{"two words", "two"},
		{"", "*"},
		{" leading", "*"},
	}

	for _, test := range tests {
		if got := safeWord(test.In); got != test.Out {
			t.Errorf("safeWord(%q) = %q, wanted %q", test.In, got, test.Out)
		}
	}
}
