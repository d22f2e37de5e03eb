package ircd

import (
	"fmt"
	"strings"
)

// Version is reported in the welcome burst and by VERSION.
const Version = "smallircd-0.1.0"

// ServerSettings configures a Server. Start with DefaultSettings and
// override what you need; Server.Start validates the result.
type ServerSettings struct {
	// Address to listen on, host:port.
	ListenAddr string

	// Name this server calls itself. Used as the source of every
	// server-originated message. No spaces.
	ServerName string

	// Name of the network, reported in the welcome and ISUPPORT.
	NetworkName string

	// Free-form description reported by WHOIS (RPL_WHOISSERVER).
	ServerInfo string

	// Limits advertised in ISUPPORT and enforced during commands.
	MaxNickLength    int
	MaxChannelLength int
	MaxTopicLength   int
	MaxChannels      int

	// Whether JOIN may create channels that do not exist yet. When
	// false, joining an unknown channel yields ERR_NOSUCHCHANNEL.
	AllowChannelCreation bool
}

// DefaultSettings returns settings good enough for a local test server.
func DefaultSettings() ServerSettings {
	return ServerSettings{
		ListenAddr:           "0.0.0.0:6667",
		ServerName:           "server.example.com",
		NetworkName:          "Example",
		ServerInfo:           "An IRC server",
		MaxNickLength:        16,
		MaxChannelLength:     50,
		MaxTopicLength:       390,
		MaxChannels:          120,
		AllowChannelCreation: true,
	}
}

// validate reports the first problem with the settings. The length
// limits must leave room for a command and source in a 512 byte line.
func (s ServerSettings) validate() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("listen address must not be blank")
	}
	if s.ServerName == "" || strings.ContainsRune(s.ServerName, ' ') {
		return fmt.Errorf("server name must be non-blank and contain no spaces")
	}
	if s.NetworkName == "" || strings.ContainsRune(s.NetworkName, ' ') {
		return fmt.Errorf("network name must be non-blank and contain no spaces")
	}

	const maxField = 416
	if s.MaxNickLength <= 0 || s.MaxNickLength >= maxField {
		return fmt.Errorf("max nick length must be in (0, %d)", maxField)
	}
	if s.MaxChannelLength <= 0 || s.MaxChannelLength >= maxField {
		return fmt.Errorf("max channel length must be in (0, %d)", maxField)
	}
	if s.MaxTopicLength <= 0 || s.MaxTopicLength >= maxField {
		return fmt.Errorf("max topic length must be in (0, %d)", maxField)
	}
	if s.MaxChannels <= 0 {
		return fmt.Errorf("max channels must be positive")
	}

	return nil
}
