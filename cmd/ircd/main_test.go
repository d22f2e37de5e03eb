package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "ircd.conf")
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write config: %s", err)
	}
	return file
}

func TestParseConfig(t *testing.T) {
	file := writeConfig(t, `
listen-addr = 127.0.0.1:16667
server-name = irc.test.example.org
network-name = TestNet
server-info = A test server
max-nick-length = 9
max-channels = 10
allow-channel-creation = no
`)

	settings, tlsConfig, err := parseConfig(file)
	if err != nil {
		t.Fatalf("parseConfig() = %s", err)
	}
	if tlsConfig != nil {
		t.Errorf("got a TLS config without tls keys")
	}

	if settings.ListenAddr != "127.0.0.1:16667" {
		t.Errorf("ListenAddr = %s", settings.ListenAddr)
	}
	if settings.ServerName != "irc.test.example.org" {
		t.Errorf("ServerName = %s", settings.ServerName)
	}
	if settings.NetworkName != "TestNet" {
		t.Errorf("NetworkName = %s", settings.NetworkName)
	}
	if settings.ServerInfo != "A test server" {
		t.Errorf("ServerInfo = %s", settings.ServerInfo)
	}
	if settings.MaxNickLength != 9 {
		t.Errorf("MaxNickLength = %d", settings.MaxNickLength)
	}
	if settings.MaxChannels != 10 {
		t.Errorf("MaxChannels = %d", settings.MaxChannels)
	}
	if settings.AllowChannelCreation {
		t.Errorf("AllowChannelCreation = true, wanted false")
	}

	// Unset keys keep their defaults.
	if settings.MaxTopicLength != 390 {
		t.Errorf("MaxTopicLength = %d, wanted the default", settings.MaxTopicLength)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		Name    string
		Content string
	}{
		{"missing server-name", `
listen-addr = 127.0.0.1:16667
network-name = TestNet
`},
		{"bad int", `
listen-addr = 127.0.0.1:16667
server-name = irc.test.example.org
network-name = TestNet
max-channels = many
`},
		{"bad allow-channel-creation", `
listen-addr = 127.0.0.1:16667
server-name = irc.test.example.org
network-name = TestNet
allow-channel-creation = maybe
`},
		{"tls-cert without tls-key", `
listen-addr = 127.0.0.1:16667
server-name = irc.test.example.org
network-name = TestNet
tls-cert = /nonexistent/cert.pem
`},
	}

	for _, test := range tests {
		file := writeConfig(t, test.Content)
		if _, _, err := parseConfig(file); err == nil {
			t.Errorf("%s: parseConfig() = nil, wanted an error", test.Name)
		}
	}
}
