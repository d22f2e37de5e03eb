// ircd runs a standalone IRC server from a key = value configuration
// file.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/horgh/config"
	"github.com/sirupsen/logrus"
	"github.com/smallirc/ircd"
)

func main() {
	conf := flag.String("conf", "", "Path to the configuration file.")
	flag.Parse()

	logrus.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"addr", "nick", "channel"},
	})

	if *conf == "" {
		logrus.Error("you must specify a configuration file")
		flag.Usage()
		os.Exit(1)
	}

	settings, tlsConfig, err := parseConfig(*conf)
	if err != nil {
		logrus.Fatalf("configuration error: %s", err)
	}

	server := ircd.New(settings, callbacks())
	if tlsConfig != nil {
		server.UseTLS(tlsConfig)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logrus.Infof("%s received, shutting down", sig)
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		logrus.Fatalf("server error: %s", err)
	}
}

func callbacks() ircd.ServerCallbacks {
	return ircd.ServerCallbacks{
		OnClientConnect: func(addr net.Addr) (bool, error) {
			logrus.WithField("addr", addr.String()).Info("client connected")
			return true, nil
		},
		OnClientRegistered: func(c *ircd.Client) {
			logrus.WithField("nick", c.Nick()).Info("client registered")
		},
		OnClientDisconnect: func(addr net.Addr) {
			logrus.WithField("addr", addr.String()).Info("client gone")
		},
	}
}

// parseConfig loads the config file and checks keys are present and in
// an acceptable format. Unset optional keys keep their defaults.
func parseConfig(file string) (ircd.ServerSettings, *tls.Config, error) {
	settings := ircd.DefaultSettings()

	configMap, err := config.ReadStringMap(file)
	if err != nil {
		return settings, nil, err
	}

	requiredKeys := []string{
		"listen-addr",
		"server-name",
		"network-name",
	}
	for _, key := range requiredKeys {
		if v, exists := configMap[key]; !exists || v == "" {
			return settings, nil, fmt.Errorf("missing required key: %s", key)
		}
	}

	settings.ListenAddr = configMap["listen-addr"]
	settings.ServerName = configMap["server-name"]
	settings.NetworkName = configMap["network-name"]
	if v, exists := configMap["server-info"]; exists {
		settings.ServerInfo = v
	}

	intKeys := map[string]*int{
		"max-nick-length":    &settings.MaxNickLength,
		"max-channel-length": &settings.MaxChannelLength,
		"max-topic-length":   &settings.MaxTopicLength,
		"max-channels":       &settings.MaxChannels,
	}
	for key, dst := range intKeys {
		v, exists := configMap[key]
		if !exists {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return settings, nil, fmt.Errorf("%s is not valid: %s", key, err)
		}
		*dst = n
	}

	if v, exists := configMap["allow-channel-creation"]; exists {
		switch v {
		case "yes":
			settings.AllowChannelCreation = true
		case "no":
			settings.AllowChannelCreation = false
		default:
			return settings, nil, fmt.Errorf(
				"allow-channel-creation must be yes or no")
		}
	}

	cert, haveCert := configMap["tls-cert"]
	key, haveKey := configMap["tls-key"]
	if haveCert != haveKey {
		return settings, nil, fmt.Errorf(
			"tls-cert and tls-key must be set together")
	}
	if !haveCert {
		return settings, nil, nil
	}

	pair, err := tls.LoadX509KeyPair(cert, key)
	if err != nil {
		return settings, nil, fmt.Errorf("unable to load TLS keypair: %s", err)
	}
	return settings, &tls.Config{Certificates: []tls.Certificate{pair}}, nil
}
