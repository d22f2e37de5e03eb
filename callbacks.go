package ircd

import "net"

// ServerCallbacks let the host program observe and veto client
// lifecycle events. Any field may be left nil; New installs permissive
// defaults for the rest.
//
// Callbacks run on the session goroutine of the client in question, so
// a slow callback stalls only that client.
type ServerCallbacks struct {
	// OnClientConnect runs when a connection is accepted, before any
	// protocol exchange. Return false or an error to drop it.
	OnClientConnect func(addr net.Addr) (bool, error)

	// OnClientRegistering runs once the client has sent both NICK and
	// USER, before the welcome burst. Return false or an error to
	// refuse registration and close the connection.
	OnClientRegistering func(c *Client) (bool, error)

	// OnClientRegistered runs after the welcome burst has been sent.
	OnClientRegistered func(c *Client)

	// OnClientDisconnect runs when a session ends, whether or not the
	// client ever registered.
	OnClientDisconnect func(addr net.Addr)

	// OnClientChannelMessage runs for each PRIVMSG or NOTICE aimed at a
	// channel the client is in. Return false to suppress delivery; for
	// PRIVMSG an error is reported to the sender as ERR_CANNOTSENDTOCHAN
	// with the error text.
	OnClientChannelMessage func(c *Client, ch *Channel, m Message) (bool, error)
}

func (cb ServerCallbacks) withDefaults() ServerCallbacks {
	if cb.OnClientConnect == nil {
		cb.OnClientConnect = func(net.Addr) (bool, error) { return true, nil }
	}
	if cb.OnClientRegistering == nil {
		cb.OnClientRegistering = func(*Client) (bool, error) { return true, nil }
	}
	if cb.OnClientRegistered == nil {
		cb.OnClientRegistered = func(*Client) {}
	}
	if cb.OnClientDisconnect == nil {
		cb.OnClientDisconnect = func(net.Addr) {}
	}
	if cb.OnClientChannelMessage == nil {
		cb.OnClientChannelMessage = func(*Client, *Channel, Message) (bool, error) {
			return true, nil
		}
	}
	return cb
}
