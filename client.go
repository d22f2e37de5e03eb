package ircd

import (
	"fmt"
	"net"
	"sync"
)

// Client is one connection's session: its identity, the channels it is
// in, and its half of the socket. One goroutine runs the session; other
// sessions touch it only through Send and the locked accessors.
type Client struct {
	state  *ServerState
	conn   *lineConn
	addr   string
	remote net.Addr
	// Remote IP, the host part of the client's prefix.
	host string

	mu         sync.Mutex
	nick       string
	username   string
	realname   string
	registered bool
	mode       UserMode

	chansMu sync.RWMutex
	// Canonicalized channel name to channel.
	channels map[string]*Channel

	writeMu sync.Mutex
}

// quitError ends a session with a QUIT broadcast carrying the reason.
type quitError struct {
	reason string
}

func (e quitError) Error() string {
	return fmt.Sprintf("client quit: %s", e.reason)
}

func newClient(s *ServerState, conn net.Conn) *Client {
	lc := newLineConn(conn)
	return &Client{
		state:    s,
		conn:     lc,
		addr:     lc.remoteAddr(),
		remote:   conn.RemoteAddr(),
		host:     lc.hostIP(),
		mode:     defaultUserMode(),
		channels: make(map[string]*Channel),
	}
}

// Nick returns the client's current nick, or "" before one is set.
func (c *Client) Nick() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nick
}

// Username returns the client's username, tilde prefix included.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// Realname returns the realname given on USER.
func (c *Client) Realname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.realname
}

// Host returns the client's host, its remote IP.
func (c *Client) Host() string {
	return c.host
}

// RemoteAddr returns the client's network address.
func (c *Client) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Client) isRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered
}

// prefix returns the nick!user@host source for messages this client
// originates.
func (c *Client) prefix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%s!%s@%s", c.nick, c.username, c.host)
}

// replyTarget is the nick numerics are addressed to: "*" until the
// client has a nick.
func (c *Client) replyTarget() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nick == "" {
		return "*"
	}
	return c.nick
}

func (c *Client) userModeState() UserMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Client) applyUserMode(modes string) (string, byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return applyModeString(c.mode.flag, modes)
}

// Send writes one message to the client. Safe for concurrent use.
func (c *Client) Send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.writeLine(msg.Line())
}

func (c *Client) sendAll(msgs []Message) error {
	for _, msg := range msgs {
		if err := c.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendReply(r Reply) error {
	return c.Send(c.state.reply(c.replyTarget(), r))
}

// channelSnapshot returns the channels the client is currently in.
func (c *Client) channelSnapshot() []*Channel {
	c.chansMu.RLock()
	defer c.chansMu.RUnlock()

	chans := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		chans = append(chans, ch)
	}
	return chans
}

func (c *Client) channelCount() int {
	c.chansMu.RLock()
	defer c.chansMu.RUnlock()
	return len(c.channels)
}

// joinedChannel returns the named channel if the client is in it.
func (c *Client) joinedChannel(name string) *Channel {
	c.chansMu.RLock()
	defer c.chansMu.RUnlock()
	return c.channels[upperASCII(name)]
}

// broadcast sends msg to every client sharing a channel with c, each at
// most once. With includeSelf the client itself receives the message
// first. Errors sending to peers are swallowed; an error sending to
// self is returned.
func (c *Client) broadcast(msg Message, includeSelf bool) error {
	seen := map[string]struct{}{c.addr: {}}

	if includeSelf {
		if err := c.Send(msg); err != nil {
			return err
		}
	}

	for _, ch := range c.channelSnapshot() {
		for _, member := range ch.memberSnapshot() {
			if _, dup := seen[member.addr]; dup {
				continue
			}
			seen[member.addr] = struct{}{}
			if err := member.Send(msg); err != nil {
				log.WithField("addr", member.addr).Debugf(
					"dropping broadcast send: %s", err)
			}
		}
	}

	return nil
}

// closeWithError sends an ERROR line and returns an error that ends the
// session. Used for refusals before or during registration, which get
// no QUIT broadcast.
func (c *Client) closeWithError(text string) error {
	_ = c.Send(Message{
		Command: "ERROR",
		Params:  []string{fmt.Sprintf("Closing Link: %s (%s)", c.host, text)},
	})
	return fmt.Errorf("closing link: %s", text)
}

// tryBeginRegistration registers the client once both NICK and USER
// have arrived. The nick was pre-checked by the NICK handler, but the
// claim can still lose a race.
func (c *Client) tryBeginRegistration() error {
	c.mu.Lock()
	nick, username := c.nick, c.username
	c.mu.Unlock()

	if nick == "" || username == "" {
		return nil
	}

	if !c.state.claimNick(nick, c) {
		return c.closeWithError("Overridden")
	}

	c.mu.Lock()
	c.registered = true
	c.mu.Unlock()

	ok, err := c.state.callbacks.OnClientRegistering(c)
	if err != nil {
		log.WithField("addr", c.addr).Infof("registration refused: %s", err)
		ok = false
	}
	if !ok {
		c.mu.Lock()
		c.registered = false
		c.mu.Unlock()
		c.state.releaseNick(nick)
		return c.closeWithError("Registration refused")
	}

	return c.finishRegistration()
}

// finishRegistration sends the welcome burst: 001 through 004,
// ISUPPORT, LUSERS, and the MOTD response.
func (c *Client) finishRegistration() error {
	nick := c.Nick()
	s := c.state

	msgs := []Message{
		s.reply(nick, RplWelcome{}),
		s.reply(nick, RplYourHost{}),
		s.reply(nick, RplCreated{}),
		s.reply(nick, RplMyInfo{}),
	}
	msgs = append(msgs, s.isupportMessages(nick)...)
	msgs = append(msgs, s.lusersMessages(nick)...)
	msgs = append(msgs, s.reply(nick, ErrNoMotd{}))

	if err := c.sendAll(msgs); err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"addr": c.addr,
		"nick": nick,
	}).Info("client registered")

	s.callbacks.OnClientRegistered(c)
	return nil
}

// run is the session loop: read a line, parse, dispatch, until the
// connection drops or a handler ends the session.
func (c *Client) run() {
	reason := "Quit"
	defer func() { c.teardown(reason) }()

	for {
		line, err := c.conn.readLine()
		if err != nil {
			log.WithField("addr", c.addr).Debugf("read ended: %s", err)
			return
		}

		msg := ParseMessage(line)
		if msg.Command == "" {
			continue
		}

		if err := c.state.dispatch(c, msg); err != nil {
			if q, ok := err.(quitError); ok {
				reason = q.reason
			} else {
				log.WithField("addr", c.addr).Debugf("session ended: %s", err)
			}
			return
		}
	}
}

// teardown unwinds the session: QUIT broadcast if registered, then the
// registries, then the socket.
func (c *Client) teardown(reason string) {
	c.state.callbacks.OnClientDisconnect(c.remote)

	c.mu.Lock()
	nick := c.nick
	registered := c.registered
	c.registered = false
	c.mu.Unlock()

	if registered {
		_ = c.broadcast(Message{
			Source:    c.prefix(),
			HasSource: true,
			Command:   "QUIT",
			Params:    []string{reason},
		}, false)
		c.state.releaseNick(nick)
	}

	c.state.removeClient(c)

	for _, ch := range c.channelSnapshot() {
		c.state.removeMember(ch, c)
	}

	_ = c.conn.close()

	log.WithField("addr", c.addr).Info("client disconnected")
}
