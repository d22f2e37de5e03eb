package ircd

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ServerState is the shared state every session works against: the
// settings, the host callbacks, and the three registries.
//
// Lock order, outermost first: channelsMu, nicksMu, clientsMu,
// Channel.mu, Client.chansMu, Client.writeMu. Never take an earlier
// lock while holding a later one.
type ServerState struct {
	settings  ServerSettings
	callbacks ServerCallbacks
	created   time.Time

	channelsMu sync.Mutex
	// Canonicalized name to channel.
	channels map[string]*Channel

	nicksMu sync.RWMutex
	// Canonicalized nick to registered client.
	nicks map[string]*Client
	// Most registered users seen at once since startup.
	maxSeen int

	clientsMu sync.Mutex
	// Remote address to client, registered or not.
	clients map[string]*Client
}

func newServerState(settings ServerSettings, callbacks ServerCallbacks) *ServerState {
	return &ServerState{
		settings:  settings,
		callbacks: callbacks,
		created:   time.Now(),
		channels:  make(map[string]*Channel),
		nicks:     make(map[string]*Client),
		clients:   make(map[string]*Client),
	}
}

func (s *ServerState) createdText() string {
	return s.created.UTC().Format(time.RFC1123)
}

// upperASCII uppercases ASCII letters only. Nicks and channel names are
// compared in this form (CASEMAPPING=ascii).
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func (s *ServerState) addClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.addr] = c
}

func (s *ServerState) removeClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, c.addr)
}

func (s *ServerState) lookupNick(nick string) *Client {
	s.nicksMu.RLock()
	defer s.nicksMu.RUnlock()
	return s.nicks[upperASCII(nick)]
}

// claimNick records nick as belonging to c if no one holds it. It also
// tracks the user high-water mark for LUSERS.
func (s *ServerState) claimNick(nick string, c *Client) bool {
	key := upperASCII(nick)

	s.nicksMu.Lock()
	defer s.nicksMu.Unlock()

	if _, exists := s.nicks[key]; exists {
		return false
	}
	s.nicks[key] = c
	if len(s.nicks) > s.maxSeen {
		s.maxSeen = len(s.nicks)
	}
	return true
}

func (s *ServerState) releaseNick(nick string) {
	s.nicksMu.Lock()
	defer s.nicksMu.Unlock()
	delete(s.nicks, upperASCII(nick))
}

// renameNick moves c from one nick to another in a single critical
// section. It fails without side effects if the new nick is taken by
// anyone but c itself.
func (s *ServerState) renameNick(oldNick, newNick string, c *Client) bool {
	oldKey := upperASCII(oldNick)
	newKey := upperASCII(newNick)

	s.nicksMu.Lock()
	defer s.nicksMu.Unlock()

	if holder, exists := s.nicks[newKey]; exists && holder != c {
		return false
	}
	delete(s.nicks, oldKey)
	s.nicks[newKey] = c
	return true
}

func (s *ServerState) lookupChannel(name string) *Channel {
	s.channelsMu.Lock()
	defer s.channelsMu.Unlock()
	return s.channels[upperASCII(name)]
}

// joinChannel looks up or creates the named channel and inserts c as a
// member, all under channelsMu: a concurrent departure of the last
// member cannot destroy the channel between the lookup and the insert.
// Returns false if the channel is absent and creation was not
// permitted.
func (s *ServerState) joinChannel(name string, c *Client, mayCreate bool) (*Channel, bool) {
	key := upperASCII(name)

	s.channelsMu.Lock()
	ch, exists := s.channels[key]
	if !exists {
		if !mayCreate {
			s.channelsMu.Unlock()
			return nil, false
		}
		ch = newChannel(name)
		s.channels[key] = ch
	}
	ch.addMember(c)
	s.channelsMu.Unlock()

	c.chansMu.Lock()
	c.channels[key] = ch
	c.chansMu.Unlock()

	return ch, true
}

// allChannels returns a snapshot of every channel, sorted by name.
func (s *ServerState) allChannels() []*Channel {
	s.channelsMu.Lock()
	chans := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		chans = append(chans, ch)
	}
	s.channelsMu.Unlock()

	sort.Slice(chans, func(i, j int) bool { return chans[i].name < chans[j].name })
	return chans
}

// removeMember takes c out of ch, destroying the channel if it empties,
// and drops ch from c's joined set.
func (s *ServerState) removeMember(ch *Channel, c *Client) {
	s.channelsMu.Lock()
	ch.mu.Lock()
	delete(ch.members, c.addr)
	if len(ch.members) == 0 {
		delete(s.channels, upperASCII(ch.name))
	}
	ch.mu.Unlock()
	s.channelsMu.Unlock()

	c.chansMu.Lock()
	delete(c.channels, upperASCII(ch.name))
	c.chansMu.Unlock()
}

type serverCounts struct {
	users     int
	invisible int
	channels  int
	clients   int
	maxSeen   int
}

// counts gathers the LUSERS numbers. Each registry is locked in turn,
// never nested, so the totals are a near-snapshot rather than an exact
// one. Good enough for statistics.
func (s *ServerState) counts() serverCounts {
	var n serverCounts

	s.nicksMu.RLock()
	users := make([]*Client, 0, len(s.nicks))
	for _, c := range s.nicks {
		users = append(users, c)
	}
	n.maxSeen = s.maxSeen
	s.nicksMu.RUnlock()

	n.users = len(users)
	for _, c := range users {
		c.mu.Lock()
		if c.mode.Invisible {
			n.invisible++
		}
		c.mu.Unlock()
	}

	s.channelsMu.Lock()
	n.channels = len(s.channels)
	s.channelsMu.Unlock()

	s.clientsMu.Lock()
	n.clients = len(s.clients)
	s.clientsMu.Unlock()

	return n
}

// isupportMessages builds the 005 burst. Tokens are packed greedily
// into as few messages as fit the line limit.
func (s *ServerState) isupportMessages(nick string) []Message {
	tokens := []string{
		"CASEMAPPING=ascii",
		fmt.Sprintf("CHANLIMIT=#:%d", s.settings.MaxChannels),
		"CHANMODES=" + ChanModes,
		fmt.Sprintf("CHANNELLEN=%d", s.settings.MaxChannelLength),
		"CHANTYPES=#",
		"NETWORK=" + s.settings.NetworkName,
		fmt.Sprintf("NICKLEN=%d", s.settings.MaxNickLength),
		"PREFIX",
		"SILENCE",
		fmt.Sprintf("TOPICLEN=%d", s.settings.MaxTopicLength),
	}

	var msgs []Message
	var batch []string
	for _, tok := range tokens {
		batch = append(batch, tok)
		m := s.reply(nick, RplISupport{Features: batch})
		if len(m.Line()) > MaxLineLength {
			msgs = append(msgs,
				s.reply(nick, RplISupport{Features: batch[:len(batch)-1]}))
			batch = []string{tok}
		}
	}
	if len(batch) > 0 {
		msgs = append(msgs, s.reply(nick, RplISupport{Features: batch}))
	}
	return msgs
}

// lusersMessages builds the LUSERS burst sent at registration and on
// the LUSERS command. Operator counts are always zero since there are
// no operators here.
func (s *ServerState) lusersMessages(nick string) []Message {
	n := s.counts()

	return []Message{
		s.reply(nick, RplLuserClient{
			Visible:   n.users - n.invisible,
			Invisible: n.invisible,
		}),
		s.reply(nick, RplLuserOp{Ops: 0}),
		s.reply(nick, RplLuserUnknown{Unknown: n.clients - n.users}),
		s.reply(nick, RplLuserChannels{Channels: n.channels}),
		s.reply(nick, RplLuserMe{Users: n.users}),
		s.reply(nick, RplLocalUsers{Users: n.users, Max: n.maxSeen}),
		s.reply(nick, RplGlobalUsers{Users: n.users, Max: n.maxSeen}),
	}
}
