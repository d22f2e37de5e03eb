package ircd

import (
	"sort"
	"sync"
	"time"
)

// Topic is a channel topic along with who set it and when.
type Topic struct {
	Text  string
	SetBy string
	SetAt int64
}

// Channel is one channel and its members. Channels exist only while
// they have members; the last PART or QUIT destroys them.
type Channel struct {
	// As given by the creating client. Lookups canonicalize.
	name    string
	created int64

	mu sync.RWMutex
	// Remote address to member.
	members map[string]*Client
	topic   *Topic
	mode    ChannelMode
}

func newChannel(name string) *Channel {
	return &Channel{
		name:    name,
		created: time.Now().Unix(),
		members: make(map[string]*Client),
		mode:    defaultChannelMode(),
	}
}

// Name returns the channel name in its original spelling.
func (ch *Channel) Name() string {
	return ch.name
}

func (ch *Channel) addMember(c *Client) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.members[c.addr] = c
}

func (ch *Channel) hasMember(c *Client) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	_, exists := ch.members[c.addr]
	return exists
}

// memberSnapshot returns the members at a moment in time. Callers
// iterate it without holding the channel lock.
func (ch *Channel) memberSnapshot() []*Client {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	members := make([]*Client, 0, len(ch.members))
	for _, c := range ch.members {
		members = append(members, c)
	}
	return members
}

// send delivers msg to every member except the one at excludeAddr
// (empty to exclude no one). Per-member write errors are the failing
// session's problem, not the sender's.
func (ch *Channel) send(msg Message, excludeAddr string) {
	for _, member := range ch.memberSnapshot() {
		if member.addr == excludeAddr {
			continue
		}
		if err := member.Send(msg); err != nil {
			log.WithFields(map[string]interface{}{
				"channel": ch.name,
				"addr":    member.addr,
			}).Debugf("dropping channel send: %s", err)
		}
	}
}

// namesMessages builds the 353 burst for this channel, splitting the
// name list across as many messages as the line limit requires. The
// caller follows up with the appropriate 366.
func (ch *Channel) namesMessages(s *ServerState, nick string) []Message {
	members := ch.memberSnapshot()

	nicks := make([]string, 0, len(members))
	for _, member := range members {
		nicks = append(nicks, member.Nick())
	}
	sort.Strings(nicks)

	base := s.reply(nick, RplNameReply{Symbol: '=', Channel: ch.name})
	return SplitTrailing(base, nicks, " ")
}

// topicState returns a copy of the current topic, or nil if unset.
func (ch *Channel) topicState() *Topic {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.topic == nil {
		return nil
	}
	t := *ch.topic
	return &t
}

func (ch *Channel) setTopic(t *Topic) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.topic = t
}

func (ch *Channel) modeState() ChannelMode {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.mode
}

// applyMode runs a mode string against the channel mode, returning the
// applied changes and the last unknown letter.
func (ch *Channel) applyMode(modes string) (string, byte) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return applyModeString(ch.mode.flag, modes)
}
