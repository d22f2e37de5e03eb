package ircd

import (
	"strings"
	"time"
)

func handleJoin(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "JOIN"})
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		if !isValidChannelName(c.state.settings.MaxChannelLength, name) {
			if err := c.sendReply(ErrNoSuchChannel{Channel: name}); err != nil {
				return err
			}
			continue
		}

		if c.channelCount() >= c.state.settings.MaxChannels {
			if err := c.sendReply(ErrTooManyChannels{Channel: name}); err != nil {
				return err
			}
			break
		}

		if c.joinedChannel(name) != nil {
			continue
		}

		ch, ok := c.state.joinChannel(name, c,
			c.state.settings.AllowChannelCreation)
		if !ok {
			if err := c.sendReply(ErrNoSuchChannel{Channel: name}); err != nil {
				return err
			}
			continue
		}

		join := Message{
			Source:    c.prefix(),
			HasSource: true,
			Command:   "JOIN",
			Params:    []string{ch.name},
		}
		if err := c.Send(join); err != nil {
			return err
		}
		ch.send(join, c.addr)

		if t := ch.topicState(); t != nil {
			if err := c.sendReply(RplTopic{Channel: ch.name, Text: t.Text}); err != nil {
				return err
			}
			if err := c.sendReply(RplTopicWhoTime{
				Channel: ch.name, Who: t.SetBy, Time: t.SetAt,
			}); err != nil {
				return err
			}
		}

		if err := c.sendAll(ch.namesMessages(c.state, c.Nick())); err != nil {
			return err
		}
		if err := c.sendReply(RplEndOfNames{Channel: ch.name}); err != nil {
			return err
		}
	}

	return nil
}

func handlePart(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "PART"})
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		if err := partChannel(c, name); err != nil {
			return err
		}
	}
	return nil
}

func partChannel(c *Client, name string) error {
	if !strings.HasPrefix(name, "#") {
		return c.sendReply(ErrNoSuchChannel{Channel: name})
	}

	ch := c.joinedChannel(name)
	if ch == nil {
		return c.sendReply(ErrNotOnChannel{Channel: name})
	}

	part := Message{
		Source:    c.prefix(),
		HasSource: true,
		Command:   "PART",
		Params:    []string{ch.name},
	}
	if err := c.Send(part); err != nil {
		return err
	}
	ch.send(part, c.addr)

	c.state.removeMember(ch, c)
	return nil
}

func handleTopic(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "TOPIC"})
	}

	name := m.Params[0]
	ch := c.state.lookupChannel(name)
	if ch == nil {
		return c.sendReply(ErrNoSuchChannel{Channel: name})
	}

	// Query.
	if len(m.Params) == 1 {
		t := ch.topicState()
		if t == nil {
			return c.sendReply(RplNoTopic{Channel: ch.name})
		}
		if err := c.sendReply(RplTopic{Channel: ch.name, Text: t.Text}); err != nil {
			return err
		}
		return c.sendReply(RplTopicWhoTime{
			Channel: ch.name, Who: t.SetBy, Time: t.SetAt,
		})
	}

	// Set. An empty topic clears.
	text := m.Params[1]
	if text == "" {
		ch.setTopic(nil)
	} else {
		ch.setTopic(&Topic{
			Text:  text,
			SetBy: c.prefix(),
			SetAt: time.Now().Unix(),
		})
	}

	// Members hear about the change, the setter included (when they
	// are one; non-members may set topics too).
	ch.send(Message{
		Source:    c.prefix(),
		HasSource: true,
		Command:   "TOPIC",
		Params:    []string{ch.name, text},
	}, "")
	return nil
}

func handleNames(c *Client, m Message) error {
	nick := c.Nick()

	// Without arguments, every channel's names, then a single 366.
	if len(m.Params) == 0 {
		for _, ch := range c.state.allChannels() {
			if err := c.sendAll(ch.namesMessages(c.state, nick)); err != nil {
				return err
			}
		}
		return c.sendReply(RplEndOfNames{Channel: "*"})
	}

	for _, name := range strings.Split(m.Params[0], ",") {
		if ch := c.state.lookupChannel(name); ch != nil {
			if err := c.sendAll(ch.namesMessages(c.state, nick)); err != nil {
				return err
			}
		}
		if err := c.sendReply(RplEndOfNames{Channel: name}); err != nil {
			return err
		}
	}
	return nil
}
