package ircd

import "strings"

func whoReply(s *ServerState, nick, channel string, member *Client) Message {
	return s.reply(nick, RplWhoReply{
		Channel:  channel,
		User:     member.Username(),
		Host:     member.host,
		Server:   s.settings.ServerName,
		Nick:     member.Nick(),
		Status:   'H',
		Hopcount: 0,
		Realname: member.Realname(),
	})
}

func handleWho(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "WHO"})
	}

	mask := m.Params[0]
	nick := c.Nick()

	// There are no operators, so "WHO mask o" matches no one.
	if len(m.Params) > 1 {
		return c.sendReply(RplEndOfWho{Mask: mask})
	}

	if strings.HasPrefix(mask, "#") {
		if ch := c.state.lookupChannel(mask); ch != nil {
			for _, member := range ch.memberSnapshot() {
				if err := c.Send(whoReply(c.state, nick, ch.name, member)); err != nil {
					return err
				}
			}
		}
		return c.sendReply(RplEndOfWho{Mask: mask})
	}

	// A non-channel mask matches exact nicks, and only among users we
	// share a channel with.
	seen := make(map[string]struct{})
	for _, ch := range c.channelSnapshot() {
		for _, member := range ch.memberSnapshot() {
			if upperASCII(member.Nick()) != upperASCII(mask) {
				continue
			}
			if _, dup := seen[member.addr]; dup {
				continue
			}
			seen[member.addr] = struct{}{}
			if err := c.Send(whoReply(c.state, nick, ch.name, member)); err != nil {
				return err
			}
		}
	}

	return c.sendReply(RplEndOfWho{Mask: mask})
}

func handleWhois(c *Client, m Message) error {
	var masks string
	switch len(m.Params) {
	case 1:
		masks = m.Params[0]
	case 2:
		if upperASCII(m.Params[0]) != upperASCII(c.state.settings.ServerName) {
			return c.sendReply(ErrNoSuchServer{Server: m.Params[0]})
		}
		masks = m.Params[1]
	default:
		return c.sendReply(ErrNeedMoreParams{Cmd: "WHOIS"})
	}

	// Only the first mask is looked up, and only as an exact nick.
	nick := strings.Split(masks, ",")[0]

	peer := c.state.lookupNick(nick)
	if peer == nil {
		if err := c.sendReply(ErrNoSuchNick{Nick: nick}); err != nil {
			return err
		}
		return c.sendReply(RplEndOfWhois{Masks: masks})
	}

	if err := c.sendReply(RplWhoisUser{
		Nick:     peer.Nick(),
		User:     peer.Username(),
		Host:     peer.host,
		Realname: peer.Realname(),
	}); err != nil {
		return err
	}
	if err := c.sendReply(RplWhoisServer{
		Nick:       peer.Nick(),
		Server:     c.state.settings.ServerName,
		ServerInfo: c.state.settings.ServerInfo,
	}); err != nil {
		return err
	}
	return c.sendReply(RplEndOfWhois{Masks: masks})
}
