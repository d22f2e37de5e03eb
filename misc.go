package ircd

import "strings"

func handlePing(c *Client, m Message) error {
	return c.Send(Message{
		Source:    c.state.settings.ServerName,
		HasSource: true,
		Command:   "PONG",
		Params:    append([]string{c.state.settings.ServerName}, m.Params...),
	})
}

func handleQuit(c *Client, m Message) error {
	reason := "Quit"
	if len(m.Params) > 0 {
		reason = m.Params[0]
	}
	// The quitter sees their own QUIT. Membership is torn down here so
	// the session teardown does not broadcast a second copy.
	_ = c.broadcast(Message{
		Source:    c.prefix(),
		HasSource: true,
		Command:   "QUIT",
		Params:    []string{reason},
	}, true)
	for _, ch := range c.channelSnapshot() {
		c.state.removeMember(ch, c)
	}

	return quitError{reason: reason}
}

func handlePrivmsg(c *Client, m Message) error {
	return doChatMessage(c, m, false)
}

func handleNotice(c *Client, m Message) error {
	return doChatMessage(c, m, true)
}

// doChatMessage routes PRIVMSG and NOTICE. NOTICE never generates a
// reply, so every failure on that path is silent.
func doChatMessage(c *Client, m Message, notice bool) error {
	cmd := "PRIVMSG"
	if notice {
		cmd = "NOTICE"
	}

	if len(m.Params) == 0 {
		if notice {
			return nil
		}
		return c.sendReply(ErrNoRecipient{Cmd: cmd})
	}
	if len(m.Params) < 2 {
		if notice {
			return nil
		}
		return c.sendReply(ErrNoTextToSend{})
	}

	target, text := m.Params[0], m.Params[1]
	out := Message{
		Source:    c.prefix(),
		HasSource: true,
		Command:   cmd,
		Params:    []string{target, text},
	}

	if ch := c.state.lookupChannel(target); ch != nil {
		ok, err := c.state.callbacks.OnClientChannelMessage(c, ch, m)
		if err != nil {
			if notice {
				return nil
			}
			return c.sendReply(ErrCannotSendToChan{
				Channel: ch.name, Reason: err.Error(),
			})
		}
		if !ok {
			return nil
		}

		out.Params[0] = ch.name
		ch.send(out, c.addr)
		return nil
	}

	// Talking to yourself is an echo for PRIVMSG, silence for NOTICE.
	if upperASCII(target) == upperASCII(c.Nick()) {
		if notice {
			return nil
		}
		out.Params[0] = c.Nick()
		return c.Send(out)
	}

	if peer := c.state.lookupNick(target); peer != nil {
		out.Params[0] = peer.Nick()
		if err := peer.Send(out); err != nil {
			log.WithField("addr", peer.addr).Debugf(
				"dropping %s delivery: %s", cmd, err)
		}
		return nil
	}

	if notice {
		return nil
	}
	return c.sendReply(ErrNoSuchNick{Nick: target})
}

func handleVersion(c *Client, m Message) error {
	if len(m.Params) > 0 &&
		upperASCII(m.Params[0]) != upperASCII(c.state.settings.ServerName) {
		return c.sendReply(ErrNoSuchServer{Server: m.Params[0]})
	}

	if err := c.sendReply(RplVersion{}); err != nil {
		return err
	}
	return c.sendAll(c.state.isupportMessages(c.Nick()))
}

func handleLusers(c *Client, m Message) error {
	if len(m.Params) > 0 &&
		upperASCII(m.Params[0]) != upperASCII(c.state.settings.ServerName) {
		return c.sendReply(ErrNoSuchServer{Server: m.Params[0]})
	}
	return c.sendAll(c.state.lusersMessages(c.Nick()))
}

func handleMotd(c *Client, m Message) error {
	if len(m.Params) > 0 &&
		upperASCII(m.Params[0]) != upperASCII(c.state.settings.ServerName) {
		return c.sendReply(ErrNoSuchServer{Server: m.Params[0]})
	}
	return c.sendReply(ErrNoMotd{})
}

func handleMode(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "MODE"})
	}
	target := m.Params[0]

	if strings.HasPrefix(target, "#") {
		ch := c.state.lookupChannel(target)
		if ch == nil {
			return c.sendReply(ErrNoSuchChannel{Channel: target})
		}

		if len(m.Params) == 1 {
			if err := c.sendReply(RplChannelModeIs{
				Channel: ch.name, Modes: ch.modeState().String(),
			}); err != nil {
				return err
			}
			return c.sendReply(RplCreationTime{
				Channel: ch.name, Time: ch.created,
			})
		}

		applied, unknown := ch.applyMode(m.Params[1])
		if applied != "" {
			mode := Message{
				Source:    c.prefix(),
				HasSource: true,
				Command:   "MODE",
				Params:    []string{ch.name, applied},
			}
			if err := c.Send(mode); err != nil {
				return err
			}
			ch.send(mode, c.addr)
		}
		if unknown != 0 {
			return c.sendReply(ErrUnknownMode{Mode: unknown, Channel: ch.name})
		}
		return nil
	}

	// User modes: only your own are visible or changeable.
	if upperASCII(target) == upperASCII(c.Nick()) {
		if len(m.Params) == 1 {
			return c.sendReply(RplUmodeIs{Modes: c.userModeState().String()})
		}

		applied, unknown := c.applyUserMode(m.Params[1])
		if applied != "" {
			if err := c.Send(Message{
				Source:    c.prefix(),
				HasSource: true,
				Command:   "MODE",
				Params:    []string{c.Nick(), applied},
			}); err != nil {
				return err
			}
		}
		if unknown != 0 {
			return c.sendReply(ErrUmodeUnknownFlag{})
		}
		return nil
	}

	if c.state.lookupNick(target) != nil {
		return c.sendReply(ErrUsersDontMatch{})
	}
	return c.sendReply(ErrNoSuchNick{Nick: target})
}
