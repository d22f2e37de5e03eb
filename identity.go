package ircd

import (
	"regexp"
	"strings"
)

// Nick grammar from RFC 2812 section 2.3.1: a letter or special to
// start, then letters, digits, specials, or '-'.
var validNickRegexp = regexp.MustCompile(
	"^[A-Za-z\\[\\\\\\]^_`{|}][A-Za-z0-9\\[\\\\\\]^_`{|}\\-]*$")

func isValidNick(maxLen int, nick string) bool {
	if nick == "" || len(nick) > maxLen {
		return false
	}
	return validNickRegexp.MatchString(nick)
}

// makeValidUsername turns the USER parameter into the username we
// show, tilde-prefixed since there is no ident lookup: truncate so the
// tilde fits, then cut at the first byte that could corrupt a prefix.
// Returns "" if nothing usable remains.
func makeValidUsername(maxLen int, username string) string {
	if len(username) > maxLen-1 {
		username = username[:maxLen-1]
	}
	if i := strings.IndexAny(username, "@\x00\r\n "); i >= 0 {
		username = username[:i]
	}
	if username == "" {
		return ""
	}
	return "~" + username
}

func handleNick(c *Client, m Message) error {
	if len(m.Params) == 0 {
		return c.sendReply(ErrNoNicknameGiven{})
	}

	nick := m.Params[0]
	if !isValidNick(c.state.settings.MaxNickLength, nick) {
		return c.sendReply(ErrErroneusNickname{Nick: nick})
	}
	if holder := c.state.lookupNick(nick); holder != nil && holder != c {
		return c.sendReply(ErrNicknameInUse{Nick: nick})
	}

	if !c.isRegistered() {
		c.mu.Lock()
		c.nick = nick
		c.mu.Unlock()
		return c.tryBeginRegistration()
	}

	// Rename. The change is announced from the old prefix to everyone
	// sharing a channel, and to the client itself.
	oldPrefix := c.prefix()
	oldNick := c.Nick()

	if !c.state.renameNick(oldNick, nick, c) {
		return c.sendReply(ErrNicknameInUse{Nick: nick})
	}

	c.mu.Lock()
	c.nick = nick
	c.mu.Unlock()

	return c.broadcast(Message{
		Source:    oldPrefix,
		HasSource: true,
		Command:   "NICK",
		Params:    []string{nick},
	}, true)
}

func handleUser(c *Client, m Message) error {
	var username string
	if len(m.Params) > 0 {
		username = makeValidUsername(c.state.settings.MaxNickLength, m.Params[0])
		if username == "" {
			_ = c.Send(Message{
				Source:    c.state.settings.ServerName,
				HasSource: true,
				Command:   "NOTICE",
				Params: []string{c.replyTarget(),
					"*** Your username is invalid. Please make sure that your username contains only alphanumeric characters."},
			})
			return c.closeWithError("Invalid username")
		}
	}

	if len(m.Params) < 4 {
		return c.sendReply(ErrNeedMoreParams{Cmd: "USER"})
	}
	if c.isRegistered() {
		return c.sendReply(ErrAlreadyRegistered{})
	}

	c.mu.Lock()
	c.username = username
	c.realname = m.Params[3]
	c.mu.Unlock()

	return c.tryBeginRegistration()
}
