package ircd

// permission says when a command may run.
type permission int

const (
	// permAny commands run before and after registration.
	permAny permission = iota
	// permNormal commands require a registered client.
	permNormal
)

type command struct {
	name    string
	perm    permission
	handler func(*Client, Message) error
}

var commandList = []command{
	{"JOIN", permNormal, handleJoin},
	{"LUSERS", permNormal, handleLusers},
	{"MODE", permNormal, handleMode},
	{"MOTD", permNormal, handleMotd},
	{"NAMES", permNormal, handleNames},
	{"NICK", permAny, handleNick},
	{"NOTICE", permAny, handleNotice},
	{"PART", permNormal, handlePart},
	{"PING", permAny, handlePing},
	{"PRIVMSG", permNormal, handlePrivmsg},
	{"QUIT", permNormal, handleQuit},
	{"TOPIC", permNormal, handleTopic},
	{"USER", permAny, handleUser},
	{"VERSION", permNormal, handleVersion},
	{"WHO", permNormal, handleWho},
	{"WHOIS", permNormal, handleWhois},
}

var commandMap = newCommandMap(commandList)

func newCommandMap(cmds []command) map[string]command {
	m := make(map[string]command, len(cmds))
	for _, cmd := range cmds {
		if _, dup := m[cmd.name]; dup {
			panic("duplicate command: " + cmd.name)
		}
		m[cmd.name] = cmd
	}
	return m
}

// dispatch routes one parsed message to its handler. Unknown commands
// get 421 once the client is registered and are dropped before that, as
// are known commands the client is not yet allowed to use.
func (s *ServerState) dispatch(c *Client, msg Message) error {
	cmd, ok := commandMap[upperASCII(msg.Command)]
	if !ok {
		if c.isRegistered() {
			return c.sendReply(ErrUnknownCommand{Cmd: msg.Command})
		}
		return nil
	}

	if cmd.perm == permNormal && !c.isRegistered() {
		return nil
	}

	return cmd.handler(c, msg)
}
