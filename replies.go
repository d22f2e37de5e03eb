package ircd

import (
	"fmt"
	"strconv"
)

// Reply is one kind of numeric reply. Each variant carries the data its
// numeric needs; ServerState.reply turns it into a wire message. The
// interface is sealed so the factory's switch is exhaustive.
type Reply interface {
	isReply()
}

type replyBase struct{}

func (replyBase) isReply() {}

// Registration and server information.
type (
	RplWelcome  struct{ replyBase }
	RplYourHost struct{ replyBase }
	RplCreated  struct{ replyBase }
	RplMyInfo   struct{ replyBase }
	RplISupport struct {
		replyBase
		Features []string
	}
)

// LUSERS statistics.
type (
	RplLuserClient struct {
		replyBase
		Visible, Invisible int
	}
	RplLuserOp struct {
		replyBase
		Ops int
	}
	RplLuserUnknown struct {
		replyBase
		Unknown int
	}
	RplLuserChannels struct {
		replyBase
		Channels int
	}
	RplLuserMe struct {
		replyBase
		Users int
	}
	RplLocalUsers struct {
		replyBase
		Users, Max int
	}
	RplGlobalUsers struct {
		replyBase
		Users, Max int
	}
)

// Channel and user queries.
type (
	RplUmodeIs struct {
		replyBase
		Modes string
	}
	RplWhoisUser struct {
		replyBase
		Nick, User, Host, Realname string
	}
	RplWhoisServer struct {
		replyBase
		Nick, Server, ServerInfo string
	}
	RplEndOfWho struct {
		replyBase
		Mask string
	}
	RplEndOfWhois struct {
		replyBase
		Masks string
	}
	RplChannelModeIs struct {
		replyBase
		Channel, Modes string
	}
	RplCreationTime struct {
		replyBase
		Channel string
		Time    int64
	}
	RplNoTopic struct {
		replyBase
		Channel string
	}
	RplTopic struct {
		replyBase
		Channel, Text string
	}
	RplTopicWhoTime struct {
		replyBase
		Channel, Who string
		Time         int64
	}
	RplVersion struct {
		replyBase
		Comments string
	}
	RplWhoReply struct {
		replyBase
		Channel, User, Host, Server, Nick string
		Status                            byte
		Hopcount                          int
		Realname                          string
	}
	// RplNameReply is a base reply: the names themselves are packed in
	// by SplitTrailing since they may not fit in a single message.
	RplNameReply struct {
		replyBase
		Symbol  byte
		Channel string
	}
	RplEndOfNames struct {
		replyBase
		Channel string
	}
)

// Errors.
type (
	ErrNoSuchNick struct {
		replyBase
		Nick string
	}
	ErrNoSuchServer struct {
		replyBase
		Server string
	}
	ErrNoSuchChannel struct {
		replyBase
		Channel string
	}
	ErrCannotSendToChan struct {
		replyBase
		Channel, Reason string
	}
	ErrTooManyChannels struct {
		replyBase
		Channel string
	}
	ErrNoRecipient struct {
		replyBase
		Cmd string
	}
	ErrNoTextToSend     struct{ replyBase }
	ErrUnknownCommand   struct {
		replyBase
		Cmd string
	}
	ErrNoMotd           struct{ replyBase }
	ErrNoNicknameGiven  struct{ replyBase }
	ErrErroneusNickname struct {
		replyBase
		Nick string
	}
	ErrNicknameInUse struct {
		replyBase
		Nick string
	}
	ErrNotOnChannel struct {
		replyBase
		Channel string
	}
	ErrNeedMoreParams struct {
		replyBase
		Cmd string
	}
	ErrAlreadyRegistered struct{ replyBase }
	ErrUnknownMode       struct {
		replyBase
		Mode    byte
		Channel string
	}
	ErrUmodeUnknownFlag struct{ replyBase }
	ErrUsersDontMatch   struct{ replyBase }
)

// reply builds a numeric reply message: the source is the server name,
// the command is the three-digit numeric, and the params are the target
// nick, the kind-specific params, and (usually) a literal description
// from RFC 2812. It never fails.
func (s *ServerState) reply(nick string, r Reply) Message {
	var (
		code   string
		params []string
		desc   string
	)
	hasDesc := true

	switch r := r.(type) {
	case RplWelcome:
		code = "001"
		desc = fmt.Sprintf("Welcome to the %s Internet Relay Chat Network %s",
			s.settings.NetworkName, nick)
	case RplYourHost:
		code = "002"
		desc = fmt.Sprintf("Your host is %s, running version %s",
			s.settings.ServerName, Version)
	case RplCreated:
		code = "003"
		desc = fmt.Sprintf("This server was created %s", s.createdText())
	case RplMyInfo:
		code = "004"
		params = []string{s.settings.ServerName, Version}
		hasDesc = false
	case RplISupport:
		code = "005"
		params = r.Features
		desc = "are supported by this server"

	case RplLuserClient:
		code = "251"
		desc = fmt.Sprintf("There are %d users and %d invisible on 1 servers",
			r.Visible, r.Invisible)
	case RplLuserOp:
		code = "252"
		params = []string{strconv.Itoa(r.Ops)}
		desc = "operator(s) online"
	case RplLuserUnknown:
		code = "253"
		params = []string{strconv.Itoa(r.Unknown)}
		desc = "unknown connection(s)"
	case RplLuserChannels:
		code = "254"
		params = []string{strconv.Itoa(r.Channels)}
		desc = "channels formed"
	case RplLuserMe:
		code = "255"
		desc = fmt.Sprintf("I have %d clients and 1 servers", r.Users)
	case RplLocalUsers:
		code = "265"
		params = []string{strconv.Itoa(r.Users), strconv.Itoa(r.Max)}
		desc = fmt.Sprintf("Current local users %d, max %d", r.Users, r.Max)
	case RplGlobalUsers:
		code = "266"
		params = []string{strconv.Itoa(r.Users), strconv.Itoa(r.Max)}
		desc = fmt.Sprintf("Current global users %d, max %d", r.Users, r.Max)

	case RplUmodeIs:
		code = "221"
		params = []string{r.Modes}
		hasDesc = false
	case RplWhoisUser:
		code = "311"
		params = []string{r.Nick, r.User, r.Host, "*"}
		desc = r.Realname
	case RplWhoisServer:
		code = "312"
		params = []string{r.Nick, r.Server}
		desc = r.ServerInfo
	case RplEndOfWho:
		code = "315"
		params = []string{r.Mask}
		desc = "End of WHO list"
	case RplEndOfWhois:
		code = "318"
		params = []string{r.Masks}
		desc = "End of /WHOIS list"
	case RplChannelModeIs:
		code = "324"
		params = []string{r.Channel, r.Modes}
		hasDesc = false
	case RplCreationTime:
		code = "329"
		params = []string{r.Channel, strconv.FormatInt(r.Time, 10)}
		hasDesc = false
	case RplNoTopic:
		code = "331"
		params = []string{r.Channel}
		desc = "No topic is set"
	case RplTopic:
		code = "332"
		params = []string{r.Channel}
		desc = r.Text
	case RplTopicWhoTime:
		code = "333"
		params = []string{r.Channel, r.Who, strconv.FormatInt(r.Time, 10)}
		hasDesc = false
	case RplVersion:
		code = "351"
		params = []string{Version, s.settings.ServerName}
		desc = r.Comments
	case RplWhoReply:
		code = "352"
		params = []string{r.Channel, r.User, r.Host, r.Server, r.Nick,
			string(r.Status)}
		desc = fmt.Sprintf("%d %s", r.Hopcount, r.Realname)
	case RplNameReply:
		code = "353"
		params = []string{string(r.Symbol), r.Channel}
		hasDesc = false
	case RplEndOfNames:
		code = "366"
		params = []string{r.Channel}
		desc = "End of /NAMES list"

	case ErrNoSuchNick:
		code = "401"
		params = []string{r.Nick}
		desc = "No such nick/channel"
	case ErrNoSuchServer:
		code = "402"
		params = []string{r.Server}
		desc = "No such server"
	case ErrNoSuchChannel:
		code = "403"
		params = []string{r.Channel}
		desc = "No such channel"
	case ErrCannotSendToChan:
		code = "404"
		params = []string{r.Channel}
		desc = r.Reason
	case ErrTooManyChannels:
		code = "405"
		params = []string{r.Channel}
		desc = "You have joined too many channels"
	case ErrNoRecipient:
		code = "411"
		desc = fmt.Sprintf("No recipient given (%s)", r.Cmd)
	case ErrNoTextToSend:
		code = "412"
		desc = "No text to send"
	case ErrUnknownCommand:
		code = "421"
		params = []string{r.Cmd}
		desc = "Unknown command"
	case ErrNoMotd:
		code = "422"
		desc = "No MOTD set."
	case ErrNoNicknameGiven:
		code = "431"
		desc = "No nickname given"
	case ErrErroneusNickname:
		code = "432"
		params = []string{r.Nick}
		desc = "Erroneous nickname"
	case ErrNicknameInUse:
		code = "433"
		params = []string{r.Nick}
		desc = "Nickname is already in use."
	case ErrNotOnChannel:
		code = "442"
		params = []string{r.Channel}
		desc = "You're not on that channel"
	case ErrNeedMoreParams:
		code = "461"
		params = []string{r.Cmd}
		desc = "Not enough parameters"
	case ErrAlreadyRegistered:
		code = "462"
		desc = "You may not reregister"
	case ErrUnknownMode:
		code = "472"
		params = []string{string(r.Mode)}
		desc = fmt.Sprintf("is unknown mode char to me for %s", r.Channel)
	case ErrUmodeUnknownFlag:
		code = "501"
		desc = "Unknown MODE flag"
	case ErrUsersDontMatch:
		code = "502"
		desc = "Cannot change mode for other users"

	default:
		panic(fmt.Sprintf("ircd: unhandled reply kind %T", r))
	}

	params = append([]string{nick}, params...)
	for i := range params {
		params[i] = safeWord(params[i])
	}
	if hasDesc {
		params = append(params, desc)
	}

	return Message{
		Source:    s.settings.ServerName,
		HasSource: true,
		Command:   code,
		Params:    params,
	}
}
