// Package ircd implements an embeddable IRC server: the RFC 1459/2812
// session and routing core, with IRCv3 message-tag parsing. The host
// program provides settings and lifecycle callbacks and calls
// Server.Start; everything else (registration, channels, message
// routing, numeric replies) happens here.
package ircd

import (
	"strings"
)

// MaxLineLength is the maximum length of a serialized message in bytes,
// including the trailing CRLF.
const MaxLineLength = 512

// Tag is an IRCv3 message tag. A tag may be present without a value
// ("@foo") or with one, possibly empty ("@foo=", "@foo=bar"). HasValue
// distinguishes the two so messages round-trip exactly.
type Tag struct {
	Name     string
	Value    string
	HasValue bool
}

// Message is one IRC protocol message. See RFC 1459/2812 section 2.3.1
// and the IRCv3 message-tags extension.
//
// Only the last element of Params may contain spaces or begin with ':'.
// HasSource distinguishes a missing source from an empty one (":" alone
// is a valid, if degenerate, message).
type Message struct {
	Tags      []Tag
	Source    string
	HasSource bool
	Command   string
	Params    []string
}

// ParseMessage parses a single protocol line. The line may or may not
// still carry its LF or CRLF terminator.
//
// The parser is total: any byte string yields a Message, possibly with
// an empty command. Unknown or malformed commands are dealt with at
// dispatch time, not here.
func ParseMessage(line string) Message {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	var msg Message
	rest := strings.TrimLeft(line, " ")

	// Tags: "@name=value;name2 "
	if strings.HasPrefix(rest, "@") {
		word := rest[1:]
		if i := strings.IndexByte(word, ' '); i >= 0 {
			word, rest = word[:i], word[i+1:]
		} else {
			rest = ""
		}
		for _, tok := range strings.Split(word, ";") {
			if eq := strings.IndexByte(tok, '='); eq >= 0 {
				msg.Tags = append(msg.Tags, Tag{
					Name:     tok[:eq],
					Value:    tok[eq+1:],
					HasValue: true,
				})
			} else {
				msg.Tags = append(msg.Tags, Tag{Name: tok})
			}
		}
		rest = strings.TrimLeft(rest, " ")
	}

	// Source: ":name "
	if strings.HasPrefix(rest, ":") {
		msg.HasSource = true
		if i := strings.IndexByte(rest, ' '); i >= 0 {
			msg.Source, rest = rest[1:i], rest[i+1:]
		} else {
			msg.Source, rest = rest[1:], ""
		}
		rest = strings.TrimLeft(rest, " ")
	}

	if i := strings.IndexByte(rest, ' '); i >= 0 {
		msg.Command, rest = rest[:i], rest[i:]
	} else {
		msg.Command, rest = rest, ""
	}

	// Params. Words from runs of spaces are discarded; a word starting
	// with ':' begins the trailing param, which takes the rest of the
	// line verbatim.
	for rest != "" {
		if rest[0] == ' ' {
			rest = rest[1:]
			continue
		}
		if rest[0] == ':' {
			msg.Params = append(msg.Params, rest[1:])
			break
		}
		if i := strings.IndexByte(rest, ' '); i >= 0 {
			msg.Params = append(msg.Params, rest[:i])
			rest = rest[i:]
		} else {
			msg.Params = append(msg.Params, rest)
			rest = ""
		}
	}

	return msg
}

// Line serializes the message back to a protocol line, CRLF included.
//
// The final param is sent in trailing (":") form when it is empty,
// contains a space, or itself begins with ':'. A space in any other
// param is a programming error and panics.
func (m Message) Line() string {
	var b strings.Builder

	if len(m.Tags) > 0 {
		b.WriteByte('@')
		for i, tag := range m.Tags {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(tag.Name)
			if tag.HasValue {
				b.WriteByte('=')
				b.WriteString(tag.Value)
			}
		}
		b.WriteByte(' ')
	}

	if m.HasSource {
		b.WriteByte(':')
		b.WriteString(m.Source)
		b.WriteByte(' ')
	}

	// Tags or source alone are a special case so messages like
	// ":only-a-source" round-trip cleanly.
	if m.Command == "" {
		return strings.TrimSuffix(b.String(), " ") + "\r\n"
	}

	b.WriteString(m.Command)

	for i, param := range m.Params {
		last := i == len(m.Params)-1
		if last && (param == "" || strings.Contains(param, " ") ||
			strings.HasPrefix(param, ":")) {
			b.WriteString(" :")
			b.WriteString(param)
			continue
		}
		if strings.Contains(param, " ") {
			panic("ircd: space in non-trailing parameter: " + param)
		}
		b.WriteByte(' ')
		b.WriteString(param)
	}

	b.WriteString("\r\n")
	return b.String()
}

// copyHeaders returns a copy of the message that does not share its
// Params backing array, so callers can append independently.
func (m Message) copyHeaders() Message {
	m.Tags = append([]Tag(nil), m.Tags...)
	m.Params = append([]string(nil), m.Params...)
	return m
}

// SplitTrailing builds one or more messages from base by concatenating
// items (joined with sep) into a trailing parameter, starting a new
// message whenever the serialized line would exceed MaxLineLength.
// Items themselves are never split. This is how long NAMES replies are
// kept within the 512-byte line limit.
func SplitTrailing(base Message, items []string, sep string) []Message {
	// The trailing param costs " :" on top of the base line.
	maxTrailing := MaxLineLength - len(base.Line()) - 2

	var msgs []Message
	var trailing string

	for i, item := range items {
		need := len(item) + len(sep)
		if trailing != "" && len(trailing)+need >= maxTrailing {
			next := base.copyHeaders()
			next.Params = append(next.Params, trailing)
			msgs = append(msgs, next)
			trailing = ""
		}

		trailing += item
		if i != len(items)-1 {
			trailing += sep
		}
	}

	if trailing != "" {
		next := base.copyHeaders()
		next.Params = append(next.Params, trailing)
		msgs = append(msgs, next)
	}

	return msgs
}
