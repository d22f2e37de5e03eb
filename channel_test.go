package ircd

import (
	"fmt"
	"testing"
)

func TestNamesMessages(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())

	bob := testStateClient(s, "127.0.0.1:1001")
	bob.nick = "bob"
	alice := testStateClient(s, "127.0.0.1:1002")
	alice.nick = "alice"
	ch, _ := s.joinChannel("#names", bob, true)
	s.joinChannel("#names", alice, true)

	msgs := ch.namesMessages(s, "alice")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, wanted 1", len(msgs))
	}

	want := ":server.example.com 353 alice = #names :alice bob\r\n"
	if got := msgs[0].Line(); got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}

func TestNamesMessagesSplit(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())

	var ch *Channel
	for i := 0; i < 100; i++ {
		c := testStateClient(s, fmt.Sprintf("127.0.0.1:%d", 2000+i))
		c.nick = fmt.Sprintf("member%03d", i)
		ch, _ = s.joinChannel("#crowded", c, true)
	}

	msgs := ch.namesMessages(s, "watcher")
	if len(msgs) < 2 {
		t.Fatalf("got %d messages, wanted a split", len(msgs))
	}
	for _, m := range msgs {
		if len(m.Line()) > MaxLineLength {
			t.Errorf("line too long: %d bytes", len(m.Line()))
		}
	}
}

func TestTopicState(t *testing.T) {
	ch := newChannel("#topical")
	if ch.topicState() != nil {
		t.Fatalf("new channel has a topic")
	}

	ch.setTopic(&Topic{Text: "news", SetBy: "alice!~alice@host", SetAt: 42})
	t1 := ch.topicState()
	if t1 == nil || t1.Text != "news" || t1.SetBy != "alice!~alice@host" ||
		t1.SetAt != 42 {
		t.Errorf("topic = %+v", t1)
	}

	// The returned topic is a copy.
	t1.Text = "mangled"
	if got := ch.topicState().Text; got != "news" {
		t.Errorf("topic text = %q after mutating a copy", got)
	}

	ch.setTopic(nil)
	if ch.topicState() != nil {
		t.Errorf("topic survived clearing")
	}
}
