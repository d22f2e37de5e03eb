package ircd

import (
	"fmt"
	"testing"

	"github.com/sourcegraph/conc"
)

// testStateClient builds a client detached from any socket. Good enough
// for registry tests, which never write to the connection.
func testStateClient(s *ServerState, addr string) *Client {
	return &Client{
		state:    s,
		addr:     addr,
		host:     "127.0.0.1",
		mode:     defaultUserMode(),
		channels: make(map[string]*Channel),
	}
}

func TestNickRegistry(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())
	alice := testStateClient(s, "127.0.0.1:1001")
	bob := testStateClient(s, "127.0.0.1:1002")

	if !s.claimNick("Alice", alice) {
		t.Fatalf("claimNick(Alice) failed")
	}
	if got := s.lookupNick("alice"); got != alice {
		t.Errorf("lookupNick(alice) = %v, wanted the claiming client", got)
	}
	if got := s.lookupNick("ALICE"); got != alice {
		t.Errorf("lookupNick(ALICE) = %v, wanted the claiming client", got)
	}

	if s.claimNick("ALICE", bob) {
		t.Errorf("claimNick(ALICE) succeeded, wanted a collision")
	}

	s.releaseNick("alice")
	if got := s.lookupNick("Alice"); got != nil {
		t.Errorf("lookupNick after release = %v, wanted nil", got)
	}
	if !s.claimNick("alice", bob) {
		t.Errorf("claimNick after release failed")
	}
}

func TestRenameNick(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())
	alice := testStateClient(s, "127.0.0.1:1001")
	carol := testStateClient(s, "127.0.0.1:1002")

	if !s.claimNick("alice", alice) || !s.claimNick("carol", carol) {
		t.Fatalf("claims failed")
	}

	if s.renameNick("alice", "Carol", alice) {
		t.Errorf("rename onto a taken nick succeeded")
	}
	if got := s.lookupNick("alice"); got != alice {
		t.Errorf("failed rename lost the old nick")
	}

	// Changing only the case of your own nick is a rename to yourself.
	if !s.renameNick("alice", "ALICE", alice) {
		t.Errorf("case-only self rename failed")
	}

	if !s.renameNick("ALICE", "alyce", alice) {
		t.Errorf("rename failed")
	}
	if got := s.lookupNick("alice"); got != nil {
		t.Errorf("old nick still resolves after rename")
	}
	if got := s.lookupNick("ALYCE"); got != alice {
		t.Errorf("new nick does not resolve after rename")
	}
}

func TestChannelRegistry(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())
	alice := testStateClient(s, "127.0.0.1:1001")
	bob := testStateClient(s, "127.0.0.1:1002")

	if ch, ok := s.joinChannel("#new", alice, false); ch != nil || ok {
		t.Fatalf("creation succeeded with mayCreate=false")
	}

	ch, ok := s.joinChannel("#New", alice, true)
	if !ok || ch == nil {
		t.Fatalf("creation failed")
	}
	if got := s.lookupChannel("#new"); got != ch {
		t.Errorf("lookupChannel(#new) = %v, wanted the created channel", got)
	}
	if again, _ := s.joinChannel("#NEW", bob, true); again != ch {
		t.Errorf("second join returned a different channel")
	}

	if got := len(ch.memberSnapshot()); got != 2 {
		t.Fatalf("got %d members, wanted 2", got)
	}
	if alice.joinedChannel("#NEW") != ch {
		t.Errorf("membership not recorded on the client")
	}

	s.removeMember(ch, alice)
	if got := s.lookupChannel("#new"); got != ch {
		t.Errorf("channel destroyed while still occupied")
	}
	if alice.joinedChannel("#new") != nil {
		t.Errorf("membership not dropped from the client")
	}

	s.removeMember(ch, bob)
	if got := s.lookupChannel("#new"); got != nil {
		t.Errorf("empty channel not destroyed")
	}
}

// A join must land in the same channel the registry holds, even with
// departures destroying the channel underfoot. Here joiners and leavers
// churn one name; afterwards no membership may outlive the registry
// entry.
func TestJoinChannelDepartureChurn(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())

	var wg conc.WaitGroup
	for i := 0; i < 4; i++ {
		c := testStateClient(s, fmt.Sprintf("127.0.0.1:%d", 3000+i))
		wg.Go(func() {
			for j := 0; j < 500; j++ {
				ch, ok := s.joinChannel("#churn", c, true)
				if !ok {
					t.Errorf("joinChannel failed")
					return
				}
				if !ch.hasMember(c) {
					t.Errorf("joiner missing from the joined channel")
					return
				}
				s.removeMember(ch, c)
			}
		})
	}
	wg.Wait()

	if got := s.lookupChannel("#churn"); got != nil {
		t.Errorf("channel still registered with everyone gone: %d members",
			len(got.memberSnapshot()))
	}
}

func TestCounts(t *testing.T) {
	s := newServerState(DefaultSettings(), ServerCallbacks{}.withDefaults())
	alice := testStateClient(s, "127.0.0.1:1001")
	bob := testStateClient(s, "127.0.0.1:1002")
	pending := testStateClient(s, "127.0.0.1:1003")

	s.addClient(alice)
	s.addClient(bob)
	s.addClient(pending)
	if !s.claimNick("alice", alice) || !s.claimNick("bob", bob) {
		t.Fatalf("claims failed")
	}
	bob.mode.Invisible = false

	s.joinChannel("#counted", alice, true)

	n := s.counts()
	if n.users != 2 {
		t.Errorf("users = %d, wanted 2", n.users)
	}
	if n.invisible != 1 {
		t.Errorf("invisible = %d, wanted 1", n.invisible)
	}
	if n.clients != 3 {
		t.Errorf("clients = %d, wanted 3", n.clients)
	}
	if n.channels != 1 {
		t.Errorf("channels = %d, wanted 1", n.channels)
	}
	if n.maxSeen != 2 {
		t.Errorf("maxSeen = %d, wanted 2", n.maxSeen)
	}

	// The high-water mark survives departures.
	s.releaseNick("alice")
	if got := s.counts().maxSeen; got != 2 {
		t.Errorf("maxSeen after release = %d, wanted 2", got)
	}
}

func TestUpperASCII(t *testing.T) {
	tests := []struct {
		In, Out string
	}{
		{"", ""},
		{"abc", "ABC"},
		{"ABC", "ABC"},
		{"a1b2", "A1B2"},
		// Only ASCII letters fold; CASEMAPPING=ascii.
		{"[a]{b}", "[A]{B}"},
		{"ærlig", "æRLIG"},
	}

	for _, test := range tests {
		if got := upperASCII(test.In); got != test.Out {
			t.Errorf("upperASCII(%q) = %q, wanted %q", test.In, got, test.Out)
		}
	}
}
