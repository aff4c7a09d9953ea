package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

var (
	testNetwork = core.NetworkConfig{
		ChainID:   "0x190F1B46",
		ChainName: "Paseo Asset Hub",
		RPCURLs:   []string{"http://localhost:8545"},
	}

	teacherAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	otherAddr   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func newTestService(providers ...Provider) *Service {
	return NewService(testNetwork, core.NopLogger{}, providers...)
}

func TestConnectNoProvider(t *testing.T) {
	svc := newTestService(&FakeProvider{Present: false})
	if _, err := svc.Connect(context.Background()); err != core.ErrNoProvider {
		t.Errorf("Connect() error = %v, want %v", err, core.ErrNoProvider)
	}
}

func TestConnectProviderPrecedence(t *testing.T) {
	talisman := &FakeProvider{WalletName: "talisman", Present: true, Accounts: []common.Address{teacherAddr}, Chain: testNetwork.ChainID}
	metamask := &FakeProvider{WalletName: "metamask", Present: true, Accounts: []common.Address{otherAddr}, Chain: testNetwork.ChainID}
	svc := newTestService(talisman, metamask)

	sess, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if sess.Account != teacherAddr {
		t.Errorf("Connect() used %s, want the first available provider's account", sess.Account.Hex())
	}
	if metamask.RequestCalls != 0 {
		t.Error("Connect() touched the fallback provider")
	}
}

func TestConnectUserRejected(t *testing.T) {
	p := &FakeProvider{
		Present:    true,
		Chain:      testNetwork.ChainID,
		RequestErr: &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."},
	}
	svc := newTestService(p)
	if _, err := svc.Connect(context.Background()); err != core.ErrUserRejected {
		t.Errorf("Connect() error = %v, want %v", err, core.ErrUserRejected)
	}
	if svc.Current().Connected {
		t.Error("session connected after rejected connect")
	}
}

func TestConnectEmptyAccounts(t *testing.T) {
	p := &FakeProvider{Present: true, Chain: testNetwork.ChainID}
	svc := newTestService(p)
	if _, err := svc.Connect(context.Background()); err != core.ErrUserRejected {
		t.Errorf("Connect() error = %v, want %v", err, core.ErrUserRejected)
	}
}

func TestConnectChainNegotiation(t *testing.T) {
	tests := []struct {
		name         string
		provider     *FakeProvider
		wantErr      bool
		wantSwitches int
		wantAdds     int
	}{
		{
			name:         "already on required chain",
			provider:     &FakeProvider{Present: true, Accounts: []common.Address{teacherAddr}, Chain: testNetwork.ChainID},
			wantSwitches: 0,
		},
		{
			name: "case-insensitive chain compare",
			provider: &FakeProvider{
				Present: true, Accounts: []common.Address{teacherAddr},
				Chain: "0x190f1b46",
			},
			wantSwitches: 0,
		},
		{
			name: "switch succeeds",
			provider: &FakeProvider{
				Present: true, Accounts: []common.Address{teacherAddr},
				Chain:       "0x1",
				KnownChains: map[string]bool{testNetwork.ChainID: true},
			},
			wantSwitches: 1,
		},
		{
			name: "unknown chain is added then rechecked",
			provider: &FakeProvider{
				Present: true, Accounts: []common.Address{teacherAddr},
				Chain:       "0x1",
				KnownChains: map[string]bool{},
			},
			wantSwitches: 1,
			wantAdds:     1,
		},
		{
			name: "other switch failure aborts",
			provider: &FakeProvider{
				Present: true, Accounts: []common.Address{teacherAddr},
				Chain:     "0x1",
				SwitchErr: &ProviderError{Code: -32002, Message: "request already pending"},
			},
			wantErr:      true,
			wantSwitches: 1,
		},
		{
			name: "add failure aborts",
			provider: &FakeProvider{
				Present: true, Accounts: []common.Address{teacherAddr},
				Chain:       "0x1",
				KnownChains: map[string]bool{},
				AddErr:      errors.New("wallet crashed"),
			},
			wantErr:      true,
			wantSwitches: 1,
			wantAdds:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.provider)
			sess, err := svc.Connect(context.Background())

			if tt.wantErr {
				var switchErr *core.NetworkSwitchError
				if !errors.As(err, &switchErr) {
					t.Errorf("Connect() error = %v, want NetworkSwitchError", err)
				}
				if svc.Current().Connected {
					t.Error("session connected despite failed chain switch")
				}
			} else {
				if err != nil {
					t.Fatalf("Connect() failed: %v", err)
				}
				if !sess.Connected || !SameChain(sess.ChainID, testNetwork.ChainID) {
					t.Errorf("Connect() session = %+v, want connected on required chain", sess)
				}
			}
			if tt.provider.SwitchCalls != tt.wantSwitches {
				t.Errorf("switch attempts = %d, want %d", tt.provider.SwitchCalls, tt.wantSwitches)
			}
			if tt.provider.AddCalls != tt.wantAdds {
				t.Errorf("add attempts = %d, want %d", tt.provider.AddCalls, tt.wantAdds)
			}
		})
	}
}

func TestAccountsChanged(t *testing.T) {
	p := &FakeProvider{Present: true, Accounts: []common.Address{teacherAddr}, Chain: testNetwork.ChainID}
	svc := newTestService(p)
	if _, err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	genBefore := svc.Generation()

	var got []common.Address
	svc.OnAccountsChanged(func(accounts []common.Address) { got = accounts })

	// account switch
	p.FireAccountsChanged([]common.Address{otherAddr})
	if sess := svc.Current(); !sess.Connected || sess.Account != otherAddr {
		t.Errorf("session after account switch = %+v, want connected as %s", sess, otherAddr.Hex())
	}
	if len(got) != 1 || got[0] != otherAddr {
		t.Errorf("handler saw %v, want [%s]", got, otherAddr.Hex())
	}
	if svc.Generation() == genBefore {
		t.Error("generation not bumped on account change")
	}

	// wallet revokes access
	p.FireAccountsChanged(nil)
	if sess := svc.Current(); sess.Connected {
		t.Errorf("session after revocation = %+v, want disconnected", sess)
	}
	if len(got) != 0 {
		t.Errorf("handler saw %v, want empty list", got)
	}
}

func TestChainChangedResetsSession(t *testing.T) {
	p := &FakeProvider{Present: true, Accounts: []common.Address{teacherAddr}, Chain: testNetwork.ChainID}
	svc := newTestService(p)
	if _, err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}

	var reloaded string
	svc.OnChainChanged(func(chainID string) { reloaded = chainID })

	p.FireChainChanged("0x1")
	if svc.Current().Connected {
		t.Error("session survived a chain change")
	}
	if reloaded != "0x1" {
		t.Errorf("chain handler saw %q, want %q", reloaded, "0x1")
	}
}

func TestDisconnectRemovesSubscriptions(t *testing.T) {
	p := &FakeProvider{Present: true, Accounts: []common.Address{teacherAddr}, Chain: testNetwork.ChainID}
	svc := newTestService(p)
	if _, err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if !p.HasAccountsHandler() || !p.HasChainHandler() {
		t.Fatal("Connect() did not subscribe to provider events")
	}

	svc.Disconnect()
	if p.HasAccountsHandler() || p.HasChainHandler() {
		t.Error("Disconnect() left provider subscriptions installed")
	}
	if svc.Current().Connected {
		t.Error("session still connected after Disconnect()")
	}
}
