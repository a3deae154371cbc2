package wallet

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/emberwallet/burner/internal/rpc"
	"github.com/emberwallet/burner/internal/rpc/rpctest"
)

func TestNewAccount(t *testing.T) {
	acct, err := New(0, "no-ttl")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if acct.Label != "no-ttl" {
		t.Errorf("label = %q, want %q", acct.Label, "no-ttl")
	}
	if acct.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if !acct.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt should be zero without a TTL, got %v", acct.ExpiresAt)
	}
	if acct.Used() {
		t.Error("fresh account should not be used")
	}
	if acct.Address() == (common.Address{}) {
		t.Error("address should be derived from the generated key")
	}
}

func TestNewFromKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair failed: %v", err)
	}

	acct := NewFromKeypair(kp, time.Hour, "rebuilt")
	if acct.Address() != kp.Address() {
		t.Errorf("address = %s, want %s", acct.Address().Hex(), kp.Address().Hex())
	}
	if acct.Used() {
		t.Error("rebuilt account should start unused")
	}
	if acct.ExpiresAt.IsZero() {
		t.Error("ExpiresAt should be set when a TTL is given")
	}

	node := rpctest.NewNode()
	srv := httptest.NewServer(node)
	defer srv.Close()

	client := rpc.NewClient(srv.URL)
	to := common.HexToAddress("0x4444444444444444444444444444444444444444")

	if _, err := acct.Send(context.Background(), client, to, big.NewInt(9), SendOptions{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !acct.Used() {
		t.Error("rebuilt account should be marked used after a confirmed send")
	}

	// Lifecycle state is per-process: wrapping the same key again yields a
	// fresh, spendable account.
	again := NewFromKeypair(kp, 0, "")
	if again.Used() {
		t.Error("a new wrapper around the same key should start unused")
	}
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"no expiry", time.Time{}, false},
		{"future expiry", time.Now().Add(time.Hour), false},
		{"past expiry", time.Now().Add(-time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := New(0, "")
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			acct.ExpiresAt = tt.expiresAt

			if got := acct.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTTLElapses(t *testing.T) {
	acct, err := New(50*time.Millisecond, "short-lived")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if acct.Expired() {
		t.Fatal("account should not be expired immediately after creation")
	}

	time.Sleep(80 * time.Millisecond)

	if !acct.Expired() {
		t.Error("account should be expired after TTL elapsed")
	}
}

func TestSendLifecycle(t *testing.T) {
	node := rpctest.NewNode()
	srv := httptest.NewServer(node)
	defer srv.Close()

	client := rpc.NewClient(srv.URL)

	acct, err := New(0, "lifecycle")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	amount := big.NewInt(500_000)

	hash, err := acct.Send(context.Background(), client, to, amount, SendOptions{})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if hash == (common.Hash{}) {
		t.Error("Send should return the confirmed transaction hash")
	}
	if !acct.Used() {
		t.Error("account should be marked used after a confirmed send")
	}

	sent := node.LastSent()
	if sent == nil {
		t.Fatal("node should have received a transaction")
	}
	if sent.To() == nil || *sent.To() != to {
		t.Errorf("transaction to = %v, want %v", sent.To(), to)
	}
	if sent.Value().Cmp(amount) != 0 {
		t.Errorf("transaction value = %s, want %s", sent.Value(), amount)
	}
	if sent.Gas() != 21000 {
		t.Errorf("transaction gas limit = %d, want 21000", sent.Gas())
	}

	// The single use is spent: a second send must fail before touching the
	// network, even though the account never expires.
	if _, err := acct.Send(context.Background(), client, to, amount, SendOptions{}); !errors.Is(err, ErrAlreadyUsed) {
		t.Errorf("second Send error = %v, want ErrAlreadyUsed", err)
	}
	if len(node.Sent) != 1 {
		t.Errorf("node received %d transactions, want 1", len(node.Sent))
	}
}

func TestSendExpired(t *testing.T) {
	node := rpctest.NewNode()
	srv := httptest.NewServer(node)
	defer srv.Close()

	client := rpc.NewClient(srv.URL)

	acct, err := New(0, "stale")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	acct.ExpiresAt = time.Now().Add(-time.Minute)

	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	_, err = acct.Send(context.Background(), client, to, big.NewInt(1), SendOptions{})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("Send error = %v, want ErrExpired", err)
	}

	// A failed guard must not consume the account's use.
	if acct.Used() {
		t.Error("failed send should not mark the account used")
	}
	if len(node.Sent) != 0 {
		t.Errorf("node received %d transactions, want 0", len(node.Sent))
	}
}

func TestSendUsedBeatsExpired(t *testing.T) {
	// When an account is both used and expired, the used check wins.
	acct, err := New(0, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	acct.used = true
	acct.ExpiresAt = time.Now().Add(-time.Hour)

	_, err = acct.Send(context.Background(), rpc.NewClient("http://127.0.0.1:0"), common.Address{}, big.NewInt(1), SendOptions{})
	if !errors.Is(err, ErrAlreadyUsed) {
		t.Errorf("Send error = %v, want ErrAlreadyUsed", err)
	}
}

func TestSendNetworkFailureDoesNotConsumeUse(t *testing.T) {
	// Unreachable endpoint: the guard passes, the network call fails, and
	// the account remains spendable.
	acct, err := New(0, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	client := rpc.NewClient("http://127.0.0.1:1")
	_, err = acct.Send(context.Background(), client, common.Address{}, big.NewInt(1), SendOptions{})
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if errors.Is(err, ErrAlreadyUsed) || errors.Is(err, ErrExpired) {
		t.Errorf("transport failure should not map to a lifecycle error, got %v", err)
	}
	if acct.Used() {
		t.Error("failed send should not mark the account used")
	}
}

func TestSendOptions(t *testing.T) {
	node := rpctest.NewNode()
	srv := httptest.NewServer(node)
	defer srv.Close()

	client := rpc.NewClient(srv.URL)

	acct, err := New(time.Hour, "custom-gas")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	_, err = acct.Send(context.Background(), client, to, big.NewInt(42), SendOptions{
		GasLimit: 60_000,
		GasPrice: big.NewInt(5_000_000_000),
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	sent := node.LastSent()
	if sent.Gas() != 60_000 {
		t.Errorf("gas limit = %d, want 60000", sent.Gas())
	}
	if sent.GasPrice().Cmp(big.NewInt(5_000_000_000)) != 0 {
		t.Errorf("gas price = %s, want 5000000000", sent.GasPrice())
	}
}
