package multisig

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/emberwallet/burner/internal/rpc"
	"github.com/emberwallet/burner/internal/rpc/rpctest"
)

func TestBuildPayment(t *testing.T) {
	to := common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	tests := []struct {
		name      string
		value     *big.Int
		data      []byte
		wantValue string
	}{
		{"plain payment", big.NewInt(1_000_000), nil, "1000000"},
		{"nil value normalized", nil, nil, "0"},
		{"with call data", big.NewInt(0), []byte{0xa9, 0x05, 0x9c, 0xbb}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPayment(to, tt.value, tt.data)

			if p.To != to {
				t.Errorf("payload to = %s, want %s", p.To.Hex(), to.Hex())
			}
			if p.Value.String() != tt.wantValue {
				t.Errorf("payload value = %s, want %s", p.Value, tt.wantValue)
			}
			if string(p.Data) != string(tt.data) {
				t.Errorf("payload data = %x, want %x", p.Data, tt.data)
			}
		})
	}
}

func TestBuildSweepPayload(t *testing.T) {
	multisigAddr := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	to := common.HexToAddress("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")

	tests := []struct {
		name      string
		balance   *big.Int
		wantValue string
	}{
		// No buffer subtraction and no zero-balance error here; both are
		// burner-account sweep semantics, not multisig semantics.
		{"funded multisig sweeps full balance", big.NewInt(5_000_000), "5000000"},
		{"empty multisig sweeps zero", big.NewInt(0), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := rpctest.NewNode()
			node.Balances[multisigAddr] = tt.balance

			srv := httptest.NewServer(node)
			defer srv.Close()

			p, err := BuildSweepPayload(context.Background(), rpc.NewClient(srv.URL), multisigAddr, to)
			if err != nil {
				t.Fatalf("BuildSweepPayload failed: %v", err)
			}

			if p.To != to {
				t.Errorf("payload to = %s, want %s", p.To.Hex(), to.Hex())
			}
			if p.Value.String() != tt.wantValue {
				t.Errorf("payload value = %s, want %s", p.Value, tt.wantValue)
			}
			if p.Data != nil {
				t.Errorf("payload data = %x, want empty", p.Data)
			}
		})
	}
}

func TestBuildSweepPayloadTransportError(t *testing.T) {
	_, err := BuildSweepPayload(context.Background(), rpc.NewClient("http://127.0.0.1:1"), common.Address{}, common.Address{})
	if err == nil {
		t.Fatal("expected a transport error")
	}
}
