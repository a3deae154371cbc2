// Package main provides the CLI entry point for burnerctl.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/emberwallet/burner/internal/gas"
	"github.com/emberwallet/burner/internal/multisig"
	"github.com/emberwallet/burner/internal/rpc"
	"github.com/emberwallet/burner/internal/sweep"
	"github.com/emberwallet/burner/internal/tui"
	"github.com/emberwallet/burner/internal/wallet"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool

	// Root command
	rootCmd = &cobra.Command{
		Use:   "burnerctl",
		Short: "burnerctl - short-lived single-use Ethereum accounts",
		Long: `burnerctl creates throwaway Ethereum accounts meant for exactly one
payment, sweeps leftover balances, and shapes payloads for multisig execution.

TTL and single-use enforcement are local to this process: nothing on chain
expires a burner or stops a reused key. Treat both as advisory.

Start the interactive TUI:
  burnerctl

Or use CLI commands:
  burnerctl new --ttl 15m --label deposit-42
  burnerctl sweep --rpc http://localhost:8545 --from 0x... --to 0x... --buffer 420000000000000
  burnerctl gas --units 21000 --price 20000000000 --margin-bps 2000`,
		Run: func(cmd *cobra.Command, args []string) {
			// Default: launch TUI
			if err := tui.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	// New command
	newCmd = &cobra.Command{
		Use:   "new",
		Short: "Generate a new burner account",
		Run:   runNew,
	}

	// Send command
	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Spend a burner account (single guarded transfer)",
		Long: `Send rebuilds a burner account from its private key and performs its one
guarded transfer. The single-use flag lives only in this process: a key
reused in a later invocation is not blocked here, only by an empty balance.`,
		Run: runSend,
	}

	// Balance command
	balanceCmd = &cobra.Command{
		Use:   "balance ADDRESS",
		Short: "Query the wei balance of an address",
		Args:  cobra.ExactArgs(1),
		Run:   runBalance,
	}

	// Sweep command
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Build (and optionally submit) a balance sweep",
		Run:   runSweep,
	}

	// Gas command
	gasCmd = &cobra.Command{
		Use:   "gas",
		Short: "Estimate transaction cost",
		Run:   runGas,
	}

	// URI command
	uriCmd = &cobra.Command{
		Use:   "uri ADDRESS",
		Short: "Build a payment URI for an address",
		Args:  cobra.ExactArgs(1),
		Run:   runURI,
	}

	// Payload commands
	payloadCmd = &cobra.Command{
		Use:   "payload",
		Short: "Build multisig transaction payloads",
	}

	payloadPaymentCmd = &cobra.Command{
		Use:   "payment",
		Short: "Build a multisig payment payload",
		Run:   runPayloadPayment,
	}

	payloadSweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Build a multisig full-balance sweep payload",
		Run:   runPayloadSweep,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// New command flags
	newCmd.Flags().Duration("ttl", 0, "Advisory lifetime (0 = never expires)")
	newCmd.Flags().String("label", "", "Human-readable label")
	newCmd.Flags().Bool("show-key", false, "Print the private key (dangerous)")
	newCmd.Flags().Bool("keystore", false, "Export an encrypted keystore v3 file")
	newCmd.Flags().String("keystore-dir", "", "Keystore directory (default: ~/.burner/keys)")
	rootCmd.AddCommand(newCmd)

	// Send command flags
	sendCmd.Flags().String("rpc", "", "EVM JSON-RPC endpoint URL")
	sendCmd.Flags().String("to", "", "Destination address")
	sendCmd.Flags().String("amount", "", "Amount in wei")
	sendCmd.Flags().String("gas-price", "", "Gas price in wei (default: eth_gasPrice)")
	sendCmd.Flags().Uint64("gas-limit", 0, "Gas limit (default: 21000)")
	sendCmd.MarkFlagRequired("rpc")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(sendCmd)

	// Balance command flags
	balanceCmd.Flags().String("rpc", "", "EVM JSON-RPC endpoint URL")
	balanceCmd.MarkFlagRequired("rpc")
	rootCmd.AddCommand(balanceCmd)

	// Sweep command flags
	sweepCmd.Flags().String("rpc", "", "EVM JSON-RPC endpoint URL")
	sweepCmd.Flags().String("from", "", "Source address")
	sweepCmd.Flags().String("to", "", "Destination address")
	sweepCmd.Flags().String("buffer", "0", "Gas buffer in wei, kept back from the swept value")
	sweepCmd.Flags().Bool("submit", false, "Sign and submit (prompts for the source private key)")
	sweepCmd.Flags().String("gas-price", "", "Gas price in wei (default: eth_gasPrice)")
	sweepCmd.Flags().Uint64("gas-limit", 0, "Gas limit (default: 21000)")
	sweepCmd.MarkFlagRequired("rpc")
	sweepCmd.MarkFlagRequired("from")
	sweepCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(sweepCmd)

	// Gas command flags
	gasCmd.Flags().Uint64("units", gas.LimitETHTransfer, "Gas units")
	gasCmd.Flags().String("price", "", "Gas price in wei")
	gasCmd.Flags().Uint64("margin-bps", 0, "Safety margin in basis points")
	gasCmd.MarkFlagRequired("price")
	rootCmd.AddCommand(gasCmd)

	// URI command flags
	uriCmd.Flags().String("value", "", "Amount in wei to request")
	rootCmd.AddCommand(uriCmd)

	// Payload subcommands
	payloadPaymentCmd.Flags().String("to", "", "Destination address")
	payloadPaymentCmd.Flags().String("value", "0", "Amount in wei")
	payloadPaymentCmd.Flags().String("data", "", "Hex-encoded call data")
	payloadPaymentCmd.MarkFlagRequired("to")
	payloadCmd.AddCommand(payloadPaymentCmd)

	payloadSweepCmd.Flags().String("rpc", "", "EVM JSON-RPC endpoint URL")
	payloadSweepCmd.Flags().String("multisig", "", "Multisig wallet address")
	payloadSweepCmd.Flags().String("to", "", "Destination address")
	payloadSweepCmd.MarkFlagRequired("rpc")
	payloadSweepCmd.MarkFlagRequired("multisig")
	payloadSweepCmd.MarkFlagRequired("to")
	payloadCmd.AddCommand(payloadSweepCmd)
	rootCmd.AddCommand(payloadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger; --verbose lowers the level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseAddress validates and parses a 0x address flag.
func parseAddress(name, value string) common.Address {
	if !common.IsHexAddress(value) {
		fatal(fmt.Errorf("invalid %s address: %q", name, value))
	}
	return common.HexToAddress(value)
}

// parseWei parses a decimal wei amount.
func parseWei(name, value string) *big.Int {
	wei, ok := new(big.Int).SetString(value, 10)
	if !ok || wei.Sign() < 0 {
		fatal(fmt.Errorf("invalid %s: %q is not a non-negative decimal wei amount", name, value))
	}
	return wei
}

// promptSecret reads a secret from the terminal without echo.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

func runNew(cmd *cobra.Command, args []string) {
	ttl, _ := cmd.Flags().GetDuration("ttl")
	label, _ := cmd.Flags().GetString("label")
	showKey, _ := cmd.Flags().GetBool("show-key")
	exportKeystore, _ := cmd.Flags().GetBool("keystore")
	keystoreDir, _ := cmd.Flags().GetString("keystore-dir")

	logger := newLogger()

	acct, err := wallet.New(ttl, label)
	if err != nil {
		fatal(err)
	}
	logger.Debug("generated burner account", "address", acct.Address().Hex(), "ttl", ttl)

	var keystorePath string
	if exportKeystore {
		password, err := promptSecret("Keystore password: ")
		if err != nil {
			fatal(err)
		}

		ks, err := wallet.ExportKeystore(acct.Keypair(), password)
		if err != nil {
			fatal(err)
		}

		if keystoreDir == "" {
			keystoreDir, err = wallet.DefaultKeystoreDir()
			if err != nil {
				fatal(err)
			}
		}
		keystorePath = filepath.Join(keystoreDir, wallet.KeystoreFilename(label, acct.Address().Hex()))
		if err := wallet.SaveKeystore(ks, keystorePath); err != nil {
			fatal(err)
		}
		logger.Info("exported keystore", "path", keystorePath)
	}

	if jsonOutput {
		out := struct {
			Address   string `json:"address"`
			Label     string `json:"label,omitempty"`
			CreatedAt string `json:"created_at"`
			ExpiresAt string `json:"expires_at,omitempty"`
			URI       string `json:"payment_uri"`
			Keystore  string `json:"keystore,omitempty"`
			Key       string `json:"private_key,omitempty"`
		}{
			Address:   acct.Address().Hex(),
			Label:     acct.Label,
			CreatedAt: acct.CreatedAt.UTC().Format(time.RFC3339),
			URI:       wallet.PaymentURI(acct.Address().Hex()),
			Keystore:  keystorePath,
		}
		if !acct.ExpiresAt.IsZero() {
			out.ExpiresAt = acct.ExpiresAt.UTC().Format(time.RFC3339)
		}
		if showKey {
			out.Key = acct.Keypair().PrivateKeyHex()
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Address:     %s\n", acct.Address().Hex())
	fmt.Printf("Payment URI: %s\n", wallet.PaymentURI(acct.Address().Hex()))
	if acct.ExpiresAt.IsZero() {
		fmt.Println("Expires:     never")
	} else {
		fmt.Printf("Expires:     %s\n", acct.ExpiresAt.Format(time.RFC3339))
	}
	if keystorePath != "" {
		fmt.Printf("Keystore:    %s\n", keystorePath)
	}
	if showKey {
		fmt.Printf("Private key: 0x%s\n", acct.Keypair().PrivateKeyHex())
	}
	fmt.Println()
	fmt.Println("Single use, enforced locally only. Fund it, spend it, forget it.")
}

func runSend(cmd *cobra.Command, args []string) {
	endpoint, _ := cmd.Flags().GetString("rpc")
	toStr, _ := cmd.Flags().GetString("to")
	amountStr, _ := cmd.Flags().GetString("amount")
	gasPriceStr, _ := cmd.Flags().GetString("gas-price")
	gasLimit, _ := cmd.Flags().GetUint64("gas-limit")

	to := parseAddress("destination", toStr)
	amount := parseWei("amount", amountStr)

	logger := newLogger()

	privHex, err := promptSecret("Burner private key: ")
	if err != nil {
		fatal(err)
	}

	kp, err := wallet.KeypairFromHex(privHex)
	if err != nil {
		fatal(err)
	}
	acct := wallet.NewFromKeypair(kp, 0, "")
	logger.Debug("rebuilt burner account", "address", acct.Address().Hex())

	opts := wallet.SendOptions{GasLimit: gasLimit}
	if gasPriceStr != "" {
		opts.GasPrice = parseWei("gas price", gasPriceStr)
	}

	client := rpc.NewClient(endpoint)
	hash, err := acct.Send(context.Background(), client, to, amount, opts)
	if err != nil {
		fatal(err)
	}
	logger.Info("send confirmed", "tx", hash.Hex())

	if jsonOutput {
		out := struct {
			From   string `json:"from"`
			TxHash string `json:"tx_hash"`
			Amount string `json:"amount"`
		}{acct.Address().Hex(), hash.Hex(), amount.String()}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("Confirmed: %s\n", hash.Hex())
}

func runBalance(cmd *cobra.Command, args []string) {
	endpoint, _ := cmd.Flags().GetString("rpc")
	addr := parseAddress("account", args[0])

	client := rpc.NewClient(endpoint)
	balance, err := client.BalanceAt(context.Background(), addr)
	if err != nil {
		fatal(err)
	}

	if jsonOutput {
		out := struct {
			Address string `json:"address"`
			Wei     string `json:"wei"`
		}{addr.Hex(), balance.String()}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%s: %s wei\n", addr.Hex(), balance)
}

func runSweep(cmd *cobra.Command, args []string) {
	endpoint, _ := cmd.Flags().GetString("rpc")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	bufferStr, _ := cmd.Flags().GetString("buffer")
	submit, _ := cmd.Flags().GetBool("submit")
	gasPriceStr, _ := cmd.Flags().GetString("gas-price")
	gasLimit, _ := cmd.Flags().GetUint64("gas-limit")

	from := parseAddress("source", fromStr)
	to := parseAddress("destination", toStr)
	buffer := parseWei("buffer", bufferStr)

	logger := newLogger()
	client := rpc.NewClient(endpoint)
	ctx := context.Background()

	d, err := sweep.Build(ctx, client, from, to, buffer)
	if err != nil {
		fatal(err)
	}
	logger.Debug("built sweep", "from", from.Hex(), "to", to.Hex(), "value", d.Value)

	if !submit {
		if jsonOutput {
			out := struct {
				To    string `json:"to"`
				Value string `json:"value"`
			}{d.To.Hex(), d.Value.String()}
			data, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(data))
			return
		}
		fmt.Printf("Sweep %s -> %s\n", from.Hex(), to.Hex())
		fmt.Printf("Value: %s wei (buffer %s wei held back)\n", d.Value, buffer)
		fmt.Println("Re-run with --submit to sign and send.")
		return
	}

	privHex, err := promptSecret("Private key for " + from.Hex() + ": ")
	if err != nil {
		fatal(err)
	}

	opts := sweep.SubmitOptions{GasLimit: gasLimit}
	if gasPriceStr != "" {
		opts.GasPrice = parseWei("gas price", gasPriceStr)
	}

	hash, err := sweep.Submit(ctx, client, privHex, d, opts)
	if err != nil {
		fatal(err)
	}
	logger.Info("sweep confirmed", "tx", hash.Hex())

	if jsonOutput {
		out := struct {
			TxHash string `json:"tx_hash"`
			Value  string `json:"value"`
		}{hash.Hex(), d.Value.String()}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("Confirmed: %s\n", hash.Hex())
}

func runGas(cmd *cobra.Command, args []string) {
	units, _ := cmd.Flags().GetUint64("units")
	priceStr, _ := cmd.Flags().GetString("price")
	marginBps, _ := cmd.Flags().GetUint64("margin-bps")

	price := parseWei("price", priceStr)
	exact := gas.TotalCost(units, price)
	withMargin := gas.WithMargin(units, price, marginBps)

	if jsonOutput {
		out := struct {
			Units      uint64 `json:"units"`
			Price      string `json:"price_wei"`
			MarginBps  uint64 `json:"margin_bps"`
			Exact      string `json:"cost_wei"`
			WithMargin string `json:"cost_with_margin_wei"`
		}{units, price.String(), marginBps, exact.String(), withMargin.String()}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Cost:        %s wei\n", exact)
	if marginBps > 0 {
		fmt.Printf("With margin: %s wei (+%d bps)\n", withMargin, marginBps)
	}
}

func runURI(cmd *cobra.Command, args []string) {
	valueStr, _ := cmd.Flags().GetString("value")
	addr := args[0]

	if !common.IsHexAddress(addr) {
		fatal(fmt.Errorf("invalid address: %q", addr))
	}

	var uri string
	if valueStr == "" {
		uri = wallet.PaymentURI(addr)
	} else {
		uri = wallet.PaymentURIWithValue(addr, parseWei("value", valueStr))
	}

	fmt.Println(uri)
}

func runPayloadPayment(cmd *cobra.Command, args []string) {
	toStr, _ := cmd.Flags().GetString("to")
	valueStr, _ := cmd.Flags().GetString("value")
	dataStr, _ := cmd.Flags().GetString("data")

	to := parseAddress("destination", toStr)
	value := parseWei("value", valueStr)

	var data []byte
	if dataStr != "" {
		var err error
		data, err = hex.DecodeString(strings.TrimPrefix(dataStr, "0x"))
		if err != nil {
			fatal(fmt.Errorf("invalid call data: %w", err))
		}
	}

	printPayload(multisig.BuildPayment(to, value, data))
}

func runPayloadSweep(cmd *cobra.Command, args []string) {
	endpoint, _ := cmd.Flags().GetString("rpc")
	multisigStr, _ := cmd.Flags().GetString("multisig")
	toStr, _ := cmd.Flags().GetString("to")

	multisigAddr := parseAddress("multisig", multisigStr)
	to := parseAddress("destination", toStr)

	client := rpc.NewClient(endpoint)
	p, err := multisig.BuildSweepPayload(context.Background(), client, multisigAddr, to)
	if err != nil {
		fatal(err)
	}

	printPayload(p)
}

func printPayload(p multisig.Payload) {
	if jsonOutput {
		out := struct {
			To    string `json:"to"`
			Value string `json:"value"`
			Data  string `json:"data"`
		}{p.To.Hex(), p.Value.String(), "0x" + hex.EncodeToString(p.Data)}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("To:    %s\n", p.To.Hex())
	fmt.Printf("Value: %s wei\n", p.Value)
	fmt.Printf("Data:  0x%s\n", hex.EncodeToString(p.Data))
}
