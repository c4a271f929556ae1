package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// ErrTxRejected marks a transaction that reached the cluster and failed
// on chain. Everything else coming out of this package is a transport
// problem and worth retrying.
var ErrTxRejected = errors.New("transaction rejected on chain")

// SolanaClient wraps the RPC and WebSocket clients. Transactions are
// confirmed through a signature subscription before any method returns.
type SolanaClient struct {
	cli        *rpc.Client
	wsCli      *ws.Client
	commitment rpc.CommitmentType
}

type solanaClientOption func(*SolanaClient) error

func WithCommitment(commitment rpc.CommitmentType) solanaClientOption {
	return func(s *SolanaClient) error {
		s.commitment = commitment

		return nil
	}
}

func WithClients(cli *rpc.Client, wsCli *ws.Client) solanaClientOption {
	return func(s *SolanaClient) error {
		s.cli = cli
		s.wsCli = wsCli

		return nil
	}
}

func WithEndpoints(ctx context.Context, rpcURL string, wsURL string) solanaClientOption {
	return func(s *SolanaClient) error {
		s.cli = rpc.New(rpcURL)

		wsCli, err := ws.Connect(ctx, wsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}

		s.wsCli = wsCli

		return nil
	}
}

func NewSolanaClient(opts ...solanaClientOption) (*SolanaClient, error) {
	s := &SolanaClient{
		commitment: rpc.CommitmentFinalized,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *SolanaClient) GetRpcClient() *rpc.Client {
	return s.cli
}

func (s *SolanaClient) Close() {
	if s.wsCli != nil {
		s.wsCli.Close()
	}

	if s.cli != nil {
		_ = s.cli.Close()
	}
}

// GetAssociatedAccount derives the owner's associated token account for mint
// and reports whether it already exists on chain.
func (s *SolanaClient) GetAssociatedAccount(
	ctx context.Context, owner solana.PublicKey, mint solana.PublicKey,
) (solana.PublicKey, bool, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, false, fmt.Errorf("failed to derive associated account: %w", err)
	}

	info, err := s.cli.GetAccountInfo(ctx, ata)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return ata, false, nil
		}

		return solana.PublicKey{}, false, fmt.Errorf("failed to fetch account info: %w", err)
	}

	return ata, info != nil && info.Value != nil, nil
}

// CreateAssociatedAccount creates the owner's associated token account for
// mint, with payer covering rent. Fails on chain if the account exists.
func (s *SolanaClient) CreateAssociatedAccount(
	ctx context.Context, payer solana.PrivateKey, owner solana.PublicKey, mint solana.PublicKey,
) (solana.PublicKey, solana.Signature, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, fmt.Errorf("failed to derive associated account: %w", err)
	}

	ix := associatedtokenaccount.NewCreateInstruction(payer.PublicKey(), owner, mint).Build()

	sig, err := s.ExecuteInstructions(
		ctx, []solana.Instruction{ix}, map[solana.PublicKey]*solana.PrivateKey{}, payer)
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, err
	}

	return ata, sig, nil
}

// MintTo mints amount base units of mint into the destination token account.
// The authority must hold the mint authority for the token.
func (s *SolanaClient) MintTo(
	ctx context.Context, authority solana.PrivateKey,
	mint solana.PublicKey, destination solana.PublicKey, amount uint64,
) (solana.Signature, error) {
	ix := token.NewMintToInstruction(
		amount, mint, destination, authority.PublicKey(), []solana.PublicKey{}).Build()

	return s.ExecuteInstructions(
		ctx, []solana.Instruction{ix}, map[solana.PublicKey]*solana.PrivateKey{}, authority)
}

// CreateMint creates and initializes a new token mint with the given number
// of decimals, with payer as both mint and freeze authority.
func (s *SolanaClient) CreateMint(
	ctx context.Context, payer solana.PrivateKey, decimals uint8,
) (solana.PublicKey, solana.Signature, error) {
	mintPk, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, fmt.Errorf("failed to generate mint keypair: %w", err)
	}

	rent, err := s.cli.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, s.commitment)
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, fmt.Errorf("failed to get rent exemption: %w", err)
	}

	createIx := system.NewCreateAccountInstruction(
		rent, uint64(token.MINT_SIZE), token.ProgramID, payer.PublicKey(), mintPk.PublicKey()).Build()
	initIx := token.NewInitializeMint2Instruction(
		decimals, payer.PublicKey(), payer.PublicKey(), mintPk.PublicKey()).Build()

	sig, err := s.ExecuteInstructions(
		ctx, []solana.Instruction{createIx, initIx},
		map[solana.PublicKey]*solana.PrivateKey{mintPk.PublicKey(): &mintPk}, payer)
	if err != nil {
		return solana.PublicKey{}, solana.Signature{}, err
	}

	return mintPk.PublicKey(), sig, nil
}

// ExecuteInstructions builds, signs, and sends a transaction containing the
// given instructions and waits for confirmation. All instructions execute
// atomically in one transaction.
func (s *SolanaClient) ExecuteInstructions(
	ctx context.Context,
	ixs []solana.Instruction,
	signers map[solana.PublicKey]*solana.PrivateKey,
	feePayer solana.PrivateKey,
) (solana.Signature, error) {
	blockhash, err := s.cli.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	builder := solana.NewTransactionBuilder().
		SetRecentBlockHash(blockhash.Value.Blockhash).
		SetFeePayer(feePayer.PublicKey())

	for _, ix := range ixs {
		builder.AddInstruction(ix)
	}

	tx, err := builder.Build()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	signers[feePayer.PublicKey()] = &feePayer

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return signers[key]
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.cli.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err = s.waitForSignature(ctx, sig); err != nil {
		return solana.Signature{}, err
	}

	return sig, nil
}

// Airdrop requests lamports for addr. Local and development clusters only.
func (s *SolanaClient) Airdrop(ctx context.Context, addr solana.PublicKey, amount uint64) error {
	sig, err := s.cli.RequestAirdrop(ctx, addr, amount, s.commitment)
	if err != nil {
		return fmt.Errorf("failed to request airdrop: %w", err)
	}

	return s.waitForSignature(ctx, sig)
}

func (s *SolanaClient) waitForSignature(ctx context.Context, sig solana.Signature) error {
	sub, err := s.wsCli.SignatureSubscribe(sig, s.commitment)
	if err != nil {
		return fmt.Errorf("failed to subscribe to signature: %w", err)
	}
	defer sub.Unsubscribe()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case rd := <-sub.Response():
		if rd.Value.Err != nil {
			return fmt.Errorf("%w: tx %s: %v", ErrTxRejected, sig, rd.Value.Err)
		}
	}

	return nil
}
