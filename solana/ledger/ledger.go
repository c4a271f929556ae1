package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
	"github.com/ShellTrade/bridge-claimer/solana/client"
	"github.com/ShellTrade/bridge-claimer/telemetry"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/hashicorp/go-hclog"
	"github.com/sethvargo/go-retry"
)

var memoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

// TxClient is the transaction surface the adapter needs from the chain
// client. Narrowed for testability; SignerClient is the production
// implementation.
type TxClient interface {
	GetAssociatedAccount(ctx context.Context, owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, bool, error)
	CreateAssociatedAccount(ctx context.Context, owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, solana.Signature, error)
	MintTo(ctx context.Context, mint solana.PublicKey, destination solana.PublicKey, amount uint64) (solana.Signature, error)
	CreateMint(ctx context.Context, decimals uint8) (solana.PublicKey, solana.Signature, error)
	SubmitInstructions(ctx context.Context, ixs []solana.Instruction) (solana.Signature, error)
}

// SignerClient binds a SolanaClient to the settlement wallet keypair.
type SignerClient struct {
	client *client.SolanaClient
	signer solana.PrivateKey
}

var _ TxClient = (*SignerClient)(nil)

func NewSignerClient(cli *client.SolanaClient, signer solana.PrivateKey) *SignerClient {
	return &SignerClient{
		client: cli,
		signer: signer,
	}
}

func (sc *SignerClient) SignerKey() solana.PublicKey {
	return sc.signer.PublicKey()
}

func (sc *SignerClient) GetAssociatedAccount(
	ctx context.Context, owner solana.PublicKey, mint solana.PublicKey,
) (solana.PublicKey, bool, error) {
	return sc.client.GetAssociatedAccount(ctx, owner, mint)
}

func (sc *SignerClient) CreateAssociatedAccount(
	ctx context.Context, owner solana.PublicKey, mint solana.PublicKey,
) (solana.PublicKey, solana.Signature, error) {
	return sc.client.CreateAssociatedAccount(ctx, sc.signer, owner, mint)
}

func (sc *SignerClient) MintTo(
	ctx context.Context, mint solana.PublicKey, destination solana.PublicKey, amount uint64,
) (solana.Signature, error) {
	return sc.client.MintTo(ctx, sc.signer, mint, destination, amount)
}

func (sc *SignerClient) CreateMint(ctx context.Context, decimals uint8) (solana.PublicKey, solana.Signature, error) {
	return sc.client.CreateMint(ctx, sc.signer, decimals)
}

func (sc *SignerClient) SubmitInstructions(
	ctx context.Context, ixs []solana.Instruction,
) (solana.Signature, error) {
	return sc.client.ExecuteInstructions(
		ctx, ixs, map[solana.PublicKey]*solana.PrivateKey{}, sc.signer)
}

// LedgerAdapter implements core.LedgerClient on top of a TxClient. It owns
// the fixed-delay retry budgets and the pauses between dependent steps;
// everything it returns is classified as NetworkError or RejectedError.
type LedgerAdapter struct {
	tx     TxClient
	signer solana.PublicKey
	config core.LedgerConfig
	logger hclog.Logger
}

var _ core.LedgerClient = (*LedgerAdapter)(nil)

func NewLedgerAdapter(
	tx TxClient, signer solana.PublicKey, config core.LedgerConfig, logger hclog.Logger,
) *LedgerAdapter {
	return &LedgerAdapter{
		tx:     tx,
		signer: signer,
		config: config,
		logger: logger,
	}
}

// NewLedgerFromConfig loads the settlement wallet keypair, connects the
// chain client and returns the assembled adapter.
func NewLedgerFromConfig(
	ctx context.Context, config core.LedgerConfig, logger hclog.Logger,
) (*LedgerAdapter, *client.SolanaClient, error) {
	signer, err := solana.PrivateKeyFromSolanaKeygenFile(config.SignerKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load signer keypair: %w", err)
	}

	cli, err := client.NewSolanaClient(
		client.WithEndpoints(ctx, config.RPCEndpoint, config.WSEndpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chain client: %w", err)
	}

	return NewLedgerAdapter(NewSignerClient(cli, signer), signer.PublicKey(), config, logger), cli, nil
}

// SignerAddress implements core.LedgerClient.
func (l *LedgerAdapter) SignerAddress() string {
	return l.signer.String()
}

// CreateOrGetAccount implements core.LedgerClient. Account preparation is
// retried on transport errors under the budget selected by kind; the
// configured pause lets the account state reach finality before the
// dependent step runs.
func (l *LedgerAdapter) CreateOrGetAccount(
	ctx context.Context, owner string, assetID string, kind core.AccountRetryKind,
) (string, error) {
	const op = "prepare account"

	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid owner address %s: %w", owner, err)}
	}

	mintKey, err := solana.PublicKeyFromBase58(assetID)
	if err != nil {
		return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid asset address %s: %w", assetID, err)}
	}

	account, err := l.prepareAccount(ctx, ownerKey, mintKey, l.accountPolicy(kind))
	if err != nil {
		return "", l.classify(op, err)
	}

	if err := common.WaitWithContext(ctx, l.config.AccountPreparePause); err != nil {
		return "", err
	}

	return account.String(), nil
}

// MintFungible implements core.LedgerClient.
func (l *LedgerAdapter) MintFungible(
	ctx context.Context, assetID string, amount uint64, destinationAccount string,
) (string, error) {
	const op = "mint fungible"

	mintKey, err := solana.PublicKeyFromBase58(assetID)
	if err != nil {
		return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid asset address %s: %w", assetID, err)}
	}

	destKey, err := solana.PublicKeyFromBase58(destinationAccount)
	if err != nil {
		return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid destination account %s: %w", destinationAccount, err)}
	}

	l.logger.Debug("minting fungible units", "mint", assetID, "amount", amount, "destination", destinationAccount)

	sig, err := l.tx.MintTo(ctx, mintKey, destKey, amount)
	if err != nil {
		return "", l.classify(op, err)
	}

	return sig.String(), nil
}

// TransferCollectibleBatch implements core.LedgerClient. Destination token
// accounts are prepared one by one under the collectible retry budget, then
// all transfers are submitted as a single atomic transaction under the batch
// submit budget.
func (l *LedgerAdapter) TransferCollectibleBatch(
	ctx context.Context, items []core.CollectibleTransfer,
) (string, error) {
	const op = "transfer collectible batch"

	if len(items) == 0 {
		return "", &core.RejectedError{Op: op, Err: errors.New("empty transfer batch")}
	}

	ixs := make([]solana.Instruction, 0, len(items))

	for _, item := range items {
		mintKey, err := solana.PublicKeyFromBase58(item.CollectibleID)
		if err != nil {
			return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid collectible id %s: %w", item.CollectibleID, err)}
		}

		destOwner, err := solana.PublicKeyFromBase58(item.DestinationOwner)
		if err != nil {
			return "", &core.RejectedError{Op: op, Err: fmt.Errorf("invalid destination owner %s: %w", item.DestinationOwner, err)}
		}

		destAccount, err := l.prepareAccount(
			ctx, destOwner, mintKey, l.config.CollectibleAccountRetry)
		if err != nil {
			return "", l.classify("prepare account", err)
		}

		sourceAccount, _, err := solana.FindAssociatedTokenAddress(l.signer, mintKey)
		if err != nil {
			return "", &core.RejectedError{Op: op, Err: fmt.Errorf("failed to derive source account: %w", err)}
		}

		ixs = append(ixs, token.NewTransferInstruction(
			1, sourceAccount, destAccount, l.signer, []solana.PublicKey{}).Build())
	}

	if err := common.WaitWithContext(ctx, l.config.BatchSubmitPause); err != nil {
		return "", err
	}

	var sig solana.Signature

	err := l.executeWithRetry(ctx, op, l.config.BatchSubmitRetry, func(ctx context.Context) error {
		var err error
		sig, err = l.tx.SubmitInstructions(ctx, ixs)

		return err
	})
	if err != nil {
		return "", l.classify(op, err)
	}

	l.logger.Info("collectible batch transferred", "count", len(items), "signature", sig.String())

	return sig.String(), nil
}

// CreateCollectible implements core.LedgerClient. Creates a fresh
// single-supply mint and places the one unit in the signer's inventory.
func (l *LedgerAdapter) CreateCollectible(
	ctx context.Context, tokenDesc *core.TokenDescriptor,
) (string, string, error) {
	const op = "create collectible"

	mintKey, sig, err := l.tx.CreateMint(ctx, 0)
	if err != nil {
		return "", "", l.classify(op, err)
	}

	l.logger.Info("collectible mint created",
		"mint", mintKey.String(), "name", tokenDesc.Name, "symbol", tokenDesc.Symbol)

	account, err := l.prepareAccount(ctx, l.signer, mintKey, l.config.CollectibleAccountRetry)
	if err != nil {
		return mintKey.String(), sig.String(), l.classify(op, err)
	}

	if _, err := l.tx.MintTo(ctx, mintKey, account, 1); err != nil {
		return mintKey.String(), sig.String(), l.classify(op, err)
	}

	return mintKey.String(), sig.String(), nil
}

// VerifyCollection implements core.LedgerClient. Records the collection
// membership attestation on chain through the memo program.
func (l *LedgerAdapter) VerifyCollection(
	ctx context.Context, collectibleID string, collectionID string,
) (string, error) {
	return l.submitMemo(ctx, "verify collection",
		fmt.Sprintf("verify-collection:%s:%s", collectibleID, collectionID))
}

// InscribeContent implements core.LedgerClient. Anchors the collectible
// content on chain through the memo program.
func (l *LedgerAdapter) InscribeContent(
	ctx context.Context, collectibleID string, content string,
) (string, error) {
	return l.submitMemo(ctx, "inscribe content",
		fmt.Sprintf("inscribe:%s:%s", collectibleID, content))
}

func (l *LedgerAdapter) submitMemo(ctx context.Context, op string, payload string) (string, error) {
	ix := solana.NewInstruction(memoProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(l.signer, false, true)},
		[]byte(payload))

	sig, err := l.tx.SubmitInstructions(ctx, []solana.Instruction{ix})
	if err != nil {
		return "", l.classify(op, err)
	}

	return sig.String(), nil
}

// prepareAccount resolves the owner's associated account for mint, creating
// it when missing. The whole lookup-or-create step runs under the given
// retry budget.
func (l *LedgerAdapter) prepareAccount(
	ctx context.Context, owner solana.PublicKey, mint solana.PublicKey, policy core.RetryPolicy,
) (solana.PublicKey, error) {
	var account solana.PublicKey

	err := l.executeWithRetry(ctx, "prepare account", policy, func(ctx context.Context) error {
		ata, exists, err := l.tx.GetAssociatedAccount(ctx, owner, mint)
		if err != nil {
			return err
		}

		if exists {
			account = ata

			return nil
		}

		ata, _, err = l.tx.CreateAssociatedAccount(ctx, owner, mint)
		if err != nil {
			return err
		}

		account = ata

		return nil
	})
	if err != nil {
		return solana.PublicKey{}, err
	}

	return account, nil
}

func (l *LedgerAdapter) accountPolicy(kind core.AccountRetryKind) core.RetryPolicy {
	if kind == core.AccountRetryCollectible {
		return l.config.CollectibleAccountRetry
	}

	return l.config.FungibleAccountRetry
}

// executeWithRetry runs fn under a fixed-delay budget. On-chain rejections
// and context cancellation end the attempt immediately; transport errors
// burn an attempt and wait out the delay.
func (l *LedgerAdapter) executeWithRetry(
	ctx context.Context, op string, policy core.RetryPolicy, fn func(ctx context.Context) error,
) error {
	maxRetries := uint64(0)
	if policy.MaxAttempts > 1 {
		maxRetries = uint64(policy.MaxAttempts - 1)
	}

	// retry.NewConstant panics on a non-positive interval
	delay := policy.Delay
	if delay <= 0 {
		delay = time.Millisecond
	}

	backoff := retry.WithMaxRetries(maxRetries, retry.NewConstant(delay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if errors.Is(err, client.ErrTxRejected) || common.IsContextDoneErr(err) {
			return err
		}

		l.logger.Warn("ledger operation failed, will retry", "op", op, "err", err)
		telemetry.UpdateLedgerRetryCounter(op, 1)

		return retry.RetryableError(err)
	})
}

func (l *LedgerAdapter) classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if common.IsContextDoneErr(err) {
		return err
	}

	if errors.Is(err, client.ErrTxRejected) {
		return &core.RejectedError{Op: op, Err: err}
	}

	return &core.NetworkError{Op: op, Err: err}
}
