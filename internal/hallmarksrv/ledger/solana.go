package ledger

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/httpx"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type solanaClient struct {
	network       string
	endpoint      string
	fallback      string
	operatorKey   *OperatorKey
	anchorTimeout time.Duration
	verifyTimeout time.Duration
	pollInterval  time.Duration
}

var _ Client = (*solanaClient)(nil)

func (c *solanaClient) Enabled() bool {
	return c.operatorKey != nil
}

func (c *solanaClient) Network() string {
	return c.network
}

// rpcCall posts a JSON-RPC request, trying the fallback endpoint once when
// the primary is unreachable. Returns the parsed "result" field.
func (c *solanaClient) rpcCall(ctx context.Context, method string, params ...any) (gjson.Result, apperrors.Error) {
	body := `{"jsonrpc":"2.0","id":1}`
	body, _ = sjson.Set(body, "method", method)
	if len(params) > 0 {
		body, _ = sjson.Set(body, "params", params)
	}

	endpoints := []string{c.endpoint}
	if c.fallback != "" && c.fallback != c.endpoint {
		endpoints = append(endpoints, c.fallback)
	}

	var lastErr error
	for _, endpoint := range endpoints {
		rsp, err := httpx.PostJSON(ctx, endpoint, []byte(body), c.verifyTimeout)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Str("method", method).
				Msg("rpc endpoint unreachable")
			lastErr = err
			continue
		}
		parsed := gjson.ParseBytes(rsp)
		if rpcErr := parsed.Get("error"); rpcErr.Exists() {
			return gjson.Result{}, ErrLedger.Msg(rpcErr.Get("message").String())
		}
		return parsed.Get("result"), nil
	}
	return gjson.Result{}, ErrLedgerUnavailable.Err(lastErr)
}

// Anchor submits a memo transaction carrying the content hash and polls until
// the cluster confirms it or the anchor timeout elapses.
func (c *solanaClient) Anchor(ctx context.Context, contentHash string) (*AnchorResult, apperrors.Error) {
	if !c.Enabled() {
		return nil, ErrLedgerDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.anchorTimeout)
	defer cancel()

	result, err := c.rpcCall(ctx, "getLatestBlockhash")
	if err != nil {
		return nil, err
	}
	blockhash := result.Get("value.blockhash").String()
	if blockhash == "" {
		return nil, ErrLedger.Msg("no blockhash in response")
	}

	tx, txRef, err := BuildMemoTransaction(c.operatorKey, blockhash, BuildMemo(contentHash))
	if err != nil {
		return nil, err
	}

	sendParams := map[string]any{"encoding": "base64"}
	if _, err := c.rpcCall(ctx, "sendTransaction", base64.StdEncoding.EncodeToString(tx), sendParams); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("txRef", txRef).Msg("anchor transaction submitted")

	slot, err := c.awaitConfirmation(ctx, txRef)
	if err != nil {
		return nil, err
	}
	return &AnchorResult{
		TxRef:       txRef,
		Slot:        slot,
		Network:     c.network,
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

func (c *solanaClient) awaitConfirmation(ctx context.Context, txRef string) (int64, apperrors.Error) {
	var slot int64
	retryErr := retry.Do(
		func() error {
			result, err := c.rpcCall(ctx, "getSignatureStatuses", []string{txRef})
			if err != nil {
				return err
			}
			status := result.Get("value.0")
			if !status.Exists() || status.Type == gjson.Null {
				return ErrNotConfirmed
			}
			if txErr := status.Get("err"); txErr.Exists() && txErr.Type != gjson.Null {
				return retry.Unrecoverable(ErrLedger.Msg("transaction failed on ledger"))
			}
			switch status.Get("confirmationStatus").String() {
			case "confirmed", "finalized":
				slot = status.Get("slot").Int()
				return nil
			}
			return ErrNotConfirmed
		},
		retry.Context(ctx),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.Attempts(0), // bounded by ctx
		retry.LastErrorOnly(true),
	)
	if retryErr != nil {
		if appErr, ok := retryErr.(apperrors.Error); ok {
			return 0, appErr
		}
		return 0, ErrNotConfirmed.Err(retryErr)
	}
	return slot, nil
}

// FetchAndVerify retrieves the anchor transaction and compares the hash in
// its memo against expectedHash.
func (c *solanaClient) FetchAndVerify(ctx context.Context, txRef string, expectedHash string) (*VerifyResult, apperrors.Error) {
	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	params := map[string]any{"encoding": "json", "maxSupportedTransactionVersion": 0}
	result, err := c.rpcCall(ctx, "getTransaction", txRef, params)
	if err != nil {
		return nil, err
	}
	if !result.Exists() || result.Type == gjson.Null {
		return &VerifyResult{Exists: false}, nil
	}

	vr := &VerifyResult{
		Exists:    true,
		Confirmed: true,
		Slot:      result.Get("slot").Int(),
	}

	var logMessages []string
	result.Get("meta.logMessages").ForEach(func(_, line gjson.Result) bool {
		logMessages = append(logMessages, line.String())
		return true
	})
	if hash, ok := ExtractMemoHash(logMessages); ok {
		vr.EmbeddedHash = hash
		matches := hash == expectedHash
		vr.HashMatches = &matches
	}
	return vr, nil
}

func (c *solanaClient) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	result, err := c.rpcCall(ctx, "getHealth")
	if err != nil {
		return false
	}
	return result.String() == "ok"
}
