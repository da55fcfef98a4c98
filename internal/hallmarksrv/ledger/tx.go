package ledger

import (
	"bytes"
	"crypto/ed25519"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/mr-tron/base58"
)

// OperatorKey is an ed25519 keypair in Solana's 64-byte layout: the seed
// followed by the public key.
type OperatorKey struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// ParseOperatorKey decodes a base58 64-byte keypair.
func ParseOperatorKey(encoded string) (*OperatorKey, apperrors.Error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, ErrInvalidOperatorKey.Err(err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, ErrInvalidOperatorKey.Msg("keypair must be 64 bytes")
	}
	private := ed25519.PrivateKey(raw)
	return &OperatorKey{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
	}, nil
}

func (k *OperatorKey) PublicKeyBase58() string {
	return base58.Encode(k.public)
}

// BuildMemoTransaction assembles and signs a legacy transaction with a single
// memo instruction. The memo program takes no accounts; the fee payer is the
// only signer. Returns the wire bytes and the base58 signature, which is the
// transaction reference recorded on the hallmark.
func BuildMemoTransaction(key *OperatorKey, recentBlockhash string, memo string) ([]byte, string, apperrors.Error) {
	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil {
		return nil, "", ErrLedger.Msg("invalid blockhash").Err(err)
	}
	if len(blockhash) != 32 {
		return nil, "", ErrLedger.Msg("blockhash must be 32 bytes")
	}
	memoProgram, err := base58.Decode(memoProgramID)
	if err != nil {
		return nil, "", ErrLedger.Msg("invalid memo program id").Err(err)
	}

	// Message: header, account keys (fee payer + memo program), blockhash,
	// one instruction referencing no accounts.
	var msg bytes.Buffer
	msg.Write([]byte{1, 0, 1}) // 1 signer, 0 readonly signed, 1 readonly unsigned
	writeCompactU16(&msg, 2)
	msg.Write(key.public)
	msg.Write(memoProgram)
	msg.Write(blockhash)
	writeCompactU16(&msg, 1)
	msg.WriteByte(1) // program id index
	writeCompactU16(&msg, 0)
	writeCompactU16(&msg, len(memo))
	msg.WriteString(memo)

	signature := ed25519.Sign(key.private, msg.Bytes())

	var tx bytes.Buffer
	writeCompactU16(&tx, 1)
	tx.Write(signature)
	tx.Write(msg.Bytes())

	return tx.Bytes(), base58.Encode(signature), nil
}

// writeCompactU16 appends a compact-u16 length as used by the Solana wire
// format: little-endian, 7 bits per byte, high bit as continuation.
func writeCompactU16(buf *bytes.Buffer, n int) {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}
