package ledger

import (
	"regexp"
	"strings"
)

// Memo program deployed on all Solana clusters.
const memoProgramID = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

// memoTag prefixes every anchored hash so our memos are recognizable among
// arbitrary memo traffic.
const memoTag = "BB-HALLMARK:"

var memoHashRe = regexp.MustCompile(`BB-HALLMARK:([0-9a-f]{64})`)

// BuildMemo renders the memo payload of a content hash.
func BuildMemo(contentHash string) string {
	return memoTag + strings.ToLower(contentHash)
}

// ExtractMemoHash scans transaction log messages for an anchored hash. RPC
// nodes wrap the memo text in quotes inside the program log line, so a
// substring match is used rather than exact parsing.
func ExtractMemoHash(logMessages []string) (string, bool) {
	for _, line := range logMessages {
		if m := memoHashRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
