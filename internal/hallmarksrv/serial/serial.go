// Package serial produces the human-readable, monotonically increasing
// hallmark serial numbers. Two numbering spaces exist: the company space
// shared by all company-scoped hallmarks, and one space per principal
// prefix. Counter state lives in the store; this package never caches a
// counter in process memory.
package serial

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
)

const (
	// CompanyPrefix is the numbering prefix of company-scoped hallmarks.
	CompanyPrefix = "BB"
	// CompanySpace is the counter key of the company numbering space.
	CompanySpace = "company"

	companyWidth   = 10
	principalWidth = 6
)

// Reserver is the store-side reservation of the next counter value. The
// implementation must serialize concurrent reservations of the same space;
// two callers must never receive the same value.
type Reserver interface {
	ReserveSerial(ctx context.Context, space string, prefix string) (int64, apperrors.Error)
}

type Issuer struct {
	store Reserver
}

func NewIssuer(store Reserver) *Issuer {
	return &Issuer{store: store}
}

// NextCompany reserves and formats the next company-scoped serial, e.g.
// BB-0000000001.
func (i *Issuer) NextCompany(ctx context.Context) (string, apperrors.Error) {
	v, err := i.store.ReserveSerial(ctx, CompanySpace, CompanyPrefix)
	if err != nil {
		return "", err
	}
	return FormatCompany(v), nil
}

// NextPrincipal reserves and formats the next serial of a principal's
// numbering space, e.g. BB-ALICE-000001.
func (i *Issuer) NextPrincipal(ctx context.Context, prefix string) (string, apperrors.Error) {
	if prefix == "" {
		return "", apperrors.New("empty hallmark prefix")
	}
	v, err := i.store.ReserveSerial(ctx, PrincipalSpace(prefix), prefix)
	if err != nil {
		return "", err
	}
	return FormatPrincipal(prefix, v), nil
}

// PrincipalSpace returns the counter key of a principal prefix.
func PrincipalSpace(prefix string) string {
	return "principal:" + prefix
}

func FormatCompany(n int64) string {
	return fmt.Sprintf("%s-%0*d", CompanyPrefix, companyWidth, n)
}

func FormatPrincipal(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, principalWidth, n)
}

// TrailingNumber parses the trailing digit run of a serial number. Used to
// seed a counter from persisted serials after a restart.
func TrailingNumber(serialNumber string) (int64, bool) {
	i := len(serialNumber)
	for i > 0 && serialNumber[i-1] >= '0' && serialNumber[i-1] <= '9' {
		i--
	}
	if i == len(serialNumber) {
		return 0, false
	}
	n, err := strconv.ParseInt(serialNumber[i:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasPrefix reports whether the serial belongs to the numbering space of the
// given prefix (prefix followed by a dash and digits only).
func HasPrefix(serialNumber, prefix string) bool {
	rest, ok := strings.CutPrefix(serialNumber, prefix+"-")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}
