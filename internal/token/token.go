// Package token classifies and mints the opaque identifiers embedded in QR
// codes and share links.  Customer tokens carry the "cust_" prefix and
// business tokens the "biz_" prefix; everything after the prefix is an
// unguessable random suffix with no internal structure.  A scanned string
// may be a bare token or a full URL whose "token" query parameter holds the
// token, so classification accepts either form.
package token

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefixes that drive classification.  The URL path, host and any other
// query parameters never influence the result; only the prefix matters.
const (
	CustomerPrefix = "cust_"
	BusinessPrefix = "biz_"
)

// Kind describes what a scanned string refers to.
type Kind int

const (
	KindUnknown  Kind = iota // no recognized prefix; caller decides whether to ignore or error
	KindCustomer             // token starts with cust_
	KindBusiness             // token starts with biz_
)

// String returns a short name for logging.
func (k Kind) String() string {
	switch k {
	case KindCustomer:
		return "customer"
	case KindBusiness:
		return "business"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of classifying a scanned string.  Token holds
// the candidate token even when Kind is KindUnknown so callers can log what
// was scanned.  JoinBusinessID and DiscountID surface the optional "join"
// and "discount_id" query parameters carried by generated URLs; both are
// zero when absent or malformed.
type Resolution struct {
	Kind           Kind
	Token          string
	JoinBusinessID uint64
	DiscountID     uint64
}

// Resolve classifies a scanned or URL-supplied string.  URL parsing is
// attempted first: when the input parses and carries a "token" query
// parameter, that value becomes the candidate; otherwise the whole input is
// the candidate.  Parse failures are swallowed, never surfaced.  A token
// parameter with an unrecognized prefix stays unrecognized; it is not
// retried against the raw input.  Resolve is pure and has no side effects.
func Resolve(s string) Resolution {
	candidate := strings.TrimSpace(s)
	var join, discount uint64
	if u, err := url.Parse(candidate); err == nil {
		q := u.Query()
		if t := q.Get("token"); t != "" {
			candidate = t
		}
		join = parseID(q.Get("join"))
		discount = parseID(q.Get("discount_id"))
	}
	res := Resolution{Token: candidate, JoinBusinessID: join, DiscountID: discount}
	switch {
	case strings.HasPrefix(candidate, CustomerPrefix):
		res.Kind = KindCustomer
	case strings.HasPrefix(candidate, BusinessPrefix):
		res.Kind = KindBusiness
	}
	return res
}

// NewCustomerToken mints a fresh customer token.
func NewCustomerToken() string {
	return CustomerPrefix + randomSuffix()
}

// NewBusinessToken mints a fresh business token.
func NewBusinessToken() string {
	return BusinessPrefix + randomSuffix()
}

// randomSuffix returns 32 hex characters derived from a random UUID.  The
// dashes are stripped so tokens stay easy to embed in URLs and QR payloads.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func parseID(s string) uint64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
