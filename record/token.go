package record

import (
	"errors"

	"github.com/quilclient/quilclient/amount"
	"github.com/quilclient/quilclient/errs"
	"github.com/quilclient/quilclient/wire"
)

// TokenInfo holds the four amounts of a token info response.
type TokenInfo struct {
	ConfirmedSupply   amount.Pair
	UnconfirmedSupply amount.Pair
	Owned             amount.Pair
	UnconfirmedOwned  amount.Pair
}

// BuildTokenInfo decodes every amount of in with scale s. The first malformed
// amount fails the whole response; the error names the field.
func BuildTokenInfo(in wire.TokenInfoResponse, s amount.Scale) (TokenInfo, error) {
	var out TokenInfo
	fields := []struct {
		name string
		raw  []byte
		dst  *amount.Pair
	}{
		{"confirmed_token_supply", in.ConfirmedTokenSupply, &out.ConfirmedSupply},
		{"unconfirmed_token_supply", in.UnconfirmedTokenSupply, &out.UnconfirmedSupply},
		{"owned_tokens", in.OwnedTokens, &out.Owned},
		{"unconfirmed_owned_tokens", in.UnconfirmedOwnedTokens, &out.UnconfirmedOwned},
	}
	for _, f := range fields {
		p, err := amount.NewPair(f.raw, s)
		if err != nil {
			return TokenInfo{}, withField(err, f.name)
		}
		*f.dst = p
	}
	return out, nil
}

// withField names field on a structured error that does not carry one yet.
func withField(err error, field string) error {
	var e *errs.Error
	if !errors.As(err, &e) || e.Field != "" {
		return err
	}
	named := *e
	named.Field = field
	return &named
}
