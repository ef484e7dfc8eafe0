package domain

import (
	"regexp"
	"strings"
)

// Account id prefixes
const (
	PrefixUnblinded = "00"
	PrefixStandard  = "05"
	PrefixBlinded15 = "15"
	PrefixBlinded25 = "25"
	PrefixGroupV2   = "03"

	// PubKeyHexLength prefix (2) + 32 bytes hex
	PubKeyHexLength = 66
)

var (
	regex05 = regexp.MustCompile(`^05[0-9a-fA-F]{64}$`)
	regex03 = regexp.MustCompile(`^03[0-9a-fA-F]{64}$`)
	regexBl = regexp.MustCompile(`^(15|25)[0-9a-fA-F]{64}$`)
)

// Is05Pubkey standard account id
func Is05Pubkey(key string) bool {
	return regex05.MatchString(key)
}

// Is03Pubkey v2 group id
func Is03Pubkey(key string) bool {
	return regex03.MatchString(key)
}

// IsBlinded community pseudonym
func IsBlinded(key string) bool {
	return regexBl.MatchString(key)
}

// Shorten (abcd...wxyz) 給 log 用
func Shorten(key string) string {
	if len(key) < 8 {
		return key
	}
	return "(" + key[:4] + "..." + key[len(key)-4:] + ")"
}

// SameKey compare two keys case insensitive
func SameKey(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
