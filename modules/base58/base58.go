// Package base58 implements base58 encoding using the Bitcoin alphabet.
package base58

import "math/big"

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var decodeMap [256]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range alphabet {
		decodeMap[c] = int8(i)
	}
}

// Encode returns the base58 encoding of b, preserving leading zero bytes as
// leading '1' characters.
func Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)
	mod := new(big.Int)
	radix := big.NewInt(58)
	zero := big.NewInt(0)

	var out []byte
	for x.Cmp(zero) > 0 {
		x.DivMod(x, radix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, alphabet[0])
	}
	// reverse
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

// Decode parses a base58 string back into its raw bytes.
func Decode(s string) ([]byte, error) {
	x := big.NewInt(0)
	radix := big.NewInt(58)
	for _, c := range []byte(s) {
		d := decodeMap[c]
		if d == -1 {
			return nil, &InvalidCharacterError{c: c}
		}
		x.Mul(x, radix)
		x.Add(x, big.NewInt(int64(d)))
	}
	decoded := x.Bytes()
	leading := 0
	for leading < len(s) && s[leading] == alphabet[0] {
		leading++
	}
	out := make([]byte, leading+len(decoded))
	copy(out[leading:], decoded)
	return out, nil
}

// InvalidCharacterError is returned by Decode when s contains a byte that is
// not part of the base58 alphabet.
type InvalidCharacterError struct {
	c byte
}

func (e *InvalidCharacterError) Error() string {
	return "base58: invalid character " + string(rune(e.c))
}
