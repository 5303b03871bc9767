package crypt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// StateTTL bounds how long an issued state value stays decodable; a captured
// state cannot be replayed after this window even if the target integration
// does not exist yet.
const StateTTL = 10 * time.Minute

var ErrStateInvalid = errors.New("invalid state token")

// StatePayload rides the OAuth redirect round-trip so the callback can
// recover the initiating user without server-side session storage.
type StatePayload struct {
	UserID   uint  `json:"user_id,omitempty"`
	IssuedAt int64 `json:"iat"`
}

// EncodeState serializes, encrypts and percent-encodes the payload for use
// as a `state` query parameter.
func (c *Cipher) EncodeState(userID uint) (string, error) {
	payload := StatePayload{UserID: userID, IssuedAt: time.Now().UTC().Unix()}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sealed, err := c.Encrypt(string(data))
	if err != nil {
		return "", err
	}
	return url.QueryEscape(sealed), nil
}

// DecodeState reverses EncodeState. Any tampered, undecodable or expired
// input yields ErrStateInvalid; callers map this to a bad-request response.
func (c *Cipher) DecodeState(raw string) (*StatePayload, error) {
	return c.decodeStateAt(raw, time.Now().UTC())
}

func (c *Cipher) decodeStateAt(raw string, now time.Time) (*StatePayload, error) {
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateInvalid, err)
	}
	plaintext, err := c.Decrypt(unescaped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateInvalid, err)
	}
	var payload StatePayload
	if err := json.Unmarshal([]byte(plaintext), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateInvalid, err)
	}
	issued := time.Unix(payload.IssuedAt, 0).UTC()
	if payload.IssuedAt == 0 || now.Sub(issued) > StateTTL || issued.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("%w: expired", ErrStateInvalid)
	}
	return &payload, nil
}
