package store

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
)

// DefaultPurpose distinguishes this library's ciphertext from other protected
// payloads in the same host.
const DefaultPurpose = "lumen-ui.state-core.v1"

// Protected wraps the length-prefixed framing in authenticated encryption and
// a base64 outer encoding, so the transport string can ride in an HTML
// response or a client-held token without being read or forged.
type Protected struct {
	protector Protector
	purpose   string
	inbound   string
	outbound  string
}

// NewProtected builds the outbound store of a fresh session. An empty purpose
// selects DefaultPurpose.
func NewProtected(protector Protector, purpose string) *Protected {
	if purpose == "" {
		purpose = DefaultPurpose
	}
	return &Protected{protector: protector, purpose: purpose}
}

// OpenProtected builds a store around a transport string received from the
// external medium. Decoding happens inside GetPersistedState, so tampering
// and corruption surface on restore.
func OpenProtected(protector Protector, purpose string, transport string) *Protected {
	p := NewProtected(protector, purpose)
	p.inbound = transport
	return p
}

// GetPersistedState decodes, unprotects and unframes the captured transport
// string. ErrAuthentication means tampered or foreign ciphertext;
// ErrMalformedState means the outer encoding or the framing is corrupt.
func (p *Protected) GetPersistedState(_ context.Context) (map[string][]byte, error) {
	if p.inbound == "" {
		return map[string][]byte{}, nil
	}
	ciphertext, err := base64.StdEncoding.DecodeString(p.inbound)
	if err != nil {
		return nil, errors.WithMessage(ErrMalformedState, "transport is not valid base64")
	}
	plaintext, err := p.protector.Unprotect(p.purpose, ciphertext)
	if err != nil {
		return nil, err
	}
	return Unframe(plaintext)
}

func (p *Protected) PersistState(_ context.Context, state map[string][]byte) error {
	framed := Frame(state)
	ciphertext, err := p.protector.Protect(p.purpose, framed.Bytes())
	//the plaintext frame goes back to the pool as soon as it is sealed
	framed.Release()
	if err != nil {
		return errors.WithMessage(err, "failed to protect state")
	}
	p.outbound = base64.StdEncoding.EncodeToString(ciphertext)
	return nil
}

// Transport returns the encoded form produced by PersistState, empty until
// the session persisted.
func (p *Protected) Transport() string {
	return p.outbound
}
