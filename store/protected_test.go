package store

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("an example master secret for tests")

func TestProtectedRoundTrip(t *testing.T) {
	protector := NewAEADProtector(testSecret)
	state := map[string][]byte{
		"counter": []byte(`42`),
		"blob":    {0x00, 0xff, 0x80},
		"empty":   {},
	}
	outbound := NewProtected(protector, "")
	assert.Nil(t, outbound.PersistState(context.Background(), state))
	assert.NotEmpty(t, outbound.Transport())

	inbound := OpenProtected(protector, "", outbound.Transport())
	restored, err := inbound.GetPersistedState(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, state, restored)
}

func TestProtectedEmptyTransportIsFresh(t *testing.T) {
	inbound := OpenProtected(NewAEADProtector(testSecret), "", "")
	restored, err := inbound.GetPersistedState(context.Background())
	assert.Nil(t, err)
	assert.Empty(t, restored)
}

func TestProtectedForeignKeyFailsAuthentication(t *testing.T) {
	outbound := NewProtected(NewAEADProtector(testSecret), "")
	assert.Nil(t, outbound.PersistState(context.Background(), map[string][]byte{"k": []byte("v")}))

	inbound := OpenProtected(NewAEADProtector([]byte("some other secret")), "", outbound.Transport())
	_, err := inbound.GetPersistedState(context.Background())
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestProtectedForeignPurposeFailsAuthentication(t *testing.T) {
	protector := NewAEADProtector(testSecret)
	outbound := NewProtected(protector, "other-feature.v1")
	assert.Nil(t, outbound.PersistState(context.Background(), map[string][]byte{"k": []byte("v")}))

	inbound := OpenProtected(protector, "", outbound.Transport())
	_, err := inbound.GetPersistedState(context.Background())
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestProtectedTamperedTransportFailsAuthentication(t *testing.T) {
	protector := NewAEADProtector(testSecret)
	outbound := NewProtected(protector, "")
	assert.Nil(t, outbound.PersistState(context.Background(), map[string][]byte{"k": []byte("v")}))

	transport := []byte(outbound.Transport())
	//swap one ciphertext character past the nonce prefix, keeping base64 valid
	mid := len(transport) / 2
	if transport[mid] == 'A' {
		transport[mid] = 'B'
	} else {
		transport[mid] = 'A'
	}
	inbound := OpenProtected(protector, "", string(transport))
	_, err := inbound.GetPersistedState(context.Background())
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestProtectedGarbageTransportIsMalformed(t *testing.T) {
	inbound := OpenProtected(NewAEADProtector(testSecret), "", "%%% not base64 %%%")
	_, err := inbound.GetPersistedState(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedState))
}

func TestProtectedShortCiphertextFailsAuthentication(t *testing.T) {
	inbound := OpenProtected(NewAEADProtector(testSecret), "", "c2hvcnQ=")
	_, err := inbound.GetPersistedState(context.Background())
	assert.True(t, errors.Is(err, ErrAuthentication))
}
