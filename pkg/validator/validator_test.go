package validator

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/glados/pkg/entity"
)

type stubBlocks struct {
	hash  [32]byte
	found bool
	err   error
}

func (s stubBlocks) ExpectedBlockHash(ctx context.Context, blockNumber uint64) ([32]byte, bool, error) {
	return s.hash, s.found, s.err
}

func blockNumberPtr(n uint64) *uint64 { return &n }

func TestValidateEmptyBytesIsFailure(t *testing.T) {
	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{ContentType: entity.ContentTypeBlockHeaderByHash}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditFailure, result)
}

func TestValidateHeaderByHashMatches(t *testing.T) {
	raw := []byte("header bytes")
	digest := sha256.Sum256(raw)
	key := append([]byte{0x00}, digest[:]...)

	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockHeaderByHash,
		KeyBytes:    key,
	}, raw)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditSuccess, result)
}

func TestValidateHeaderByHashMismatch(t *testing.T) {
	key := append([]byte{0x00}, make([]byte, 32)...)

	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockHeaderByHash,
		KeyBytes:    key,
	}, []byte("header bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditFailure, result)
}

func TestValidateHeaderByHashKeyTooShort(t *testing.T) {
	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockHeaderByHash,
		KeyBytes:    []byte{0x00},
	}, []byte("header bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditFailure, result)
}

func TestValidateHeaderByNumberMissingExpectedHashIsErrored(t *testing.T) {
	v := New(stubBlocks{found: false})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockHeaderByNumber,
		BlockNumber: blockNumberPtr(100),
	}, []byte("header bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditErrored, result)
}

func TestValidateHeaderByNumberNoBlockNumberIsErrored(t *testing.T) {
	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockHeaderByNumber,
	}, []byte("header bytes"))
	require.Error(t, err)
	assert.Equal(t, entity.AuditErrored, result)
}

func TestValidateBodyMatchesExpectedHash(t *testing.T) {
	raw := []byte("body bytes")
	digest := sha256.Sum256(raw)

	v := New(stubBlocks{found: true, hash: digest})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockBody,
		BlockNumber: blockNumberPtr(100),
	}, raw)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditSuccess, result)
}

func TestValidateReceiptsMismatch(t *testing.T) {
	v := New(stubBlocks{found: true, hash: [32]byte{0x01}})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeReceipts,
		BlockNumber: blockNumberPtr(100),
	}, []byte("receipts bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditFailure, result)
}

func TestValidateRepositoryErrorIsErrored(t *testing.T) {
	v := New(stubBlocks{err: errors.New("connection reset")})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeBlockBody,
		BlockNumber: blockNumberPtr(100),
	}, []byte("body bytes"))
	require.Error(t, err)
	assert.Equal(t, entity.AuditErrored, result)
}

func TestValidateLightClientContentIsDecodeOnly(t *testing.T) {
	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeLightClientBootstrap,
	}, []byte("bootstrap bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditSuccess, result)
}

func TestValidateEpochAccumulatorIsDecodeOnly(t *testing.T) {
	v := New(stubBlocks{})
	result, err := v.Validate(context.Background(), entity.ContentKey{
		ContentType: entity.ContentTypeEpochAccumulator,
	}, []byte("epoch bytes"))
	require.NoError(t, err)
	assert.Equal(t, entity.AuditSuccess, result)
}
