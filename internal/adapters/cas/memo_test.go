package cas_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/cas"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestMemo_ServesRepeatedReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)

	stored := entry("exec-1")
	backend.EXPECT().Get("exec-1").Return(&stored, nil).Times(1)

	memo, err := cas.NewMemo(backend, 4)
	require.NoError(t, err)

	for range 3 {
		got, err := memo.Get("exec-1")
		require.NoError(t, err)
		assert.Equal(t, "exec-1", got.UID)
	}
	assert.Equal(t, 1, memo.Len())
}

func TestMemo_DoesNotMemoizeMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)
	backend.EXPECT().Get("exec-1").Return(nil, nil).Times(2)

	memo, err := cas.NewMemo(backend, 4)
	require.NoError(t, err)

	for range 2 {
		got, err := memo.Get("exec-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Zero(t, memo.Len())
}

func TestMemo_WriteThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)

	e := entry("exec-1")
	backend.EXPECT().Put(e).Return(nil)

	memo, err := cas.NewMemo(backend, 4)
	require.NoError(t, err)
	require.NoError(t, memo.Put(e))

	got, err := memo.Get("exec-1")
	require.NoError(t, err)
	assert.Equal(t, e.Outputs, got.Outputs)
}

func TestMemo_FailedPutEvicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)

	e := entry("exec-1")
	gomock.InOrder(
		backend.EXPECT().Put(e).Return(nil),
		backend.EXPECT().Put(e).Return(errors.New("disk full")),
		backend.EXPECT().Get("exec-1").Return(nil, nil),
	)

	memo, err := cas.NewMemo(backend, 4)
	require.NoError(t, err)
	require.NoError(t, memo.Put(e))
	assert.ErrorContains(t, memo.Put(e), "disk full")

	got, err := memo.Get("exec-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemo_Eviction(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)
	backend.EXPECT().Put(gomock.Any()).Return(nil).Times(3)

	memo, err := cas.NewMemo(backend, 2)
	require.NoError(t, err)
	for _, uid := range []string{"a", "b", "c"} {
		require.NoError(t, memo.Put(entry(uid)))
	}
	assert.Equal(t, 2, memo.Len())

	e := entry("a")
	backend.EXPECT().Get("a").Return(&e, nil)
	_, err = memo.Get("a")
	require.NoError(t, err)
}

func TestMemo_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mocks.NewMockFingerprintCache(ctrl)
	backend.EXPECT().Put(gomock.Any()).Return(nil)
	backend.EXPECT().Close().Return(nil)

	memo, err := cas.NewMemo(backend, 2)
	require.NoError(t, err)
	require.NoError(t, memo.Put(entry("a")))
	require.NoError(t, memo.Close())
	assert.Zero(t, memo.Len())
}

func TestNewMemo_InvalidSize(t *testing.T) {
	_, err := cas.NewMemo(mocks.NewMockFingerprintCache(gomock.NewController(t)), 0)
	assert.Error(t, err)
}
