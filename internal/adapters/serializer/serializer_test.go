package serializer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/serializer"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/fingerprint"
	"go.trai.ch/bake/internal/core/ports"
)

func sampleEntry(t *testing.T) domain.CacheEntry {
	t.Helper()
	props, err := fingerprint.NewPropertyFingerprint(struct {
		Command []string
		Jobs    int
	}{Command: []string{"make", "all"}, Jobs: 4}, "Command", "Jobs")
	require.NoError(t, err)

	fp := fingerprint.NewCombined(
		props,
		fingerprint.PathState("src/a.go", time.Unix(1700000000, 0), 42),
		fingerprint.MissingPath("src/gone.go"),
	)
	return domain.CacheEntry{
		UID:         "exec-00000000deadbeef",
		Fingerprint: fp.Protocol(),
		Outputs:     domain.NewOutputSet("core/lib/lib.a", "core/lib/lib.h"),
		RecordedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSerializers_PreserveEntries(t *testing.T) {
	for _, s := range []ports.Serializer{serializer.Msgpack{}, serializer.JSON{}} {
		t.Run(s.Name(), func(t *testing.T) {
			want := sampleEntry(t)

			var buf bytes.Buffer
			require.NoError(t, s.Serialize(&buf, want))

			got, err := ports.Deserialize[domain.CacheEntry](s, &buf)
			require.NoError(t, err)

			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty(), cmpopts.EquateApproxTime(0)); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}

			restored, err := got.Fingerprint.CreateFingerprint()
			require.NoError(t, err)
			original, err := want.Fingerprint.CreateFingerprint()
			require.NoError(t, err)
			assert.True(t, fingerprint.Equal(original, restored))
		})
	}
}

func TestMsgpack_Deterministic(t *testing.T) {
	entry := sampleEntry(t)
	var a, b bytes.Buffer
	require.NoError(t, serializer.Msgpack{}.Serialize(&a, entry))
	require.NoError(t, serializer.Msgpack{}.Serialize(&b, entry))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestJSON_Readable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, serializer.JSON{}.Serialize(&buf, sampleEntry(t)))
	assert.Contains(t, buf.String(), `"uid": "exec-00000000deadbeef"`)
	assert.Contains(t, buf.String(), `"kind": "combined"`)
}

func TestDeserialize_Corrupt(t *testing.T) {
	for _, s := range []ports.Serializer{serializer.Msgpack{}, serializer.JSON{}} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := ports.Deserialize[domain.CacheEntry](s, strings.NewReader("\xc1not a value"))
			assert.ErrorContains(t, err, domain.ErrDeserializeFailed.Error())
		})
	}
}

func TestForFormat(t *testing.T) {
	s, err := serializer.ForFormat(domain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatJSON, s.Name())

	s, err = serializer.ForFormat(domain.FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatMsgpack, s.Name())

	_, err = serializer.ForFormat("xml")
	assert.ErrorContains(t, err, domain.ErrUnknownSerializer.Error())
}
