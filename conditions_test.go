package ledger

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	cases := map[string]struct {
		cond    Condition
		wantExt string
		wantTyp string
		wantErr bool
	}{
		"escrow condition": {
			cond:    NewCondition("royalty", "escrow", []byte{0xbe, 0xef}),
			wantExt: "royalty",
			wantTyp: "escrow",
		},
		"data with newline": {
			cond:    NewCondition("revenue", "escrow", []byte("a\nb")),
			wantExt: "revenue",
			wantTyp: "escrow",
		},
		"extension too short": {
			cond:    NewCondition("ab", "escrow", []byte{1}),
			wantErr: true,
		},
		"no data": {
			cond:    Condition("royalty/escrow/"),
			wantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ext, typ, _, err := tc.cond.Parse()
			if tc.wantErr {
				assert.True(t, errors.ErrInput.Is(err))
				assert.Error(t, tc.cond.Validate())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExt, ext)
			assert.Equal(t, tc.wantTyp, typ)
			assert.NoError(t, tc.cond.Validate())
		})
	}
}

func TestConditionJSON(t *testing.T) {
	cond := NewCondition("royalty", "escrow", []byte{0xca, 0xfe})
	raw, err := json.Marshal(cond)
	require.NoError(t, err)
	assert.Equal(t, `"royalty/escrow/CAFE"`, string(raw))

	var got Condition
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, cond.Equals(got))
}

func TestAddressDerivation(t *testing.T) {
	a := NewCondition("royalty", "escrow", nil)
	b := NewCondition("revenue", "escrow", nil)

	assert.Len(t, a.Address(), AddressLength)
	assert.NoError(t, a.Address().Validate())
	assert.True(t, a.Address().Equals(NewAddress(a)))
	assert.False(t, a.Address().Equals(b.Address()))
}

func TestParseAddress(t *testing.T) {
	addr := NewCondition("test", "user", []byte("alice")).Address()

	cases := map[string]struct {
		enc     string
		want    Address
		wantErr *errors.Error
	}{
		"bech32": {
			enc:  addr.String(),
			want: addr,
		},
		"hex": {
			enc:  "hex:" + "0102030405060708090A0B0C0D0E0F1011121314",
			want: Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
		},
		"condition": {
			enc:  "cond:test/user/616C696365",
			want: addr,
		},
		"hex too short": {
			enc:     "hex:0102",
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			enc:     "base64:AQID",
			wantErr: errors.ErrType,
		},
		"bad bech32": {
			enc:     "iov1notreallyanaddress",
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAddress(tc.enc)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	addr := NewCondition("test", "user", []byte("bob")).Address()

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"iov1`)

	var got Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, addr, got)

	var empty Address
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
	assert.True(t, errors.ErrEmpty.Is(empty.Validate()))
}
