package portal

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCredential(t *testing.T, claims map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(claims)
	require.NoError(t, err)
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(raw) + ".sig"
}

func TestDecodeCredential(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       Claims
		wantErr    *goerrors.Error
	}{
		{
			name:       "subject from nameid",
			credential: "h.eyJuYW1laWQiOiI1In0.s",
			want:       Claims{SubjectID: "5"},
		},
		{
			name:       "two segments are enough",
			credential: "h.eyJuYW1laWQiOiI1In0",
			want:       Claims{SubjectID: "5"},
		},
		{
			name:       "single segment",
			credential: "abc",
			wantErr:    ErrMalformed,
		},
		{
			name:       "empty",
			credential: "",
			wantErr:    ErrMalformed,
		},
		{
			name:       "claims segment is not base64",
			credential: "h.!!!.s",
			wantErr:    ErrInvalidEncoding,
		},
		{
			name:       "claims segment is not json",
			credential: "h." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".s",
			wantErr:    ErrInvalidEncoding,
		},
		{
			name:       "padded payload",
			credential: "h." + base64.URLEncoding.EncodeToString([]byte(`{"sub":"12"}`)) + ".s",
			want:       Claims{SubjectID: "12"},
		},
		{
			name:       "standard alphabet payload",
			credential: "h." + base64.StdEncoding.EncodeToString([]byte(`{"nameid":"9","given_name":"Zoë?>"}`)) + ".s",
			want:       Claims{SubjectID: "9", FirstName: "Zoë?>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCredential(tt.credential)
			if tt.wantErr != nil {
				var richErr *goerrors.Error
				require.ErrorAs(t, err, &richErr)
				assert.Equal(t, tt.wantErr.TextCode, richErr.TextCode)
				assert.Equal(t, goerrors.CategoryBadInput, richErr.Category)
				assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
				assert.True(t, IsDecodeError(err))
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeCredential_ClaimPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   Claims
	}{
		{
			name:   "nameid wins over sub",
			claims: map[string]any{"nameid": "5", "sub": "7"},
			want:   Claims{SubjectID: "5"},
		},
		{
			name:   "sub is the fallback",
			claims: map[string]any{"sub": "7"},
			want:   Claims{SubjectID: "7"},
		},
		{
			name:   "empty nameid falls back to sub",
			claims: map[string]any{"nameid": "", "sub": "7"},
			want:   Claims{SubjectID: "7"},
		},
		{
			name:   "numeric subject",
			claims: map[string]any{"nameid": 42},
			want:   Claims{SubjectID: "42"},
		},
		{
			name:   "large numeric subject keeps every digit",
			claims: map[string]any{"sub": 9007199254740993},
			want:   Claims{SubjectID: "9007199254740993"},
		},
		{
			name:   "given and family name",
			claims: map[string]any{"nameid": "1", "given_name": "Ada", "family_name": "Lovelace", "firstname": "X", "lastname": "Y"},
			want:   Claims{SubjectID: "1", FirstName: "Ada", LastName: "Lovelace"},
		},
		{
			name:   "firstname and lastname fallback",
			claims: map[string]any{"nameid": "1", "firstname": "Grace", "lastname": "Hopper"},
			want:   Claims{SubjectID: "1", FirstName: "Grace", LastName: "Hopper"},
		},
		{
			name:   "multi valued claim keeps the first",
			claims: map[string]any{"nameid": []any{"3", "4"}},
			want:   Claims{SubjectID: "3"},
		},
		{
			name:   "missing fields are empty",
			claims: map[string]any{"role": "student"},
			want:   Claims{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCredential(makeCredential(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaims_StudentID(t *testing.T) {
	id, ok := Claims{SubjectID: "15"}.StudentID()
	assert.True(t, ok)
	assert.Equal(t, 15, id)

	_, ok = Claims{SubjectID: "abc"}.StudentID()
	assert.False(t, ok)

	_, ok = Claims{}.StudentID()
	assert.False(t, ok)
}

func TestClaims_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Claims{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", Claims{FirstName: "Ada"}.FullName())
	assert.Equal(t, "", Claims{}.FullName())
}
