package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyPair(t *testing.T) Config {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pkix, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}), 0o600))
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pkix}), 0o644))

	return Config{
		PrivPath: privPath,
		PubPath:  pubPath,
		Issuer:   "campuscafe",
		Audience: "campuscafe-dashboard",
		TTL:      time.Hour,
		KID:      "test-key",
	}
}

func TestGenerateAndVerify(t *testing.T) {
	cfg := writeKeyPair(t)

	gen, err := LoadGenerator(cfg)
	require.NoError(t, err)
	ver, err := LoadVerifier(cfg)
	require.NoError(t, err)

	token, jti, err := gen.Generate("dashboard", []string{"reports:read"})
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := ver.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.True(t, claims.HasRole("reports:read"))
	assert.True(t, claims.HasAnyRole("admin", "reports:read"))
	assert.False(t, claims.HasRole("admin"))
}

func TestVerify_RejectsWrongAudienceAndIssuer(t *testing.T) {
	cfg := writeKeyPair(t)
	ver, err := LoadVerifier(cfg)
	require.NoError(t, err)

	other := cfg
	other.Audience = "someone-else"
	gen, err := LoadGenerator(other)
	require.NoError(t, err)
	token, _, err := gen.Generate("dashboard", nil)
	require.NoError(t, err)
	_, err = ver.Verify(token)
	assert.ErrorContains(t, err, "invalid audience")

	other = cfg
	other.Issuer = "elsewhere"
	gen, err = LoadGenerator(other)
	require.NoError(t, err)
	token, _, err = gen.Generate("dashboard", nil)
	require.NoError(t, err)
	_, err = ver.Verify(token)
	assert.ErrorContains(t, err, "invalid issuer")
}

func TestVerify_RejectsExpired(t *testing.T) {
	cfg := writeKeyPair(t)
	cfg.TTL = -time.Minute

	gen, err := LoadGenerator(cfg)
	require.NoError(t, err)
	ver, err := LoadVerifier(cfg)
	require.NoError(t, err)

	token, _, err := gen.Generate("dashboard", nil)
	require.NoError(t, err)
	_, err = ver.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_RejectsHMAC(t *testing.T) {
	cfg := writeKeyPair(t)
	ver, err := LoadVerifier(cfg)
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			Subject:  "dashboard",
			Audience: []string{cfg.Audience},
		},
	})
	signed, err := tok.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestGenerate_RequiresSubject(t *testing.T) {
	cfg := writeKeyPair(t)
	gen, err := LoadGenerator(cfg)
	require.NoError(t, err)

	_, _, err = gen.Generate("", nil)
	assert.Error(t, err)
}

func TestParseKeys_RejectGarbage(t *testing.T) {
	_, err := ParseRSAPublicKey([]byte("not pem"))
	assert.Error(t, err)
	_, err = ParseRSAPrivateKey(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}}))
	assert.ErrorContains(t, err, "invalid PEM private key type")

	_, err = LoadVerifier(Config{PubPath: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)
}
