package provider

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"civicdesk/internal/conf"
	"civicdesk/internal/mq/noop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProvideJwtManager(t *testing.T) {
	t.Run("HS256 round trip", func(t *testing.T) {
		m, err := ProvideJwtManager(&conf.AppConfig{
			Name:      "civicdesk",
			JwtConfig: &conf.JwtConfig{Algorithm: "HS256", Secret: "s3cret"},
		})
		require.NoError(t, err)

		token, err := m.Generate(map[string]interface{}{"role": "admin"})
		require.NoError(t, err)
		payload, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", payload["role"])
	})

	t.Run("RS256 without private key verifies only", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		require.NoError(t, err)

		dir := t.TempDir()
		pubFile := filepath.Join(dir, "public.pem")
		privFile := filepath.Join(dir, "private.pem")
		require.NoError(t, os.WriteFile(pubFile, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600))
		require.NoError(t, os.WriteFile(privFile, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))

		signer, err := ProvideJwtManager(&conf.AppConfig{
			Name:      "civicdesk",
			JwtConfig: &conf.JwtConfig{Algorithm: "RS256", PublicKeyFile: pubFile, PrivateKeyFile: privFile},
		})
		require.NoError(t, err)
		verifier, err := ProvideJwtManager(&conf.AppConfig{
			Name:      "civicdesk",
			JwtConfig: &conf.JwtConfig{Algorithm: "RS256", PublicKeyFile: pubFile},
		})
		require.NoError(t, err)

		token, err := signer.Generate(map[string]interface{}{"user_id": "abc"})
		require.NoError(t, err)
		payload, err := verifier.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "abc", payload["user_id"])
	})

	t.Run("missing public key file", func(t *testing.T) {
		_, err := ProvideJwtManager(&conf.AppConfig{
			JwtConfig: &conf.JwtConfig{Algorithm: "RS256", PublicKeyFile: filepath.Join(t.TempDir(), "absent.pem")},
		})
		require.Error(t, err)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := ProvideJwtManager(&conf.AppConfig{JwtConfig: &conf.JwtConfig{Algorithm: "ES512"}})
		require.ErrorContains(t, err, "unsupported JWT algorithm")
	})
}

func TestProvideRedisNamespace(t *testing.T) {
	ns := ProvideRedisNamespace(&conf.AppConfig{Name: "civicdesk", Mode: "prod"})
	assert.Equal(t, RedisNamespace("civicdesk:prod:"), ns)
}

func TestProvideRelay_DisabledFallsBackToNoop(t *testing.T) {
	cfg := &conf.RabbitMQConfig{Enabled: false}

	pub, cleanup, err := ProvideRelayPublisher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &noop.Publisher{}, pub)

	sub, cleanupSub, err := ProvideRelaySubscriber(nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanupSub()
	assert.IsType(t, &noop.Subscriber{}, sub)
}

func TestMachineIDFromHostname(t *testing.T) {
	id, err := machineIDFromHostname("civicdesk-3")
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id)

	_, err = machineIDFromHostname("localhost")
	require.Error(t, err)

	_, err = machineIDFromHostname("civicdesk-api")
	require.Error(t, err)

	_, err = machineIDFromHostname("civicdesk-70000")
	require.Error(t, err)
}

func TestProvideRegistry(t *testing.T) {
	reg := ProvideRegistry()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	assert.Same(t, reg, ProvideRegisterer(reg))
}
