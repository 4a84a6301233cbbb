package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const project = "routevision-test"

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":      issuerPrefix + project,
		"aud":      project,
		"sub":      "uid-123",
		"iat":      now.Add(-time.Minute).Unix(),
		"exp":      now.Add(time.Hour).Unix(),
		"email":    "rider@example.com",
		"name":     "Rider",
		"firebase": map[string]any{"sign_in_provider": "google.com"},
	}
}

func TestVerifyValidToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(project, StaticKeys{"k1": &key.PublicKey})

	id, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "uid-123", id.UID)
	assert.Equal(t, "rider@example.com", id.Email)
	assert.Equal(t, "Rider", id.Name)
	assert.Equal(t, "google.com", id.Provider)
}

func TestVerifyRejects(t *testing.T) {
	key := newKey(t)
	other := newKey(t)
	v := NewVerifier(project, StaticKeys{"k1": &key.PublicKey})

	cases := map[string]string{}

	c := validClaims()
	c["aud"] = "someone-else"
	cases["wrong audience"] = sign(t, key, "k1", c)

	c = validClaims()
	c["iss"] = "https://accounts.example.com"
	cases["wrong issuer"] = sign(t, key, "k1", c)

	c = validClaims()
	c["exp"] = time.Now().Add(-time.Hour).Unix()
	cases["expired"] = sign(t, key, "k1", c)

	c = validClaims()
	delete(c, "exp")
	cases["no expiry"] = sign(t, key, "k1", c)

	c = validClaims()
	c["sub"] = ""
	cases["empty subject"] = sign(t, key, "k1", c)

	cases["unknown kid"] = sign(t, key, "k2", validClaims())
	cases["wrong key"] = sign(t, other, "k1", validClaims())

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	hs.Header["kid"] = "k1"
	hsStr, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)
	cases["hmac"] = hsStr

	cases["garbage"] = "not.a.token"

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyWithoutProject(t *testing.T) {
	key := newKey(t)
	v := NewVerifier("", StaticKeys{"k1": &key.PublicKey})
	_, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func selfSigned(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func TestCertSourceCachesByMaxAge(t *testing.T) {
	key := newKey(t)
	certPEM := selfSigned(t, key)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=19765, must-revalidate, no-transform")
		_ = json.NewEncoder(w).Encode(map[string]string{"abc": certPEM, "bad": "nope"})
	}))
	defer srv.Close()

	src := NewCertSource(srv.URL)
	v := NewVerifier(project, src)

	tok := sign(t, key, "abc", validClaims())
	for i := 0; i < 3; i++ {
		id, err := v.Verify(context.Background(), tok)
		require.NoError(t, err)
		assert.Equal(t, "uid-123", id.UID)
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := src.PublicKey(context.Background(), "bad")
	assert.Error(t, err)
}

func certServer(t *testing.T, certPEM string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(map[string]string{"abc": certPEM})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCertSourceUnknownKidDoesNotRefetchFreshSet(t *testing.T) {
	var hits atomic.Int32
	srv := certServer(t, selfSigned(t, newKey(t)), &hits)
	src := NewCertSource(srv.URL)

	_, err := src.PublicKey(context.Background(), "abc")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err := src.PublicKey(context.Background(), fmt.Sprintf("bogus-%d", i))
		assert.ErrorContains(t, err, "unknown key id")
	}
	assert.Equal(t, int32(1), hits.Load())

	// a fetch older than the refetch window lets one unknown kid through
	src.mu.Lock()
	src.fetched = time.Now().Add(-2 * minRefetch)
	src.mu.Unlock()

	_, err = src.PublicKey(context.Background(), "rotated")
	assert.Error(t, err)
	_, err = src.PublicKey(context.Background(), "rotated-again")
	assert.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCertSourceSharesConcurrentFetch(t *testing.T) {
	var hits atomic.Int32
	srv := certServer(t, selfSigned(t, newKey(t)), &hits)
	src := NewCertSource(srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := src.PublicKey(context.Background(), "abc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), hits.Load())
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 100*time.Second, maxAge("public, max-age=100"))
	assert.Equal(t, defaultCertTTL, maxAge("no-cache"))
	assert.Equal(t, defaultCertTTL, maxAge(""))
}
