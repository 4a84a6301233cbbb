package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
)

// GoogleCertsURL publishes the x509 certificates Firebase signs ID tokens with.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultCertTTL = time.Hour

// minRefetch bounds how often an unknown kid can trigger a fetch while the
// cached set is still fresh.
const minRefetch = time.Minute

// CertSource fetches and caches Google's signing certificates, honouring
// the Cache-Control max-age of the response.
type CertSource struct {
	url    string
	client *http.Client

	// fetchMu serialises fetches so concurrent misses share one request
	fetchMu sync.Mutex

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
	fetched time.Time
}

func NewCertSource(url string) *CertSource {
	return &CertSource{url: url, client: &http.Client{Timeout: 10 * time.Second}}
}

// PublicKey returns the key for kid. The cached set is refetched once it
// expires; an unknown kid refetches a fresh set at most once per minRefetch.
func (c *CertSource) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key, ok, fetch := c.lookup(kid); !fetch {
		if ok {
			return key, nil
		}
		return nil, fmt.Errorf("unknown key id %q", kid)
	}

	c.fetchMu.Lock()
	// another caller may have fetched while we waited
	if _, _, fetch := c.lookup(kid); fetch {
		if err := c.refresh(ctx); err != nil {
			c.fetchMu.Unlock()
			return nil, err
		}
	}
	c.fetchMu.Unlock()

	if key, ok, _ := c.lookup(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}

// lookup reports the cached key for kid and whether a fetch is due.
func (c *CertSource) lookup(kid string) (*rsa.PublicKey, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	key, ok := c.keys[kid]
	switch {
	case c.keys == nil || !now.Before(c.expires):
		return key, ok, true
	case ok:
		return key, true, false
	default:
		return nil, false, now.Sub(c.fetched) >= minRefetch
	}
}

func (c *CertSource) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching firebase certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching firebase certs: HTTP %d", resp.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&pems); err != nil {
		return fmt.Errorf("decoding firebase certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			logging.Warn().Err(err).Str("kid", kid).Msg("[auth] skipping unparsable certificate")
			continue
		}
		keys[kid] = k
	}

	c.mu.Lock()
	c.keys = keys
	c.fetched = time.Now()
	c.expires = c.fetched.Add(maxAge(resp.Header.Get("Cache-Control")))
	c.mu.Unlock()
	return nil
}

func maxAge(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return defaultCertTTL
}
