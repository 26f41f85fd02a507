package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

const pendingTTL = 5 * time.Minute

type pendingLogin struct {
	username string
	secret   string
}

// pendingLogins holds users between the password and the OTP step. The cookie
// only carries the token so the TOTP secret never leaves the server.
type pendingLogins struct {
	items *ttlcache.Cache[string, pendingLogin]
}

func newPendingLogins(ttl time.Duration) *pendingLogins {
	return &pendingLogins{
		items: ttlcache.New[string, pendingLogin](
			ttlcache.WithTTL[string, pendingLogin](ttl),
			ttlcache.WithDisableTouchOnHit[string, pendingLogin](),
		),
	}
}

func (p *pendingLogins) add(username, secret string) string {
	p.items.DeleteExpired()

	token := uuid.NewString()
	p.items.Set(token, pendingLogin{username: username, secret: secret}, ttlcache.DefaultTTL)
	return token
}

func (p *pendingLogins) get(token string) (pendingLogin, bool) {
	item := p.items.Get(token)
	if item == nil || item.IsExpired() {
		return pendingLogin{}, false
	}
	return item.Value(), true
}

func (p *pendingLogins) remove(token string) {
	p.items.Delete(token)
}

func (p *pendingLogins) size() int {
	return p.items.Len()
}
