package models

import "time"

const (
	DefaultAccessExpiresIn  = int64(8 * time.Hour / time.Second)
	DefaultRefreshExpiresIn = int64(7 * 24 * time.Hour / time.Second)
)

// TokenPair is the credential state of one browser session.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

func (p TokenPair) AccessTTL() time.Duration {
	if p.AccessExpiresIn <= 0 {
		return time.Duration(DefaultAccessExpiresIn) * time.Second
	}
	return time.Duration(p.AccessExpiresIn) * time.Second
}

func (p TokenPair) RefreshTTL() time.Duration {
	if p.RefreshExpiresIn <= 0 {
		return time.Duration(DefaultRefreshExpiresIn) * time.Second
	}
	return time.Duration(p.RefreshExpiresIn) * time.Second
}
