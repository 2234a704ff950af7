// Package ratelimit throttles invite code join attempts.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/buzzleague/buzz/internal/config"
)

const cleanupInterval = 5 * time.Minute

// Config holds rate limit configuration.
type Config struct {
	MaxFailures  int           // Failed joins per player before lockout (default: 5)
	Lockout      time.Duration // Lockout duration after max failures (default: 15m)
	MaxIPPerHour int           // Join attempts per IP per hour (default: 60)

	// Clock for testing (nil uses real time)
	Clock clockwork.Clock
}

// DefaultConfig returns production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFailures:  5,
		Lockout:      15 * time.Minute,
		MaxIPPerHour: 60,
	}
}

// FromConfig builds a limiter config from the application config.
func FromConfig(cfg config.RateLimitConfig, clock clockwork.Clock) *Config {
	return &Config{
		MaxFailures:  cfg.JoinMaxFailures,
		Lockout:      cfg.JoinLockout,
		MaxIPPerHour: cfg.JoinMaxIPPerHour,
		Clock:        clock,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string // For logging
}

type entry struct {
	count    int
	firstAt  time.Time
	lastAt   time.Time
	lockedAt time.Time // zero if not locked
}

// Limiter locks a player out after repeated failed joins and caps the join
// attempts a single IP can make per hour.
type Limiter struct {
	config   *Config
	clock    clockwork.Clock
	mu       sync.RWMutex
	byPlayer map[int64]*entry
	byIP     map[string]*entry

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:        cfg,
		clock:         clock,
		byPlayer:      make(map[int64]*entry),
		byIP:          make(map[string]*entry),
		cleanupCtx:    ctx,
		cleanupCancel: cancel,
	}
}

// Close stops the cleanup goroutine and releases resources.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckJoin reports whether a join attempt may proceed. It does not record
// the attempt; call RecordJoin once the outcome is known.
func (l *Limiter) CheckJoin(playerID int64, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := hashKey("join:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.byPlayer[playerID]; e != nil {
		if !e.lockedAt.IsZero() {
			elapsed := now.Sub(e.lockedAt)
			if elapsed < l.config.Lockout {
				return LimitResult{
					Allowed:    false,
					RetryAfter: l.config.Lockout - elapsed,
					Reason:     "lockout",
				}
			}
		} else if e.count >= l.config.MaxFailures {
			return LimitResult{
				Allowed:    false,
				RetryAfter: l.config.Lockout,
				Reason:     "max_failures",
			}
		}
	}

	if e := l.byIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.MaxIPPerHour {
			return LimitResult{
				Allowed:    false,
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordJoin records a join attempt. Every attempt counts against the IP; a
// failed attempt counts against the player and a successful one clears the
// player's failures. Returns true if this attempt triggered a lockout.
func (l *Limiter) RecordJoin(playerID int64, ip string, succeeded bool) (lockedOut bool) {
	now := l.clock.Now()
	ipKey := hashKey("join:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.byIP[ipKey]
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		l.byIP[ipKey] = &entry{count: 1, firstAt: now, lastAt: now}
	} else {
		e.count++
		e.lastAt = now
	}

	if succeeded {
		delete(l.byPlayer, playerID)
		return false
	}

	e = l.byPlayer[playerID]
	switch {
	case e == nil, !e.lockedAt.IsZero() && now.Sub(e.lockedAt) >= l.config.Lockout:
		e = &entry{count: 1, firstAt: now, lastAt: now}
		l.byPlayer[playerID] = e
	default:
		e.count++
		e.lastAt = now
	}
	if e.count >= l.config.MaxFailures && e.lockedAt.IsZero() {
		e.lockedAt = now
		lockedOut = true
	}
	return lockedOut
}

func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return prefix + hex.EncodeToString(hash[:8])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := l.clock.NewTicker(cleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.Chan():
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	maxAge := l.config.Lockout + time.Hour
	for k, e := range l.byPlayer {
		if now.Sub(e.lastAt) > maxAge {
			delete(l.byPlayer, k)
		}
	}
	for k, e := range l.byIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.byIP, k)
		}
	}
}

func (l *Limiter) size() (players, ips int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byPlayer), len(l.byIP)
}

// GetClientIP extracts the client IP from a request.
// When trustProxy is true, uses the rightmost IP from X-Forwarded-For (added by your proxy).
// When trustProxy is false, ignores X-Forwarded-For entirely.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			for i := len(parts) - 1; i >= 0; i-- {
				ip := strings.TrimSpace(parts[i])
				if ip != "" && !isPrivateIP(ip) {
					return ip
				}
			}
			return strings.TrimSpace(parts[len(parts)-1])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

var privateNetworks []*net.IPNet

func init() {
	privateRanges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	for _, cidr := range privateRanges {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// isPrivateIP checks if an IP is in a private/reserved range, including
// IPv4-mapped IPv6 addresses.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// LogRateLimitExceeded logs a refused join attempt.
func LogRateLimitExceeded(playerID int64, ip, reason string) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Int64("player_id", playerID).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Join rate limit exceeded")
}
